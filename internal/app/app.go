package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/iwtcode/tankRtu/internal/adapters/handlers"
	"github.com/iwtcode/tankRtu/internal/adapters/repositories"
	"github.com/iwtcode/tankRtu/internal/adapters/transport"
	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/services/acquisition"
	"github.com/iwtcode/tankRtu/internal/services/automation"
	"github.com/iwtcode/tankRtu/internal/services/configuration"
	"github.com/iwtcode/tankRtu/internal/services/journal"
	"github.com/iwtcode/tankRtu/internal/services/kafka"
	"github.com/iwtcode/tankRtu/internal/services/processing"
	"github.com/iwtcode/tankRtu/internal/services/scheduler"
	"github.com/iwtcode/tankRtu/internal/services/storage"
	"github.com/iwtcode/tankRtu/internal/services/tank"
	"github.com/iwtcode/tankRtu/internal/usecases"

	"go.uber.org/fx"
)

// New создает новый экземпляр fx.App
func New() *fx.App {
	return fx.New(
		ConfigModule,
		LoggingModule,
		RtuModule,
		JournalModule,
		ProcessingModule,
		ControlModule,
		UsecaseModule,
		HttpServerModule,
		// Порядок важен: хуки останавливаются в обратном порядке,
		// поэтому циклы завершаются раньше журнала.
		fx.Invoke(InvokeJournal),
		fx.Invoke(InvokeControlLoops),
	)
}

// --- Модули FX ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(config.LoadConfiguration),
)

func ProvideLogger(cfg *config.AppConfig) *logging.Logger {
	loggerCfg := &logging.Config{
		Enabled:    cfg.Logging.Enable,
		Level:      cfg.Logging.Level,
		LogsDir:    cfg.Logging.LogsDir,
		SavingDays: uint(cfg.Logging.SavingDays),
	}
	return logging.NewLogger(loggerCfg, "TankRtuApp")
}

var LoggingModule = fx.Module("logging_module",
	fx.Provide(ProvideLogger),
)

var RtuModule = fx.Module("rtu_module",
	fx.Provide(
		configuration.NewConfiguration,
		storage.NewStorage,
		transport.NewTCPTransport,
	),
)

func ProvideEventSink(j *journal.Journal) interfaces.EventSink { return j }

func ProvideEventJournal(j *journal.Journal) interfaces.EventJournal { return j }

var JournalModule = fx.Module("journal_module",
	fx.Provide(
		repositories.NewRepository,
		kafka.NewKafkaProducer,
		journal.NewJournal,
		ProvideEventSink,
		ProvideEventJournal,
	),
)

var ProcessingModule = fx.Module("processing_module",
	fx.Provide(processing.NewProcessingManager),
)

// Triggers - сигналы, которыми планировщик запускает циклы.
type Triggers struct {
	Acquisition *scheduler.Trigger
	Automation  *scheduler.Trigger
}

func ProvideTriggers() *Triggers {
	return &Triggers{
		Acquisition: scheduler.NewTrigger(),
		Automation:  scheduler.NewTrigger(),
	}
}

func ProvideScheduler(cfg *config.AppConfig, triggers *Triggers, logger *logging.Logger) *scheduler.Scheduler {
	s := scheduler.New(logger)
	s.Every(acquisition.LoopName, cfg.Acquisition.Tick, triggers.Acquisition)
	s.Every(automation.LoopName, cfg.Automation.Delay, triggers.Automation)
	return s
}

func ProvideAcquisitor(
	cfg *config.AppConfig,
	triggers *Triggers,
	points *tank.Points,
	conf interfaces.Configuration,
	store interfaces.Storage,
	proc interfaces.ProcessingManager,
	logger *logging.Logger,
) (*acquisition.Acquisitor, error) {
	plant, err := tank.NewPlant(cfg, points, store, proc, conf, logger)
	if err != nil {
		return nil, err
	}
	return acquisition.New(triggers.Acquisition.C(), conf, proc, plant, logger, acquisition.WithTick(cfg.Acquisition.Tick)), nil
}

func ProvideAutomation(
	triggers *Triggers,
	points *tank.Points,
	conf interfaces.Configuration,
	store interfaces.Storage,
	proc interfaces.ProcessingManager,
	logger *logging.Logger,
) *automation.Manager {
	policy := tank.NewSafetyPolicy(points, store, proc, conf, logger)
	return automation.New(triggers.Automation.C(), policy, logger)
}

func ProvideControlLoops(acq *acquisition.Acquisitor, aut *automation.Manager) []interfaces.ControlLoop {
	return []interfaces.ControlLoop{acq, aut}
}

var ControlModule = fx.Module("control_module",
	fx.Provide(
		tank.ResolvePoints,
		ProvideTriggers,
		ProvideScheduler,
		ProvideAcquisitor,
		ProvideAutomation,
		ProvideControlLoops,
	),
)

var UsecaseModule = fx.Module("usecases_module",
	fx.Provide(usecases.NewUsecases),
)

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		handlers.NewHandler,
		handlers.ProvideRouter,
	),
	fx.Invoke(InvokeHttpServer),
)

// InvokeJournal запускает запись событий и закрывает продюсер при остановке.
func InvokeJournal(lc fx.Lifecycle, j *journal.Journal, producer interfaces.KafkaService, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			j.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			j.Stop(ctx)
			if dropped := j.Dropped(); dropped > 0 {
				logger.Warn("Events dropped during run", "count", dropped)
			}
			return producer.Close()
		},
	})
}

// InvokeControlLoops запускает планировщик и оба цикла управления.
// При остановке циклы дорабатывают текущую итерацию, после чего закрывается транспорт.
func InvokeControlLoops(lc fx.Lifecycle, loops []interfaces.ControlLoop, sched *scheduler.Scheduler, tr interfaces.Transport, logger *logging.Logger) {
	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			sched.Start(runCtx)
			for _, loop := range loops {
				wg.Add(1)
				go func(loop interfaces.ControlLoop) {
					defer wg.Done()
					if err := loop.Run(runCtx); err != nil {
						logger.Error("Control loop exited", "loop", loop.Status().Name, "error", err)
					}
				}(loop)
			}
			logger.Info("Control loops started", "count", len(loops))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping control loops...")
			cancel()
			sched.Stop()

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("Control loops did not stop in time")
			}
			return tr.Close()
		},
	})
}

// InvokeHttpServer запускает HTTP-сервер.
func InvokeHttpServer(lc fx.Lifecycle, cfg *config.AppConfig, h http.Handler, logger *logging.Logger) {
	serverAddr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("HTTP Server is starting", "address", serverAddr)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

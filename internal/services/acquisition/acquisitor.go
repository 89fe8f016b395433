package acquisition

import (
	"context"
	"errors"
	"time"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/services/scheduler"
	"github.com/iwtcode/tankRtu/internal/services/tank"
)

const LoopName = "acquisition"

// Acquisitor опрашивает точки по их интервалам и продвигает модель процесса.
// Один цикл выполняется на каждый сигнал триггера, период задается WithTick.
type Acquisitor struct {
	trigger       <-chan struct{}
	configuration interfaces.Configuration
	processing    interfaces.ProcessingManager
	plant         tank.ControlStep
	logger        *logging.Logger
	status        *scheduler.StatusTracker
	tick          time.Duration
	elapsed       map[entities.PointIdentifier]time.Duration
}

type Option func(*Acquisitor)

// WithTick задает период цикла. Интервалы опроса точек заданы в секундах
// и отсчитываются по этому периоду. По умолчанию одна секунда.
func WithTick(tick time.Duration) Option {
	return func(a *Acquisitor) {
		if tick > 0 {
			a.tick = tick
		}
	}
}

func New(
	trigger <-chan struct{},
	configuration interfaces.Configuration,
	processing interfaces.ProcessingManager,
	plant tank.ControlStep,
	logger *logging.Logger,
	opts ...Option,
) *Acquisitor {
	a := &Acquisitor{
		trigger:       trigger,
		configuration: configuration,
		processing:    processing,
		plant:         plant,
		logger:        logger.WithPrefix("ACQUISITION"),
		status:        scheduler.NewStatusTracker(LoopName),
		tick:          time.Second,
		elapsed:       make(map[entities.PointIdentifier]time.Duration),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run выполняет циклы до отмены ctx. Отмена проверяется перед каждым циклом,
// начатый цикл всегда доводится до конца.
func (a *Acquisitor) Run(ctx context.Context) error {
	a.status.SetRunning(true)
	defer a.status.SetRunning(false)
	a.logger.Info("Acquisition loop started", "plant", a.plant.Name())

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Acquisition loop stopped")
			return nil
		case <-a.trigger:
		}
		if ctx.Err() != nil {
			a.logger.Info("Acquisition loop stopped")
			return nil
		}
		_ = a.Cycle(context.WithoutCancel(ctx))
	}
}

// Cycle выполняет один проход: опрос точек, чей интервал истек, затем шаг модели.
func (a *Acquisitor) Cycle(ctx context.Context) error {
	var errs []error
	for _, item := range a.configuration.GetConfigurationItems() {
		id := item.Identifier()
		a.elapsed[id] += a.tick
		if a.elapsed[id] < time.Duration(item.AcquisitionInterval)*time.Second {
			continue
		}
		a.elapsed[id] = 0

		err := a.processing.ExecuteReadCommand(ctx, item, a.configuration.GetTransactionID(), a.configuration.UnitAddress(), item.StartAddress, item.NumberOfRegisters)
		if err != nil {
			a.logger.Warn("Read failed", "point", item.Name, "error", err)
			errs = append(errs, err)
		}
	}

	if err := a.plant.Step(ctx); err != nil {
		a.logger.Error("Plant step failed", "plant", a.plant.Name(), "error", err)
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	a.status.CycleDone(time.Now(), err)
	return err
}

func (a *Acquisitor) Status() entities.LoopStatus {
	return a.status.Snapshot()
}

package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/services/alarm"

	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

// Journal превращает уведомления процессора в события журнала.
// События ставятся в очередь без блокировки и записываются фоновым обработчиком.
type Journal struct {
	repo      interfaces.PointEventRepository
	producer  interfaces.KafkaService
	logger    *logging.Logger
	threshold int
	queue     chan entities.PointEvent
	dropped   atomic.Uint64
	now       func() time.Time

	cancel context.CancelFunc
	stop   chan context.Context
	wg     sync.WaitGroup
}

func NewJournal(cfg *config.AppConfig, repo interfaces.PointEventRepository, producer interfaces.KafkaService, logger *logging.Logger) *Journal {
	return New(repo, producer, cfg.Journal.StaleThreshold, cfg.Journal.QueueSize, logger)
}

func New(repo interfaces.PointEventRepository, producer interfaces.KafkaService, threshold, queueSize int, logger *logging.Logger) *Journal {
	if threshold < 1 {
		threshold = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Journal{
		repo:      repo,
		producer:  producer,
		logger:    logger.WithPrefix("JOURNAL"),
		threshold: threshold,
		queue:     make(chan entities.PointEvent, queueSize),
		now:       time.Now,
	}
}

func (j *Journal) PointChanged(before, after entities.Point) {
	if before.State().ConsecutiveFailures >= j.threshold {
		j.enqueue(newEvent(after, entities.EventCommRestored, "", fmt.Sprintf("communication restored after %d failures", before.State().ConsecutiveFailures)))
	}

	previous, current := alarm.ForPoint(before), alarm.ForPoint(after)
	if previous != current {
		if current == entities.NoAlarm {
			e := newEvent(after, entities.EventAlarmCleared, previous, "")
			e.PreviousValue = before.Raw()
			j.enqueue(e)
		} else {
			e := newEvent(after, entities.EventAlarmRaised, current, "")
			e.PreviousValue = before.Raw()
			j.enqueue(e)
		}
	}

	if _, digital := after.(entities.DigitalPoint); digital && before.Raw() != after.Raw() {
		e := newEvent(after, entities.EventStateChange, current, "")
		e.PreviousValue = before.Raw()
		j.enqueue(e)
	}
}

// CommandFailed записывает каждую неудачную запись и порог отказов чтения.
func (j *Journal) CommandFailed(point entities.Point, command string, err error) {
	if strings.HasPrefix(command, "WRITE") {
		j.enqueue(newEvent(point, entities.EventCommandFailed, "", fmt.Sprintf("%s: %v", command, err)))
		return
	}
	if point.State().ConsecutiveFailures == j.threshold {
		j.enqueue(newEvent(point, entities.EventCommFailure, "", fmt.Sprintf("%s: %v", command, err)))
	}
}

func newEvent(p entities.Point, eventType string, alarmType entities.AlarmType, message string) entities.PointEvent {
	state := p.State()
	return entities.PointEvent{
		PointName: state.Item.Name,
		PointType: state.ID.Type,
		Address:   state.ID.Address,
		EventType: eventType,
		Alarm:     alarmType,
		Value:     state.RawValue,
		Failures:  state.ConsecutiveFailures,
		Message:   message,
	}
}

func (j *Journal) enqueue(e entities.PointEvent) {
	e.ID = uuid.NewString()
	e.CreatedAt = j.now()
	select {
	case j.queue <- e:
	default:
		n := j.dropped.Add(1)
		j.logger.Warn("Event queue full, dropping event", "event", e.EventType, "point", e.PointName, "dropped", n)
	}
}

// Dropped возвращает количество отброшенных из-за переполнения событий.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Start запускает фоновую запись событий.
// Отмена ctx прекращает запись, события из очереди учитываются как отброшенные.
func (j *Journal) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.stop = make(chan context.Context, 1)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.run(ctx)
	}()
}

// Stop дописывает события из очереди, пока не истечет ctx.
// После этого текущая запись прерывается, остаток очереди отбрасывается.
func (j *Journal) Stop(ctx context.Context) {
	if j.cancel == nil {
		return
	}
	defer j.cancel()
	select {
	case j.stop <- ctx:
	default:
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		j.logger.Warn("Journal writer did not stop in time", "queued", len(j.queue))
		j.cancel()
		<-done
	}
}

func (j *Journal) run(ctx context.Context) {
	j.logger.Info("Journal writer started")
	defer j.logger.Info("Journal writer stopped")
	for {
		if ctx.Err() != nil {
			j.drain(ctx)
			return
		}
		select {
		case e := <-j.queue:
			j.persist(ctx, e)
		case stopCtx := <-j.stop:
			j.drain(stopCtx)
			return
		case <-ctx.Done():
		}
	}
}

func (j *Journal) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			if n := len(j.queue); n > 0 {
				j.dropped.Add(uint64(n))
				j.logger.Warn("Shutdown deadline reached, dropping queued events", "count", n)
			}
			return
		}
		select {
		case e := <-j.queue:
			j.persist(ctx, e)
		default:
			return
		}
	}
}

func (j *Journal) persist(ctx context.Context, e entities.PointEvent) {
	if err := j.repo.Create(&e); err != nil {
		j.logger.Error("Failed to store event", "event", e.EventType, "point", e.PointName, "error", err)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		j.logger.Error("Failed to serialize event for Kafka", "event", e.EventType, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := j.producer.Produce(ctx, []byte(e.PointName), payload); err != nil {
		j.logger.Error("Failed to send event to Kafka", "event", e.EventType, "point", e.PointName, "error", err)
	}
}

// Recent возвращает последние события из репозитория.
func (j *Journal) Recent(limit int) ([]entities.PointEvent, error) {
	return j.repo.Recent(limit)
}

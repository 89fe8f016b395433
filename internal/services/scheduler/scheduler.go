package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
)

// Trigger - сигнал с автосбросом: повторный Raise до получения сигнала не накапливается.
type Trigger struct {
	c chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{c: make(chan struct{}, 1)}
}

// Raise взводит сигнал, не блокируясь.
func (t *Trigger) Raise() {
	select {
	case t.c <- struct{}{}:
	default:
	}
}

func (t *Trigger) C() <-chan struct{} {
	return t.c
}

type job struct {
	name     string
	interval time.Duration
	trigger  *Trigger
}

// Scheduler периодически взводит триггеры циклов управления.
type Scheduler struct {
	logger *logging.Logger
	jobs   []job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(logger *logging.Logger) *Scheduler {
	return &Scheduler{logger: logger.WithPrefix("SCHEDULER")}
}

// Every регистрирует триггер, взводимый с периодом interval. Вызывать до Start.
func (s *Scheduler) Every(name string, interval time.Duration, trigger *Trigger) {
	s.jobs = append(s.jobs, job{name: name, interval: interval, trigger: trigger})
}

// Start запускает тикеры всех зарегистрированных триггеров.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go func(j job) {
			defer s.wg.Done()
			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()
			s.logger.Info("Ticker started", "job", j.name, "interval", j.interval)
			for {
				select {
				case <-ctx.Done():
					s.logger.Info("Ticker stopped", "job", j.name)
					return
				case <-ticker.C:
					j.trigger.Raise()
				}
			}
		}(j)
	}
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// StatusTracker накапливает наблюдаемое состояние цикла.
type StatusTracker struct {
	mu     sync.Mutex
	status entities.LoopStatus
}

func NewStatusTracker(name string) *StatusTracker {
	return &StatusTracker{status: entities.LoopStatus{Name: name}}
}

func (t *StatusTracker) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Running = running
}

func (t *StatusTracker) CycleDone(at time.Time, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Cycles++
	t.status.LastCycle = at
	t.status.LastError = ""
	if err != nil {
		t.status.LastError = err.Error()
	}
}

func (t *StatusTracker) Snapshot() entities.LoopStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

package tank

import (
	"context"
	stderrors "errors"

	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
)

// Decide возвращает записи, которые приводят выходы к безопасному состоянию.
// Слив при достижении верхнего предела имеет наивысший приоритет, затем
// применяется блокировка по фактическому значению STOP. Запись включается
// только если текущее значение отличается от желаемого.
func Decide(s State, p *Points) []Write {
	stop, pump1, pump2, valve := s.Stop, s.Pump1, s.Pump2, s.Valve

	if s.Level >= s.HighLimit {
		stop, pump1, pump2, valve = 1, 0, 0, 1
	}

	if stop == 1 {
		pump1, pump2 = 0, 0
	} else {
		valve = 0
	}

	var writes []Write
	add := func(target Write, current uint16) {
		if current != target.Value {
			writes = append(writes, target)
		}
	}
	add(Write{Item: p.Stop, Value: stop}, s.Stop)
	add(Write{Item: p.Pump1, Value: pump1}, s.Pump1)
	add(Write{Item: p.Pump2, Value: pump2}, s.Pump2)
	add(Write{Item: p.Valve, Value: valve}, s.Valve)
	return writes
}

// SafetyPolicy применяет Decide к текущему состоянию хранилища.
type SafetyPolicy struct {
	points        *Points
	storage       interfaces.Storage
	processing    interfaces.ProcessingManager
	configuration interfaces.Configuration
	logger        *logging.Logger
}

func NewSafetyPolicy(points *Points, storage interfaces.Storage, processing interfaces.ProcessingManager, configuration interfaces.Configuration, logger *logging.Logger) *SafetyPolicy {
	return &SafetyPolicy{
		points:        points,
		storage:       storage,
		processing:    processing,
		configuration: configuration,
		logger:        logger.WithPrefix("POLICY"),
	}
}

func (p *SafetyPolicy) Name() string { return "safety" }

func (p *SafetyPolicy) Step(ctx context.Context) error {
	state, err := ReadState(p.storage, p.points)
	if err != nil {
		return err
	}

	var errs []error
	for _, w := range Decide(state, p.points) {
		p.logger.Info("Forcing output", "point", w.Item.Name, "value", w.Value, "level", state.Level, "stop", state.Stop)
		if err := issue(ctx, p.processing, p.configuration, w.Item, w.Value); err != nil {
			p.logger.Error("Forced write failed", "point", w.Item.Name, "error", err)
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

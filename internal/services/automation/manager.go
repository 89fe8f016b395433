package automation

import (
	"context"
	"time"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/services/scheduler"
	"github.com/iwtcode/tankRtu/internal/services/tank"
)

const LoopName = "automation"

// Manager периодически применяет политику безопасности. Процесс не моделирует.
type Manager struct {
	trigger <-chan struct{}
	policy  tank.ControlStep
	logger  *logging.Logger
	status  *scheduler.StatusTracker
}

func New(trigger <-chan struct{}, policy tank.ControlStep, logger *logging.Logger) *Manager {
	return &Manager{
		trigger: trigger,
		policy:  policy,
		logger:  logger.WithPrefix("AUTOMATION"),
		status:  scheduler.NewStatusTracker(LoopName),
	}
}

func (m *Manager) Run(ctx context.Context) error {
	m.status.SetRunning(true)
	defer m.status.SetRunning(false)
	m.logger.Info("Automation loop started", "policy", m.policy.Name())

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Automation loop stopped")
			return nil
		case <-m.trigger:
		}
		if ctx.Err() != nil {
			m.logger.Info("Automation loop stopped")
			return nil
		}
		_ = m.Cycle(context.WithoutCancel(ctx))
	}
}

func (m *Manager) Cycle(ctx context.Context) error {
	err := m.policy.Step(ctx)
	if err != nil {
		m.logger.Error("Automation cycle failed", "error", err)
	}
	m.status.CycleDone(time.Now(), err)
	return err
}

func (m *Manager) Status() entities.LoopStatus {
	return m.status.Snapshot()
}

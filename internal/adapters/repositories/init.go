package repositories

import (
	"fmt"

	"github.com/iwtcode/tankRtu/internal/adapters/repositories/memory"
	"github.com/iwtcode/tankRtu/internal/adapters/repositories/point_event"
	"github.com/iwtcode/tankRtu/internal/adapters/repositories/postgres"
	"github.com/iwtcode/tankRtu/internal/adapters/repositories/sqlite"
	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"gorm.io/gorm"
)

// NewRepository выбирает хранилище журнала событий по JOURNAL_DRIVER.
func NewRepository(cfg *config.AppConfig, appLogger *logging.Logger) (interfaces.PointEventRepository, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Journal.Driver {
	case config.JournalMemory:
		appLogger.Info("Using in-memory event journal", "capacity", cfg.Journal.Capacity)
		return memory.NewPointEventRepository(cfg.Journal.Capacity), nil
	case config.JournalPostgres:
		db, err = postgres.Open(cfg, appLogger)
	case config.JournalSqlite:
		db, err = sqlite.Open(cfg.Journal.SqlitePath)
	default:
		return nil, fmt.Errorf("%w: неизвестный драйвер журнала %q", errors.ErrConfiguration, cfg.Journal.Driver)
	}
	if err != nil {
		return nil, err
	}

	repo, err := point_event.NewPointEventRepository(db)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения автомиграций: %w", err)
	}
	appLogger.Info("Event journal ready", "driver", cfg.Journal.Driver)
	return repo, nil
}

package configuration

import (
	"fmt"
	"sync/atomic"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

// Configuration хранит неизменяемую таблицу точек и выдает идентификаторы транзакций.
type Configuration struct {
	items       []*entities.ConfigItem
	byName      map[string]*entities.ConfigItem
	byID        map[entities.PointIdentifier]*entities.ConfigItem
	unitAddress byte
	transaction atomic.Uint32
}

// NewConfiguration загружает таблицу точек согласно настройкам приложения.
func NewConfiguration(cfg *config.AppConfig, logger *logging.Logger) (interfaces.Configuration, error) {
	items, err := config.LoadPoints(cfg.Rtu.PointsFile)
	if err != nil {
		return nil, err
	}
	source := cfg.Rtu.PointsFile
	if source == "" {
		source = "built-in"
	}
	logger.WithPrefix("CONFIG").Info("Point table loaded", "source", source, "points", len(items), "unit", cfg.Rtu.UnitAddress)
	c, err := New(items, cfg.Rtu.UnitAddress)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// New строит конфигурацию из готовой таблицы точек.
func New(items []*entities.ConfigItem, unitAddress byte) (*Configuration, error) {
	if err := config.ValidatePoints(items); err != nil {
		return nil, err
	}

	c := &Configuration{
		items:       items,
		byName:      make(map[string]*entities.ConfigItem, len(items)),
		byID:        make(map[entities.PointIdentifier]*entities.ConfigItem, len(items)),
		unitAddress: unitAddress,
	}
	for _, item := range items {
		c.byName[item.Name] = item
		c.byID[item.Identifier()] = item
	}
	return c, nil
}

// GetConfigurationItems возвращает точки в порядке конфигурации.
func (c *Configuration) GetConfigurationItems() []*entities.ConfigItem {
	out := make([]*entities.ConfigItem, len(c.items))
	copy(out, c.items)
	return out
}

// GetTransactionID возвращает следующий идентификатор транзакции (с переполнением через 0xFFFF).
func (c *Configuration) GetTransactionID() uint16 {
	return uint16(c.transaction.Add(1))
}

func (c *Configuration) UnitAddress() byte {
	return c.unitAddress
}

func (c *Configuration) Lookup(name string) (*entities.ConfigItem, error) {
	item, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: точка %q не сконфигурирована", errors.ErrConfiguration, name)
	}
	return item, nil
}

func (c *Configuration) Item(id entities.PointIdentifier) (*entities.ConfigItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

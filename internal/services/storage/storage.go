package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

type entry struct {
	mu    sync.RWMutex
	state entities.PointState
}

func (e *entry) snapshot() entities.Point {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return entities.NewPoint(e.state)
}

// Storage - хранилище текущих значений точек с блокировкой на каждую точку.
// Набор точек фиксируется при создании, поэтому сама карта не защищается.
type Storage struct {
	entries map[entities.PointIdentifier]*entry
	order   []entities.PointIdentifier
}

// NewStorage создает записи для всех точек конфигурации со значением по умолчанию.
func NewStorage(cfg interfaces.Configuration) interfaces.Storage {
	return New(cfg.GetConfigurationItems())
}

func New(items []*entities.ConfigItem) *Storage {
	s := &Storage{
		entries: make(map[entities.PointIdentifier]*entry, len(items)),
		order:   make([]entities.PointIdentifier, 0, len(items)),
	}
	now := time.Now()
	for _, item := range items {
		id := item.Identifier()
		s.entries[id] = &entry{state: entities.PointState{
			ID:        id,
			Item:      item,
			RawValue:  item.DefaultValue,
			Timestamp: now,
		}}
		s.order = append(s.order, id)
	}
	return s
}

// GetPoints возвращает снимки точек в порядке запроса.
func (s *Storage) GetPoints(ids []entities.PointIdentifier) ([]entities.Point, error) {
	points := make([]entities.Point, 0, len(ids))
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrPointNotFound, id)
		}
		points = append(points, e.snapshot())
	}
	return points, nil
}

// Snapshot возвращает все точки в порядке конфигурации.
func (s *Storage) Snapshot() []entities.Point {
	points := make([]entities.Point, 0, len(s.order))
	for _, id := range s.order {
		points = append(points, s.entries[id].snapshot())
	}
	return points
}

// Commit записывает новое сырое значение и сбрасывает признак устаревания.
func (s *Storage) Commit(id entities.PointIdentifier, raw uint16, at time.Time) (before, after entities.Point, err error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", errors.ErrPointNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	before = entities.NewPoint(e.state)
	e.state.RawValue = raw
	e.state.Timestamp = at
	e.state.Stale = false
	e.state.ConsecutiveFailures = 0
	return before, entities.NewPoint(e.state), nil
}

// MarkFailed помечает точку устаревшей, сохраняя последнее значение.
func (s *Storage) MarkFailed(id entities.PointIdentifier) (entities.Point, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrPointNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Stale = true
	e.state.ConsecutiveFailures++
	return entities.NewPoint(e.state), nil
}

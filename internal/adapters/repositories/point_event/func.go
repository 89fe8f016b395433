package point_event

import (
	"github.com/iwtcode/tankRtu/internal/domain/entities"
)

func (r *PointEventRepositoryImpl) Create(event *entities.PointEvent) error {
	return r.db.Create(event).Error
}

// Recent возвращает последние события, новые первыми. limit <= 0 - без ограничения.
func (r *PointEventRepositoryImpl) Recent(limit int) ([]entities.PointEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	var events []entities.PointEvent
	if err := r.db.Order("created_at desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

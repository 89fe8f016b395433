package interfaces

import (
	"github.com/iwtcode/tankRtu/internal/domain/entities"
)

// PointEventRepository определяет контракт журнала событий по точкам
type PointEventRepository interface {
	Create(event *entities.PointEvent) error
	Recent(limit int) ([]entities.PointEvent, error)
}

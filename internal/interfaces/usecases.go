package interfaces

import (
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/domain/models"
)

// Usecases - это агрегирующий интерфейс для всех use cases
type Usecases interface {
	GetPoints() []models.PointView
	GetPoint(id entities.PointIdentifier) (*models.PointView, error)
	GetAlarms() []models.PointView
	GetEvents(limit int) ([]entities.PointEvent, error)
	GetStatus() models.StatusView
}

package point_event

import (
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"gorm.io/gorm"
)

type PointEventRepositoryImpl struct {
	db *gorm.DB
}

// NewPointEventRepository выполняет автомиграцию и возвращает репозиторий журнала.
func NewPointEventRepository(db *gorm.DB) (interfaces.PointEventRepository, error) {
	// AutoMigrate безопасно создает таблицу, если она не существует,
	// и добавляет новые колонки, если они появились в модели.
	if err := db.AutoMigrate(&entities.PointEvent{}); err != nil {
		return nil, err
	}
	return &PointEventRepositoryImpl{db: db}, nil
}

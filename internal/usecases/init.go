package usecases

import (
	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"
)

// UseCases - агрегатор всех use case интерфейсов
type UseCases struct {
	interfaces.Usecases
}

// NewUsecases - конструктор для UseCases
func NewUsecases(
	cfg *config.AppConfig,
	storage interfaces.Storage,
	journal interfaces.EventJournal,
	loops []interfaces.ControlLoop,
) interfaces.Usecases {
	return NewUsecase(cfg, storage, journal, loops)
}

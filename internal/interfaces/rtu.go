package interfaces

import (
	"context"
	"time"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
)

// Configuration определяет контракт доступа к таблице точек RTU.
type Configuration interface {
	GetConfigurationItems() []*entities.ConfigItem
	GetTransactionID() uint16
	UnitAddress() byte
	Lookup(name string) (*entities.ConfigItem, error)
	Item(id entities.PointIdentifier) (*entities.ConfigItem, bool)
}

// Transport выполняет один обмен кадрами с устройством.
// Реализация обязана соблюдать дедлайн контекста.
// Reset сбрасывает соединение, следующий Send начинает с нового.
type Transport interface {
	Send(ctx context.Context, frame []byte) ([]byte, error)
	Reset()
	Close() error
}

// Storage хранит текущие значения точек.
type Storage interface {
	GetPoints(ids []entities.PointIdentifier) ([]entities.Point, error)
	Snapshot() []entities.Point
	Commit(id entities.PointIdentifier, raw uint16, at time.Time) (before, after entities.Point, err error)
	MarkFailed(id entities.PointIdentifier) (entities.Point, error)
}

// ProcessingManager - единственный путь изменения значений точек.
type ProcessingManager interface {
	ExecuteReadCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, start, quantity uint16) error
	ExecuteWriteCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, address, value uint16) error
}

// EventSink получает уведомления об изменениях точек. Вызовы не должны блокироваться.
type EventSink interface {
	PointChanged(before, after entities.Point)
	CommandFailed(point entities.Point, command string, err error)
}

// ControlLoop - периодический цикл управления.
type ControlLoop interface {
	Run(ctx context.Context) error
	Status() entities.LoopStatus
}

// EventJournal - приемник уведомлений с доступом к записанным событиям.
type EventJournal interface {
	EventSink
	Recent(limit int) ([]entities.PointEvent, error)
	Dropped() uint64
}

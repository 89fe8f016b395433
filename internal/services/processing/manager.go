package processing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/modbus"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

// Manager выполняет команды чтения и записи и фиксирует результаты в хранилище.
// Мьютекс охватывает обмен с устройством и фиксацию, так что порядок
// фиксаций совпадает с порядком обменов.
type Manager struct {
	transport interfaces.Transport
	storage   interfaces.Storage
	sink      interfaces.EventSink
	timeout   time.Duration
	logger    *logging.Logger
	now       func() time.Time
	mu        sync.Mutex
}

func NewProcessingManager(
	cfg *config.AppConfig,
	transport interfaces.Transport,
	storage interfaces.Storage,
	sink interfaces.EventSink,
	logger *logging.Logger,
) interfaces.ProcessingManager {
	return New(transport, storage, sink, cfg.Rtu.Timeout, logger)
}

func New(transport interfaces.Transport, storage interfaces.Storage, sink interfaces.EventSink, timeout time.Duration, logger *logging.Logger) *Manager {
	return &Manager{
		transport: transport,
		storage:   storage,
		sink:      sink,
		timeout:   timeout,
		logger:    logger.WithPrefix("PROCESSING"),
		now:       time.Now,
	}
}

// ExecuteReadCommand читает quantity точек класса item.Type начиная со start.
// При ошибке все затронутые точки помечаются устаревшими.
func (m *Manager) ExecuteReadCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, start, quantity uint16) error {
	fc, err := modbus.ReadFunctionFor(item.Type)
	if err != nil {
		return err
	}
	cmd := modbus.Command{
		FunctionCode:    fc,
		TransactionID:   transactionID,
		UnitID:          unit,
		Address:         start,
		QuantityOrValue: quantity,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	values, err := m.exchange(ctx, cmd)
	if err != nil {
		m.markFailed(item.Type, start, quantity, fc, err)
		return fmt.Errorf("ошибка чтения %s (%s): %w", item.Name, fc, err)
	}
	m.apply(values)
	return nil
}

// ExecuteWriteCommand записывает значение в точку и фиксирует подтвержденное устройством значение.
func (m *Manager) ExecuteWriteCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, address, value uint16) error {
	fc, err := modbus.WriteFunctionFor(item.Type)
	if err != nil {
		return err
	}
	cmd := modbus.Command{
		FunctionCode:    fc,
		TransactionID:   transactionID,
		UnitID:          unit,
		Address:         address,
		QuantityOrValue: value,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	values, err := m.exchange(ctx, cmd)
	if err != nil {
		id := entities.PointIdentifier{Type: item.Type, Address: address}
		if points, gerr := m.storage.GetPoints([]entities.PointIdentifier{id}); gerr == nil {
			m.sink.CommandFailed(points[0], fc.String(), err)
		}
		return fmt.Errorf("ошибка записи %s=%d (%s): %w", item.Name, value, fc, err)
	}
	m.apply(values)
	return nil
}

func (m *Manager) exchange(ctx context.Context, cmd modbus.Command) (map[entities.PointIdentifier]uint16, error) {
	request, err := modbus.PackRequest(cmd)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.logger.Debug("Sending request", "function", cmd.FunctionCode, "tid", cmd.TransactionID, "address", cmd.Address, "value", cmd.QuantityOrValue)
	response, err := m.transport.Send(ctx, request)
	if err != nil {
		return nil, err
	}

	tid, err := modbus.TransactionID(response)
	if err != nil {
		return nil, err
	}
	if tid != cmd.TransactionID {
		m.logger.Warn("Transaction id mismatch, resetting connection", "sent", cmd.TransactionID, "received", tid)
		m.transport.Reset()
		return nil, fmt.Errorf("%w: отправлен %d, получен %d", errors.ErrTransactionMismatch, cmd.TransactionID, tid)
	}
	return modbus.ParseResponse(cmd, response)
}

func (m *Manager) apply(values map[entities.PointIdentifier]uint16) {
	at := m.now()
	for id, raw := range values {
		before, after, err := m.storage.Commit(id, raw, at)
		if err != nil {
			// устройство вернуло точку, которой нет в конфигурации
			m.logger.Debug("Skipping unconfigured point", "point", id)
			continue
		}
		m.sink.PointChanged(before, after)
	}
}

func (m *Manager) markFailed(pointType entities.PointType, start, quantity uint16, fc modbus.FunctionCode, cause error) {
	for i := 0; i < int(quantity); i++ {
		address := int(start) + i
		if address > 0xFFFF {
			break
		}
		point, err := m.storage.MarkFailed(entities.PointIdentifier{Type: pointType, Address: uint16(address)})
		if err != nil {
			continue
		}
		m.logger.Warn("Point marked stale",
			"point", point.Config().Name,
			"failures", point.State().ConsecutiveFailures,
			"error", cause,
		)
		m.sink.CommandFailed(point, fc.String(), cause)
	}
}

package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"github.com/goburrow/modbus"
)

// TCPTransport передает готовые кадры MBAP через соединение goburrow/modbus.
// Соединение открывается при первом обмене и закрывается после IdleTimeout простоя.
type TCPTransport struct {
	handler *modbus.TCPClientHandler
	logger  *logging.Logger
}

func NewTCPTransport(cfg *config.AppConfig, logger *logging.Logger) interfaces.Transport {
	handler := modbus.NewTCPClientHandler(cfg.Rtu.Address)
	handler.Timeout = cfg.Rtu.Timeout
	handler.IdleTimeout = cfg.Rtu.IdleTimeout
	handler.SlaveId = cfg.Rtu.UnitAddress

	l := logger.WithPrefix("TRANSPORT")
	l.Info("Modbus TCP transport configured", "address", cfg.Rtu.Address, "timeout", cfg.Rtu.Timeout)
	return &TCPTransport{handler: handler, logger: l}
}

type result struct {
	response []byte
	err      error
}

// Send выполняет обмен, не дольше дедлайна ctx.
func (t *TCPTransport) Send(ctx context.Context, frame []byte) ([]byte, error) {
	done := make(chan result, 1)
	go func() {
		response, err := t.handler.Send(frame)
		if err != nil {
			// опоздавший ответ остался бы в сокете и достался следующему запросу
			t.Reset()
		}
		done <- result{response: response, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: обмен прерван: %v", errors.ErrTimeout, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, classify(r.err)
		}
		return r.response, nil
	}
}

func classify(err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", errors.ErrTransport, err)
}

// Reset закрывает соединение. goburrow откроет новое при следующем обмене.
func (t *TCPTransport) Reset() {
	if err := t.handler.Close(); err != nil {
		t.logger.Warn("Failed to close connection on reset", "error", err)
		return
	}
	t.logger.Debug("Connection reset")
}

func (t *TCPTransport) Close() error {
	return t.handler.Close()
}

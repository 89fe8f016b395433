// Package testutil содержит тестовые заглушки устройства и приемника событий.
package testutil

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

// Request - разобранный запрос, полученный устройством.
type Request struct {
	TransactionID uint16
	Unit          byte
	Function      byte
	Address       uint16
	Value         uint16
}

// Device - устройство Modbus TCP в памяти, реализующее interfaces.Transport.
type Device struct {
	mu        sync.Mutex
	coils     map[uint16]bool
	inputs    map[uint16]bool
	holding   map[uint16]uint16
	input     map[uint16]uint16
	requests  []Request
	down      bool
	hang      bool
	exception byte
	mangle    func([]byte) []byte
	resets    int
}

func NewDevice() *Device {
	return &Device{
		coils:   make(map[uint16]bool),
		inputs:  make(map[uint16]bool),
		holding: make(map[uint16]uint16),
		input:   make(map[uint16]uint16),
	}
}

func (d *Device) SetCoil(address uint16, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.coils[address] = on
}

func (d *Device) Coil(address uint16) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.coils[address]
}

func (d *Device) SetHolding(address, value uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holding[address] = value
}

func (d *Device) Holding(address uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.holding[address]
}

// SetDown переводит устройство в состояние отказа связи.
func (d *Device) SetDown(down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.down = down
}

// SetHang заставляет устройство не отвечать до истечения контекста.
func (d *Device) SetHang(hang bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hang = hang
}

// SetException заставляет устройство отвечать кодом исключения (0 - отключено).
func (d *Device) SetException(code byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exception = code
}

// SetMangle позволяет исказить ответ перед отправкой.
func (d *Device) SetMangle(fn func([]byte) []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mangle = fn
}

// Requests возвращает копию журнала полученных запросов.
func (d *Device) Requests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Request, len(d.requests))
	copy(out, d.requests)
	return out
}

// Writes возвращает только запросы записи.
func (d *Device) Writes() []Request {
	var out []Request
	for _, r := range d.Requests() {
		if r.Function == 0x05 || r.Function == 0x06 {
			out = append(out, r)
		}
	}
	return out
}

func (d *Device) ResetRequests() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = nil
}

func (d *Device) Send(ctx context.Context, frame []byte) ([]byte, error) {
	d.mu.Lock()
	hang := d.hang
	d.mu.Unlock()
	if hang {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", errors.ErrTimeout, ctx.Err())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.down {
		return nil, fmt.Errorf("%w: соединение отклонено", errors.ErrTransport)
	}
	if len(frame) != 12 {
		return nil, fmt.Errorf("%w: неожиданная длина запроса %d", errors.ErrTransport, len(frame))
	}

	req := Request{
		TransactionID: binary.BigEndian.Uint16(frame[0:2]),
		Unit:          frame[6],
		Function:      frame[7],
		Address:       binary.BigEndian.Uint16(frame[8:10]),
		Value:         binary.BigEndian.Uint16(frame[10:12]),
	}
	d.requests = append(d.requests, req)

	var pdu []byte
	if d.exception != 0 {
		pdu = []byte{req.Function | 0x80, d.exception}
	} else {
		pdu = d.handle(req)
	}

	response := make([]byte, 0, 7+len(pdu))
	response = binary.BigEndian.AppendUint16(response, req.TransactionID)
	response = binary.BigEndian.AppendUint16(response, 0)
	response = binary.BigEndian.AppendUint16(response, uint16(len(pdu)+1))
	response = append(response, req.Unit)
	response = append(response, pdu...)
	if d.mangle != nil {
		response = d.mangle(response)
	}
	return response, nil
}

func (d *Device) handle(req Request) []byte {
	switch req.Function {
	case 0x01, 0x02:
		bits := d.coils
		if req.Function == 0x02 {
			bits = d.inputs
		}
		data := make([]byte, (int(req.Value)+7)/8)
		for i := 0; i < int(req.Value); i++ {
			if bits[req.Address+uint16(i)] {
				data[i/8] |= 1 << (uint(i) % 8)
			}
		}
		return append([]byte{req.Function, byte(len(data))}, data...)
	case 0x03, 0x04:
		regs := d.holding
		if req.Function == 0x04 {
			regs = d.input
		}
		data := make([]byte, 0, 2*int(req.Value))
		for i := 0; i < int(req.Value); i++ {
			data = binary.BigEndian.AppendUint16(data, regs[req.Address+uint16(i)])
		}
		return append([]byte{req.Function, byte(len(data))}, data...)
	case 0x05:
		d.coils[req.Address] = req.Value == 0xFF00
	case 0x06:
		d.holding[req.Address] = req.Value
	default:
		return []byte{req.Function | 0x80, 0x01}
	}
	out := []byte{req.Function}
	out = binary.BigEndian.AppendUint16(out, req.Address)
	return binary.BigEndian.AppendUint16(out, req.Value)
}

func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resets++
}

// Resets возвращает число сбросов соединения.
func (d *Device) Resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}

func (d *Device) Close() error { return nil }

// Event - вызов приемника событий.
type Event struct {
	Before  entities.Point
	After   entities.Point
	Command string
	Err     error
}

// RecordingSink запоминает все уведомления процессора.
type RecordingSink struct {
	mu       sync.Mutex
	Changes  []Event
	Failures []Event
}

func (s *RecordingSink) PointChanged(before, after entities.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Changes = append(s.Changes, Event{Before: before, After: after})
}

func (s *RecordingSink) CommandFailed(point entities.Point, command string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = append(s.Failures, Event{After: point, Command: command, Err: err})
}

func (s *RecordingSink) FailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Failures)
}

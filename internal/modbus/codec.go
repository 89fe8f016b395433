package modbus

import (
	"encoding/binary"
	"fmt"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

const (
	mbapHeaderSize     = 7
	protocolIdentifier = 0

	// fc + exception code
	exceptionResponseSize = mbapHeaderSize + 2
	// fc + address + value
	writeResponseSize = mbapHeaderSize + 5
	// fc + byte count
	readResponseHeaderSize = mbapHeaderSize + 2

	exceptionBit byte = 0x80

	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000

	maxReadRegisters = 125
	maxReadBits      = 2000
)

// Command - параметры одного запроса к устройству.
// Для чтения QuantityOrValue - количество, для записи - значение.
type Command struct {
	FunctionCode    FunctionCode
	TransactionID   uint16
	UnitID          byte
	Address         uint16
	QuantityOrValue uint16
}

// PackRequest кодирует команду в кадр Modbus TCP (MBAP + PDU, big-endian).
func PackRequest(cmd Command) ([]byte, error) {
	if !cmd.FunctionCode.Supported() {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFunction, cmd.FunctionCode)
	}

	value := cmd.QuantityOrValue
	switch cmd.FunctionCode {
	case ReadCoils, ReadDiscreteInputs:
		if err := checkQuantity(cmd.Address, value, maxReadBits); err != nil {
			return nil, err
		}
	case ReadHoldingRegisters, ReadInputRegisters:
		if err := checkQuantity(cmd.Address, value, maxReadRegisters); err != nil {
			return nil, err
		}
	case WriteSingleCoil:
		value = coilOff
		if cmd.QuantityOrValue != 0 {
			value = coilOn
		}
	}

	frame := make([]byte, 0, writeResponseSize)
	frame = binary.BigEndian.AppendUint16(frame, cmd.TransactionID)
	frame = binary.BigEndian.AppendUint16(frame, protocolIdentifier)
	// unit + fc + address + value
	frame = binary.BigEndian.AppendUint16(frame, 6)
	frame = append(frame, cmd.UnitID, byte(cmd.FunctionCode))
	frame = binary.BigEndian.AppendUint16(frame, cmd.Address)
	frame = binary.BigEndian.AppendUint16(frame, value)
	return frame, nil
}

func checkQuantity(address, quantity uint16, limit int) error {
	if quantity == 0 || int(quantity) > limit {
		return fmt.Errorf("%w: количество %d вне диапазона 1..%d", errors.ErrProtocol, quantity, limit)
	}
	if int(address)+int(quantity) > 0x10000 {
		return fmt.Errorf("%w: диапазон адресов %d+%d превышает 65535", errors.ErrProtocol, address, quantity)
	}
	return nil
}

// TransactionID извлекает идентификатор транзакции из заголовка кадра.
func TransactionID(frame []byte) (uint16, error) {
	if len(frame) < mbapHeaderSize {
		return 0, fmt.Errorf("%w: получено %d байт, требуется %d", errors.ErrFrameTooShort, len(frame), mbapHeaderSize)
	}
	return binary.BigEndian.Uint16(frame[0:2]), nil
}

// ParseResponse разбирает ответ устройства на запрос cmd и возвращает
// новые сырые значения затронутых точек.
func ParseResponse(cmd Command, frame []byte) (map[entities.PointIdentifier]uint16, error) {
	pointType, err := cmd.FunctionCode.PointType()
	if err != nil {
		return nil, err
	}
	if len(frame) < mbapHeaderSize+1 {
		return nil, tooShort(frame, mbapHeaderSize+1)
	}

	fc := frame[mbapHeaderSize]
	if fc == byte(cmd.FunctionCode)|exceptionBit {
		if len(frame) < exceptionResponseSize {
			return nil, tooShort(frame, exceptionResponseSize)
		}
		return nil, &errors.ExceptionError{FunctionCode: byte(cmd.FunctionCode), ExceptionCode: frame[mbapHeaderSize+1]}
	}
	if fc != byte(cmd.FunctionCode) {
		return nil, fmt.Errorf("%w: ожидалась 0x%02X, получена 0x%02X", errors.ErrFunctionMismatch, byte(cmd.FunctionCode), fc)
	}

	switch cmd.FunctionCode {
	case WriteSingleCoil, WriteSingleRegister:
		return parseWrite(cmd.FunctionCode, pointType, frame)
	case ReadHoldingRegisters, ReadInputRegisters:
		return parseRegisters(cmd, pointType, frame)
	default:
		return parseBits(cmd, pointType, frame)
	}
}

func parseWrite(fc FunctionCode, pointType entities.PointType, frame []byte) (map[entities.PointIdentifier]uint16, error) {
	if len(frame) < writeResponseSize {
		return nil, tooShort(frame, writeResponseSize)
	}
	address := binary.BigEndian.Uint16(frame[8:10])
	value := binary.BigEndian.Uint16(frame[10:12])
	if fc == WriteSingleCoil {
		if value == coilOn {
			value = 1
		} else {
			value = 0
		}
	}
	return map[entities.PointIdentifier]uint16{
		{Type: pointType, Address: address}: value,
	}, nil
}

func parseRegisters(cmd Command, pointType entities.PointType, frame []byte) (map[entities.PointIdentifier]uint16, error) {
	data, err := readPayload(frame)
	if err != nil {
		return nil, err
	}
	count := len(data) / 2
	if requested := int(cmd.QuantityOrValue); requested > 0 && count > requested {
		count = requested
	}
	values := make(map[entities.PointIdentifier]uint16, count)
	for i := 0; i < count; i++ {
		address := int(cmd.Address) + i
		if address > 0xFFFF {
			break
		}
		values[entities.PointIdentifier{Type: pointType, Address: uint16(address)}] = binary.BigEndian.Uint16(data[2*i:])
	}
	return values, nil
}

func parseBits(cmd Command, pointType entities.PointType, frame []byte) (map[entities.PointIdentifier]uint16, error) {
	data, err := readPayload(frame)
	if err != nil {
		return nil, err
	}
	count := int(cmd.QuantityOrValue)
	if count == 0 || count > len(data)*8 {
		count = len(data) * 8
	}
	values := make(map[entities.PointIdentifier]uint16, count)
	for i := 0; i < count; i++ {
		address := int(cmd.Address) + i
		if address > 0xFFFF {
			break
		}
		values[entities.PointIdentifier{Type: pointType, Address: uint16(address)}] = uint16(data[i/8]>>(uint(i)%8)) & 1
	}
	return values, nil
}

// readPayload возвращает данные после поля byte count.
func readPayload(frame []byte) ([]byte, error) {
	if len(frame) < readResponseHeaderSize {
		return nil, tooShort(frame, readResponseHeaderSize)
	}
	byteCount := int(frame[readResponseHeaderSize-1])
	if len(frame) < readResponseHeaderSize+byteCount {
		return nil, tooShort(frame, readResponseHeaderSize+byteCount)
	}
	return frame[readResponseHeaderSize : readResponseHeaderSize+byteCount], nil
}

func tooShort(frame []byte, need int) error {
	return fmt.Errorf("%w: получено %d байт, требуется %d", errors.ErrFrameTooShort, len(frame), need)
}

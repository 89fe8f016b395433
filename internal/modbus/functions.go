package modbus

import (
	"fmt"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

// FunctionCode - код функции Modbus.
type FunctionCode byte

const (
	ReadCoils            FunctionCode = 0x01
	ReadDiscreteInputs   FunctionCode = 0x02
	ReadHoldingRegisters FunctionCode = 0x03
	ReadInputRegisters   FunctionCode = 0x04
	WriteSingleCoil      FunctionCode = 0x05
	WriteSingleRegister  FunctionCode = 0x06
)

func (fc FunctionCode) String() string {
	switch fc {
	case ReadCoils:
		return "READ_COILS"
	case ReadDiscreteInputs:
		return "READ_DISCRETE_INPUTS"
	case ReadHoldingRegisters:
		return "READ_HOLDING_REGISTERS"
	case ReadInputRegisters:
		return "READ_INPUT_REGISTERS"
	case WriteSingleCoil:
		return "WRITE_SINGLE_COIL"
	case WriteSingleRegister:
		return "WRITE_SINGLE_REGISTER"
	}
	return fmt.Sprintf("FUNCTION_0x%02X", byte(fc))
}

// Supported сообщает, реализует ли кодек данную функцию.
func (fc FunctionCode) Supported() bool {
	return fc >= ReadCoils && fc <= WriteSingleRegister
}

// PointType возвращает класс точек, к которому относится ответ функции.
func (fc FunctionCode) PointType() (entities.PointType, error) {
	switch fc {
	case ReadCoils, WriteSingleCoil:
		return entities.DigitalOutput, nil
	case ReadDiscreteInputs:
		return entities.DigitalInput, nil
	case ReadHoldingRegisters, WriteSingleRegister:
		return entities.AnalogOutput, nil
	case ReadInputRegisters:
		return entities.AnalogInput, nil
	}
	return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedFunction, fc)
}

// ReadFunctionFor выбирает функцию чтения для класса точки.
func ReadFunctionFor(t entities.PointType) (FunctionCode, error) {
	switch t {
	case entities.DigitalOutput:
		return ReadCoils, nil
	case entities.DigitalInput:
		return ReadDiscreteInputs, nil
	case entities.AnalogOutput:
		return ReadHoldingRegisters, nil
	case entities.AnalogInput:
		return ReadInputRegisters, nil
	}
	return 0, fmt.Errorf("%w: нет функции чтения для типа точки %q", errors.ErrUnsupportedFunction, t)
}

// WriteFunctionFor выбирает функцию записи. Входы доступны только на чтение.
func WriteFunctionFor(t entities.PointType) (FunctionCode, error) {
	switch t {
	case entities.DigitalOutput:
		return WriteSingleCoil, nil
	case entities.AnalogOutput:
		return WriteSingleRegister, nil
	}
	return 0, fmt.Errorf("%w: тип точки %q доступен только для чтения", errors.ErrUnsupportedFunction, t)
}

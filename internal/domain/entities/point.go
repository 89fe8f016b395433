package entities

import (
	"fmt"
	"strings"
	"time"
)

// PointType - класс точки Modbus.
type PointType string

const (
	AnalogInput   PointType = "ANALOG_INPUT"
	AnalogOutput  PointType = "ANALOG_OUTPUT"
	DigitalInput  PointType = "DIGITAL_INPUT"
	DigitalOutput PointType = "DIGITAL_OUTPUT"
)

// ParsePointType принимает полное имя типа или короткую форму (AI, AO, DI, DO).
func ParsePointType(s string) (PointType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ANALOG_INPUT", "AI":
		return AnalogInput, nil
	case "ANALOG_OUTPUT", "AO":
		return AnalogOutput, nil
	case "DIGITAL_INPUT", "DI":
		return DigitalInput, nil
	case "DIGITAL_OUTPUT", "DO":
		return DigitalOutput, nil
	}
	return "", fmt.Errorf("неизвестный тип точки %q", s)
}

func (t PointType) IsAnalog() bool {
	return t == AnalogInput || t == AnalogOutput
}

func (t PointType) IsDigital() bool {
	return t == DigitalInput || t == DigitalOutput
}

// PointIdentifier однозначно определяет точку. Используется как ключ map.
type PointIdentifier struct {
	Type    PointType `json:"type"`
	Address uint16    `json:"address"`
}

func (id PointIdentifier) String() string {
	return fmt.Sprintf("%s:%d", id.Type, id.Address)
}

// ConfigItem - неизменяемое описание точки, загружаемое один раз при старте.
type ConfigItem struct {
	Name                string    `json:"name"`
	Type                PointType `json:"type"`
	StartAddress        uint16    `json:"address"`
	NumberOfRegisters   uint16    `json:"registers"`
	AcquisitionInterval int       `json:"acquisition_interval"`
	ScaleFactor         float64   `json:"scale"`
	Deviation           float64   `json:"deviation"`
	EGUMin              float64   `json:"egu_min"`
	EGUMax              float64   `json:"egu_max"`
	LowLimit            float64   `json:"low_limit"`
	HighLimit           float64   `json:"high_limit"`
	DefaultValue        uint16    `json:"default"`
}

func (c *ConfigItem) Identifier() PointIdentifier {
	return PointIdentifier{Type: c.Type, Address: c.StartAddress}
}

// Point - снимок состояния точки. Реализуется только AnalogPoint и DigitalPoint.
type Point interface {
	Identifier() PointIdentifier
	Config() *ConfigItem
	Raw() uint16
	State() PointState
	isPoint()
}

// PointState - общая часть аналоговой и дискретной точки.
type PointState struct {
	ID                  PointIdentifier
	Item                *ConfigItem
	RawValue            uint16
	Timestamp           time.Time
	Stale               bool
	ConsecutiveFailures int
}

func (s PointState) Identifier() PointIdentifier { return s.ID }
func (s PointState) Config() *ConfigItem         { return s.Item }
func (s PointState) Raw() uint16                 { return s.RawValue }
func (s PointState) State() PointState           { return s }
func (s PointState) isPoint()                    {}

type AnalogPoint struct {
	PointState
}

// EGU вычисляет значение в инженерных единицах: A*raw + B.
func (p AnalogPoint) EGU() float64 {
	return p.Item.ScaleFactor*float64(p.RawValue) + p.Item.Deviation
}

type DigitalPoint struct {
	PointState
}

// Value возвращает логическое состояние точки (0 или 1).
func (p DigitalPoint) Value() uint16 {
	if p.RawValue != 0 {
		return 1
	}
	return 0
}

// NewPoint оборачивает состояние в вариант, соответствующий типу точки.
func NewPoint(s PointState) Point {
	if s.ID.Type.IsAnalog() {
		return AnalogPoint{PointState: s}
	}
	return DigitalPoint{PointState: s}
}

// AlarmType - результат классификации значения точки.
type AlarmType string

const (
	NoAlarm              AlarmType = "NO_ALARM"
	LowAlarm             AlarmType = "LOW_ALARM"
	HighAlarm            AlarmType = "HIGH_ALARM"
	ReasonabilityFailure AlarmType = "REASONABILITY_FAILURE"
	AbnormalValue        AlarmType = "ABNORMAL_VALUE"
)

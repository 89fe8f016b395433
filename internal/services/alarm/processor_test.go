package alarm

import (
	"testing"

	"github.com/iwtcode/tankRtu/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func levelConfig() *entities.ConfigItem {
	return &entities.ConfigItem{
		Name:        "L",
		Type:        entities.AnalogOutput,
		ScaleFactor: 1,
		EGUMin:      0,
		EGUMax:      12000,
		LowLimit:    1000,
		HighLimit:   10500,
	}
}

func TestForAnalog(t *testing.T) {
	cfg := levelConfig()

	tests := []struct {
		name string
		egu  float64
		want entities.AlarmType
	}{
		{"below egu min", -1, entities.ReasonabilityFailure},
		{"above egu max", 12001, entities.ReasonabilityFailure},
		{"low", 999, entities.LowAlarm},
		{"at low limit", 1000, entities.NoAlarm},
		{"normal", 6000, entities.NoAlarm},
		{"at high limit", 10500, entities.NoAlarm},
		{"high", 10501, entities.HighAlarm},
		{"at egu max", 12000, entities.HighAlarm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForAnalog(tt.egu, cfg))
		})
	}
}

func TestReasonabilityTakesPrecedence(t *testing.T) {
	// пределы шире допустимого диапазона: достоверность все равно проверяется первой
	cfg := &entities.ConfigItem{EGUMin: 0, EGUMax: 100, LowLimit: -50, HighLimit: 500}

	assert.Equal(t, entities.ReasonabilityFailure, ForAnalog(-10, cfg))
	assert.Equal(t, entities.ReasonabilityFailure, ForAnalog(200, cfg))
}

func TestForDigital(t *testing.T) {
	cfg := &entities.ConfigItem{Type: entities.DigitalOutput, DefaultValue: 0}

	assert.Equal(t, entities.NoAlarm, ForDigital(0, cfg))
	assert.Equal(t, entities.AbnormalValue, ForDigital(1, cfg))

	cfg.DefaultValue = 1
	assert.Equal(t, entities.AbnormalValue, ForDigital(0, cfg))
	assert.Equal(t, entities.NoAlarm, ForDigital(1, cfg))
}

func TestForPoint(t *testing.T) {
	level := entities.NewPoint(entities.PointState{
		ID:       entities.PointIdentifier{Type: entities.AnalogOutput, Address: 1000},
		Item:     levelConfig(),
		RawValue: 11000,
	})
	assert.Equal(t, entities.HighAlarm, ForPoint(level))

	pump := entities.NewPoint(entities.PointState{
		ID:       entities.PointIdentifier{Type: entities.DigitalOutput, Address: 2005},
		Item:     &entities.ConfigItem{Type: entities.DigitalOutput},
		RawValue: 1,
	})
	assert.Equal(t, entities.AbnormalValue, ForPoint(pump))
}

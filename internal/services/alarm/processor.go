// Package alarm классифицирует значения точек по пределам из конфигурации.
package alarm

import (
	"github.com/iwtcode/tankRtu/internal/domain/entities"
)

// ForAnalog проверяет достоверность раньше пределов: значение вне
// [EGUMin, EGUMax] всегда REASONABILITY_FAILURE.
func ForAnalog(egu float64, cfg *entities.ConfigItem) entities.AlarmType {
	switch {
	case egu < cfg.EGUMin || egu > cfg.EGUMax:
		return entities.ReasonabilityFailure
	case egu < cfg.LowLimit:
		return entities.LowAlarm
	case egu > cfg.HighLimit:
		return entities.HighAlarm
	}
	return entities.NoAlarm
}

func ForDigital(state uint16, cfg *entities.ConfigItem) entities.AlarmType {
	if state != cfg.DefaultValue {
		return entities.AbnormalValue
	}
	return entities.NoAlarm
}

// ForPoint выбирает классификацию по варианту точки.
func ForPoint(p entities.Point) entities.AlarmType {
	switch v := p.(type) {
	case entities.AnalogPoint:
		return ForAnalog(v.EGU(), v.Item)
	case entities.DigitalPoint:
		return ForDigital(v.Value(), v.Item)
	}
	return entities.NoAlarm
}

// Package egu переводит сырые значения регистров в инженерные единицы и обратно.
package egu

import (
	"fmt"
	"math"

	"github.com/iwtcode/tankRtu/pkg/errors"
)

// ConvertToEGU возвращает a*raw + b.
func ConvertToEGU(a, b float64, raw uint16) float64 {
	return a*float64(raw) + b
}

// ConvertToRaw возвращает ближайшее сырое значение для egu: (egu-b)/a
// с округлением половины вверх и ограничением диапазоном [0, 65535].
func ConvertToRaw(a, b, egu float64) (uint16, error) {
	if a == 0 {
		return 0, errors.ErrInvalidScale
	}
	if math.IsNaN(egu) {
		return 0, fmt.Errorf("%w: NaN", errors.ErrInvalidValue)
	}

	v := math.Floor((egu-b)/a + 0.5)
	switch {
	case math.IsNaN(v):
		return 0, fmt.Errorf("%w: значение %v вне допустимого диапазона", errors.ErrInvalidValue, egu)
	case v <= 0:
		return 0, nil
	case v >= math.MaxUint16:
		return math.MaxUint16, nil
	}
	return uint16(v), nil
}

package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"gopkg.in/yaml.v3"
)

// pointsFile - формат YAML-таблицы точек
type pointsFile struct {
	Points []pointEntry `yaml:"points"`
}

type pointEntry struct {
	Name                string   `yaml:"name"`
	Type                string   `yaml:"type"`
	Address             uint16   `yaml:"address"`
	Registers           uint16   `yaml:"registers"`
	AcquisitionInterval int      `yaml:"acquisition_interval"`
	Scale               *float64 `yaml:"scale"`
	Deviation           float64  `yaml:"deviation"`
	EGUMin              float64  `yaml:"egu_min"`
	EGUMax              float64  `yaml:"egu_max"`
	LowLimit            float64  `yaml:"low_limit"`
	HighLimit           float64  `yaml:"high_limit"`
	Default             uint16   `yaml:"default"`
}

// LoadPoints читает таблицу точек из файла. Пустой путь означает встроенную таблицу.
func LoadPoints(path string) ([]*entities.ConfigItem, error) {
	if path == "" {
		return DefaultPoints(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось прочитать файл точек %q: %v", errors.ErrConfiguration, path, err)
	}
	return ParsePoints(data)
}

// ParsePoints разбирает и проверяет YAML-таблицу точек.
func ParsePoints(data []byte) ([]*entities.ConfigItem, error) {
	var file pointsFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: ошибка разбора таблицы точек: %v", errors.ErrConfiguration, err)
	}

	items := make([]*entities.ConfigItem, 0, len(file.Points))
	for i, entry := range file.Points {
		item, err := entry.toConfigItem()
		if err != nil {
			return nil, fmt.Errorf("%w: точка #%d (%s): %v", errors.ErrConfiguration, i+1, entry.Name, err)
		}
		items = append(items, item)
	}
	if err := ValidatePoints(items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s pointEntry) toConfigItem() (*entities.ConfigItem, error) {
	pointType, err := entities.ParsePointType(s.Type)
	if err != nil {
		return nil, err
	}

	item := &entities.ConfigItem{
		Name:                s.Name,
		Type:                pointType,
		StartAddress:        s.Address,
		NumberOfRegisters:   s.Registers,
		AcquisitionInterval: s.AcquisitionInterval,
		ScaleFactor:         1,
		Deviation:           s.Deviation,
		EGUMin:              s.EGUMin,
		EGUMax:              s.EGUMax,
		LowLimit:            s.LowLimit,
		HighLimit:           s.HighLimit,
		DefaultValue:        s.Default,
	}
	if s.Scale != nil {
		item.ScaleFactor = *s.Scale
	}
	if item.NumberOfRegisters == 0 {
		item.NumberOfRegisters = 1
	}
	if item.AcquisitionInterval == 0 {
		item.AcquisitionInterval = 1
	}
	if pointType.IsDigital() && s.EGUMax == 0 {
		item.EGUMax = 1
	}
	return item, nil
}

// ValidatePoints проверяет инварианты таблицы точек.
func ValidatePoints(items []*entities.ConfigItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: таблица точек пуста", errors.ErrConfiguration)
	}

	seenIDs := make(map[entities.PointIdentifier]string, len(items))
	seenNames := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Name == "" {
			return fmt.Errorf("%w: у точки %s нет имени", errors.ErrConfiguration, item.Identifier())
		}
		if _, ok := seenNames[item.Name]; ok {
			return fmt.Errorf("%w: повторяющееся имя точки %q", errors.ErrConfiguration, item.Name)
		}
		seenNames[item.Name] = struct{}{}

		if other, ok := seenIDs[item.Identifier()]; ok {
			return fmt.Errorf("%w: точки %q и %q имеют одинаковый идентификатор %s", errors.ErrConfiguration, other, item.Name, item.Identifier())
		}
		seenIDs[item.Identifier()] = item.Name

		if item.Type.IsAnalog() && item.ScaleFactor == 0 {
			return fmt.Errorf("%w: у аналоговой точки %q нулевой коэффициент масштаба", errors.ErrConfiguration, item.Name)
		}
		if item.AcquisitionInterval < 1 {
			return fmt.Errorf("%w: у точки %q недопустимый интервал опроса %d", errors.ErrConfiguration, item.Name, item.AcquisitionInterval)
		}
		if item.NumberOfRegisters == 0 {
			return fmt.Errorf("%w: точка %q читает ноль регистров", errors.ErrConfiguration, item.Name)
		}
		if int(item.StartAddress)+int(item.NumberOfRegisters) > 0x10000 {
			return fmt.Errorf("%w: диапазон адресов точки %q выходит за 65535", errors.ErrConfiguration, item.Name)
		}
		if item.EGUMin > item.EGUMax {
			return fmt.Errorf("%w: у точки %q egu_min больше egu_max", errors.ErrConfiguration, item.Name)
		}
	}
	return nil
}

// DefaultPoints - встроенная таблица точек резервуара.
func DefaultPoints() []*entities.ConfigItem {
	digital := func(name string, address uint16) *entities.ConfigItem {
		return &entities.ConfigItem{
			Name:                name,
			Type:                entities.DigitalOutput,
			StartAddress:        address,
			NumberOfRegisters:   1,
			AcquisitionInterval: 1,
			ScaleFactor:         1,
			EGUMax:              1,
		}
	}

	return []*entities.ConfigItem{
		{
			Name:                "L",
			Type:                entities.AnalogOutput,
			StartAddress:        1000,
			NumberOfRegisters:   1,
			AcquisitionInterval: 1,
			ScaleFactor:         1,
			EGUMin:              0,
			EGUMax:              12000,
			LowLimit:            1000,
			HighLimit:           10500,
		},
		digital("STOP", 2000),
		digital("V1", 2002),
		digital("P1", 2005),
		digital("P2", 2006),
	}
}

// Package tank содержит модель резервуара и правила безопасности,
// общие для циклов сбора данных и автоматики.
package tank

import (
	"context"
	"fmt"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

// ControlStep - шаг, выполняемый в конце цикла управления.
type ControlStep interface {
	Name() string
	Step(ctx context.Context) error
}

// Points - конфигурация именованных точек резервуара.
type Points struct {
	Level *entities.ConfigItem
	Stop  *entities.ConfigItem
	Pump1 *entities.ConfigItem
	Pump2 *entities.ConfigItem
	Valve *entities.ConfigItem
}

// ResolvePoints находит точки резервуара по именам и проверяет их классы.
func ResolvePoints(cfg *config.AppConfig, configuration interfaces.Configuration) (*Points, error) {
	lookup := func(name string, analog bool) (*entities.ConfigItem, error) {
		item, err := configuration.Lookup(name)
		if err != nil {
			return nil, err
		}
		if analog && !item.Type.IsAnalog() {
			return nil, fmt.Errorf("%w: точка %q должна быть аналоговой, получено %s", errors.ErrConfiguration, name, item.Type)
		}
		if !analog && item.Type != entities.DigitalOutput {
			return nil, fmt.Errorf("%w: точка %q должна быть %s, получено %s", errors.ErrConfiguration, name, entities.DigitalOutput, item.Type)
		}
		return item, nil
	}

	var (
		p   Points
		err error
	)
	if p.Level, err = lookup(cfg.Tank.LevelPoint, true); err != nil {
		return nil, err
	}
	if p.Stop, err = lookup(cfg.Tank.StopPoint, false); err != nil {
		return nil, err
	}
	if p.Pump1, err = lookup(cfg.Tank.Pump1Point, false); err != nil {
		return nil, err
	}
	if p.Pump2, err = lookup(cfg.Tank.Pump2Point, false); err != nil {
		return nil, err
	}
	if p.Valve, err = lookup(cfg.Tank.ValvePoint, false); err != nil {
		return nil, err
	}
	if p.Level.Type == entities.AnalogInput {
		// уровень пишется моделью, поэтому он должен быть выходом
		return nil, fmt.Errorf("%w: точка уровня %q должна быть %s", errors.ErrConfiguration, p.Level.Name, entities.AnalogOutput)
	}
	return &p, nil
}

func (p *Points) identifiers() []entities.PointIdentifier {
	return []entities.PointIdentifier{
		p.Stop.Identifier(),
		p.Pump1.Identifier(),
		p.Pump2.Identifier(),
		p.Valve.Identifier(),
		p.Level.Identifier(),
	}
}

// State - согласованный снимок точек резервуара.
type State struct {
	Stop  uint16
	Pump1 uint16
	Pump2 uint16
	Valve uint16
	Level float64
	Raw   uint16 // сырое значение уровня

	HighLimit float64
	EGUMax    float64
}

// ReadState снимает значения всех точек резервуара из хранилища.
func ReadState(storage interfaces.Storage, p *Points) (State, error) {
	points, err := storage.GetPoints(p.identifiers())
	if err != nil {
		return State{}, err
	}

	digital := func(i int) (uint16, error) {
		d, ok := points[i].(entities.DigitalPoint)
		if !ok {
			return 0, fmt.Errorf("%w: точка %s не дискретная", errors.ErrConfiguration, points[i].Identifier())
		}
		return d.Value(), nil
	}

	var s State
	if s.Stop, err = digital(0); err != nil {
		return State{}, err
	}
	if s.Pump1, err = digital(1); err != nil {
		return State{}, err
	}
	if s.Pump2, err = digital(2); err != nil {
		return State{}, err
	}
	if s.Valve, err = digital(3); err != nil {
		return State{}, err
	}
	level, ok := points[4].(entities.AnalogPoint)
	if !ok {
		return State{}, fmt.Errorf("%w: точка %s не аналоговая", errors.ErrConfiguration, points[4].Identifier())
	}
	s.Level = level.EGU()
	s.Raw = level.RawValue
	s.HighLimit = level.Item.HighLimit
	s.EGUMax = level.Item.EGUMax
	return s, nil
}

// Write - желаемое значение дискретного выхода.
type Write struct {
	Item  *entities.ConfigItem
	Value uint16
}

func issue(ctx context.Context, processing interfaces.ProcessingManager, configuration interfaces.Configuration, item *entities.ConfigItem, value uint16) error {
	return processing.ExecuteWriteCommand(ctx, item, configuration.GetTransactionID(), configuration.UnitAddress(), item.StartAddress, value)
}

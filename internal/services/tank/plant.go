package tank

import (
	"context"
	"fmt"
	"time"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/services/egu"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

// PlantParams - расходы модели резервуара в литрах за секунду.
// Step - длительность одного шага модели, нулевое значение означает одну секунду.
type PlantParams struct {
	Pump1Inflow   float64
	Pump2Inflow   float64
	ValveOutflow  float64
	DrainageLevel float64
	Step          time.Duration
}

func (p PlantParams) seconds() float64 {
	if p.Step <= 0 {
		return 1
	}
	return p.Step.Seconds()
}

func ParamsFromConfig(cfg *config.AppConfig) PlantParams {
	return PlantParams{
		Pump1Inflow:   cfg.Tank.Pump1Inflow,
		Pump2Inflow:   cfg.Tank.Pump2Inflow,
		ValveOutflow:  cfg.Tank.ValveOutflow,
		DrainageLevel: cfg.Tank.DrainageLevel,
		Step:          cfg.Acquisition.Tick,
	}
}

// NextLevel вычисляет уровень через один шаг p.Step.
// Насосы наполняют резервуар только при STOP=0, клапан сливает только при STOP=1
// и уровне выше порога слива.
func NextLevel(s State, p PlantParams) float64 {
	dt := p.seconds()
	level := s.Level
	if s.Stop == 0 {
		if s.Pump1 == 1 {
			level += p.Pump1Inflow * dt
		}
		if s.Pump2 == 1 {
			level += p.Pump2Inflow * dt
		}
	} else if s.Valve == 1 && s.Level > p.DrainageLevel {
		level -= p.ValveOutflow * dt
	}

	switch {
	case level < 0:
		return 0
	case level > s.EGUMax:
		return s.EGUMax
	}
	return level
}

// SimulatedPlant заменяет физический процесс: продвигает уровень на один шаг
// и записывает его в устройство, если он изменился.
type SimulatedPlant struct {
	points        *Points
	params        PlantParams
	storage       interfaces.Storage
	processing    interfaces.ProcessingManager
	configuration interfaces.Configuration
	logger        *logging.Logger
}

func NewSimulatedPlant(points *Points, params PlantParams, storage interfaces.Storage, processing interfaces.ProcessingManager, configuration interfaces.Configuration, logger *logging.Logger) *SimulatedPlant {
	return &SimulatedPlant{
		points:        points,
		params:        params,
		storage:       storage,
		processing:    processing,
		configuration: configuration,
		logger:        logger.WithPrefix("PLANT"),
	}
}

func (p *SimulatedPlant) Name() string { return config.PlantSimulated }

func (p *SimulatedPlant) Step(ctx context.Context) error {
	state, err := ReadState(p.storage, p.points)
	if err != nil {
		return err
	}

	next := NextLevel(state, p.params)
	if next == state.Level {
		return nil
	}
	raw, err := egu.ConvertToRaw(p.points.Level.ScaleFactor, p.points.Level.Deviation, next)
	if err != nil {
		return fmt.Errorf("не удалось преобразовать уровень %v: %w", next, err)
	}
	if raw == state.Raw {
		return nil
	}

	p.logger.Debug("Level changed", "from", state.Level, "to", next, "stop", state.Stop, "p1", state.Pump1, "p2", state.Pump2, "valve", state.Valve)
	return issue(ctx, p.processing, p.configuration, p.points.Level, raw)
}

// FieldPlant используется с реальным оборудованием: уровень меняет сам процесс.
type FieldPlant struct{}

func (FieldPlant) Name() string                   { return config.PlantField }
func (FieldPlant) Step(ctx context.Context) error { return nil }

// NewPlant выбирает модель процесса по настройке PLANT_MODE.
func NewPlant(cfg *config.AppConfig, points *Points, storage interfaces.Storage, processing interfaces.ProcessingManager, configuration interfaces.Configuration, logger *logging.Logger) (ControlStep, error) {
	switch cfg.Acquisition.PlantMode {
	case config.PlantSimulated:
		return NewSimulatedPlant(points, ParamsFromConfig(cfg), storage, processing, configuration, logger), nil
	case config.PlantField:
		return FieldPlant{}, nil
	}
	return nil, fmt.Errorf("%w: неизвестный режим модели %q", errors.ErrConfiguration, cfg.Acquisition.PlantMode)
}

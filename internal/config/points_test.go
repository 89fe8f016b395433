package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPointsFromRepositoryFile(t *testing.T) {
	items, err := LoadPoints(filepath.Join("..", "..", "configs", "rtu_points.yaml"))
	require.NoError(t, err)
	require.Len(t, items, 5)

	assert.Equal(t, DefaultPoints(), items)
}

func TestLoadPointsEmptyPathUsesDefaults(t *testing.T) {
	items, err := LoadPoints("")
	require.NoError(t, err)
	require.NoError(t, ValidatePoints(items))

	level := items[0]
	assert.Equal(t, "L", level.Name)
	assert.Equal(t, entities.PointIdentifier{Type: entities.AnalogOutput, Address: 1000}, level.Identifier())
	assert.Equal(t, 10500.0, level.HighLimit)
}

func TestLoadPointsMissingFile(t *testing.T) {
	_, err := LoadPoints(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestParsePointsDefaults(t *testing.T) {
	items, err := ParsePoints([]byte(`
points:
  - name: T
    type: ANALOG_INPUT
    address: 300
    egu_max: 100
    high_limit: 90
`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1.0, items[0].ScaleFactor)
	assert.Equal(t, uint16(1), items[0].NumberOfRegisters)
	assert.Equal(t, 1, items[0].AcquisitionInterval)
}

func TestParsePointsRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "points: []"},
		{"unknown field", "points:\n  - name: A\n    type: AO\n    addres: 1\n"},
		{"unknown type", "points:\n  - name: A\n    type: XX\n    address: 1\n"},
		{"zero scale", "points:\n  - name: A\n    type: AO\n    address: 1\n    scale: 0\n    egu_max: 10\n"},
		{"duplicate name", "points:\n  - name: A\n    type: DO\n    address: 1\n  - name: A\n    type: DO\n    address: 2\n"},
		{"duplicate identifier", "points:\n  - name: A\n    type: DO\n    address: 1\n  - name: B\n    type: DO\n    address: 1\n"},
		{"egu range inverted", "points:\n  - name: A\n    type: AO\n    address: 1\n    egu_min: 10\n    egu_max: 5\n"},
		{"negative interval", "points:\n  - name: A\n    type: DO\n    address: 1\n    acquisition_interval: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePoints([]byte(tt.yaml))
			assert.ErrorIs(t, err, errors.ErrConfiguration)
		})
	}
}

func TestLoadConfigurationReadsEnvironment(t *testing.T) {
	t.Setenv("RTU_ADDRESS", "10.0.0.5:502")
	t.Setenv("RTU_UNIT_ADDRESS", "17")
	t.Setenv("AUTOMATION_DELAY_MS", "250")
	t.Setenv("TANK_PUMP1_INFLOW", "12.5")

	cfg, err := LoadConfiguration()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:502", cfg.Rtu.Address)
	assert.Equal(t, byte(17), cfg.Rtu.UnitAddress)
	assert.Equal(t, int64(250), cfg.Automation.Delay.Milliseconds())
	assert.Equal(t, 12.5, cfg.Tank.Pump1Inflow)
	assert.Equal(t, 6000.0, cfg.Tank.DrainageLevel)
}

func TestLoadPointsReadsTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.yaml")
	require.NoError(t, os.WriteFile(path, []byte("points:\n  - name: S\n    type: DI\n    address: 7\n    default: 1\n"), 0o644))

	items, err := LoadPoints(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entities.DigitalInput, items[0].Type)
	assert.Equal(t, uint16(1), items[0].DefaultValue)
	assert.Equal(t, 1.0, items[0].EGUMax)
}

package acquisition

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
	"github.com/iwtcode/tankRtu/internal/services/configuration"
	"github.com/iwtcode/tankRtu/internal/services/scheduler"
	"github.com/iwtcode/tankRtu/internal/services/tank"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readCall struct {
	Name     string
	Start    uint16
	Quantity uint16
}

type fakeProcessing struct {
	mu    sync.Mutex
	reads []readCall
	fail  map[string]bool
}

func (f *fakeProcessing) ExecuteReadCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, start, quantity uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, readCall{Name: item.Name, Start: start, Quantity: quantity})
	if f.fail[item.Name] {
		return errors.ErrTimeout
	}
	return nil
}

func (f *fakeProcessing) ExecuteWriteCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, address, value uint16) error {
	return nil
}

func (f *fakeProcessing) readsOf(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reads {
		if r.Name == name {
			n++
		}
	}
	return n
}

// gatedProcessing задерживает чтение точки gate до закрытия release.
type gatedProcessing struct {
	fakeProcessing
	gate    string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedProcessing) ExecuteReadCommand(ctx context.Context, item *entities.ConfigItem, transactionID uint16, unit byte, start, quantity uint16) error {
	if item.Name == g.gate {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.fakeProcessing.ExecuteReadCommand(ctx, item, transactionID, unit, start, quantity)
}

type countingStep struct {
	mu    sync.Mutex
	steps int
}

func (s *countingStep) Name() string { return "counting" }

func (s *countingStep) Step(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps++
	return nil
}

func (s *countingStep) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

var _ tank.ControlStep = (*countingStep)(nil)

func newConfiguration(t *testing.T, items []*entities.ConfigItem) *configuration.Configuration {
	t.Helper()
	c, err := configuration.New(items, 1)
	require.NoError(t, err)
	return c
}

func TestAcquisitionRespectsInterval(t *testing.T) {
	items := config.DefaultPoints()
	items[0].AcquisitionInterval = 5
	proc := &fakeProcessing{}
	plant := &countingStep{}
	a := New(nil, newConfiguration(t, items), proc, plant, logging.NewNopLogger())

	for i := 1; i <= 4; i++ {
		require.NoError(t, a.Cycle(context.Background()))
		assert.Zero(t, proc.readsOf("L"), "cycle %d", i)
	}
	require.NoError(t, a.Cycle(context.Background()))
	assert.Equal(t, 1, proc.readsOf("L"))

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Cycle(context.Background()))
	}
	assert.Equal(t, 2, proc.readsOf("L"))

	// точки с интервалом 1 читаются каждый цикл
	assert.Equal(t, 10, proc.readsOf("P1"))
	assert.Equal(t, 10, plant.count())
	assert.Equal(t, uint64(10), a.Status().Cycles)
}

func TestAcquisitionIntervalFollowsTick(t *testing.T) {
	items := config.DefaultPoints()
	items[0].AcquisitionInterval = 2
	proc := &fakeProcessing{}
	a := New(nil, newConfiguration(t, items), proc, &countingStep{}, logging.NewNopLogger(), WithTick(500*time.Millisecond))

	for i := 1; i <= 3; i++ {
		require.NoError(t, a.Cycle(context.Background()))
		assert.Zero(t, proc.readsOf("L"), "cycle %d", i)
	}
	require.NoError(t, a.Cycle(context.Background()))
	assert.Equal(t, 1, proc.readsOf("L"))

	// точка с интервалом 1 при полусекундном периоде читается через цикл
	assert.Equal(t, 2, proc.readsOf("P1"))
}

func TestAcquisitionContinuesAfterReadFailure(t *testing.T) {
	proc := &fakeProcessing{fail: map[string]bool{"STOP": true}}
	plant := &countingStep{}
	a := New(nil, newConfiguration(t, config.DefaultPoints()), proc, plant, logging.NewNopLogger())

	err := a.Cycle(context.Background())
	assert.ErrorIs(t, err, errors.ErrTransport)
	assert.Equal(t, 1, proc.readsOf("P2"), "points after the failed one are still read")
	assert.Equal(t, 1, plant.count(), "plant step still runs")
	assert.NotEmpty(t, a.Status().LastError)
}

func TestAcquisitionReadsWholeRange(t *testing.T) {
	items := []*entities.ConfigItem{{
		Name: "T", Type: entities.AnalogInput, StartAddress: 300, NumberOfRegisters: 4,
		AcquisitionInterval: 1, ScaleFactor: 1, EGUMax: 100,
	}}
	proc := &fakeProcessing{}
	a := New(nil, newConfiguration(t, items), proc, tank.FieldPlant{}, logging.NewNopLogger())

	require.NoError(t, a.Cycle(context.Background()))
	require.Len(t, proc.reads, 1)
	assert.Equal(t, readCall{Name: "T", Start: 300, Quantity: 4}, proc.reads[0])
}

func TestRunCyclesOnTriggerAndStops(t *testing.T) {
	trigger := scheduler.NewTrigger()
	plant := &countingStep{}
	a := New(trigger.C(), newConfiguration(t, config.DefaultPoints()), &fakeProcessing{}, plant, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	trigger.Raise()
	require.Eventually(t, func() bool { return plant.count() == 1 }, time.Second, 5*time.Millisecond)
	trigger.Raise()
	require.Eventually(t, func() bool { return plant.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, a.Status().Running)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, a.Status().Running)
}

func TestCancelDuringCycleLetsCycleFinish(t *testing.T) {
	items := config.DefaultPoints()
	proc := &gatedProcessing{gate: "L", entered: make(chan struct{}), release: make(chan struct{})}
	plant := &countingStep{}
	trigger := scheduler.NewTrigger()
	a := New(trigger.C(), newConfiguration(t, items), proc, plant, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	trigger.Raise()

	select {
	case <-proc.entered:
	case <-time.After(time.Second):
		t.Fatal("cycle did not start")
	}
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a cycle was in progress")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Zero(t, plant.count())
	assert.Zero(t, a.Status().Cycles)

	close(proc.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the cycle finished")
	}

	for _, item := range items {
		assert.Equal(t, 1, proc.readsOf(item.Name), item.Name)
	}
	assert.Equal(t, 1, plant.count())
	status := a.Status()
	assert.Equal(t, uint64(1), status.Cycles)
	assert.Empty(t, status.LastError)
	assert.False(t, status.Running)
}

package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	levelID = entities.PointIdentifier{Type: entities.AnalogOutput, Address: 1000}
	stopID  = entities.PointIdentifier{Type: entities.DigitalOutput, Address: 2000}
	pump1ID = entities.PointIdentifier{Type: entities.DigitalOutput, Address: 2005}
)

func TestNewStorageStartsWithDefaults(t *testing.T) {
	items := config.DefaultPoints()
	items[1].DefaultValue = 1
	s := New(items)

	points, err := s.GetPoints([]entities.PointIdentifier{stopID, levelID})
	require.NoError(t, err)
	require.Len(t, points, 2)

	stop, ok := points[0].(entities.DigitalPoint)
	require.True(t, ok)
	assert.Equal(t, uint16(1), stop.Value())

	level, ok := points[1].(entities.AnalogPoint)
	require.True(t, ok)
	assert.Equal(t, 0.0, level.EGU())
	assert.False(t, level.Stale)
}

func TestGetPointsUnknownIdentifier(t *testing.T) {
	s := New(config.DefaultPoints())

	_, err := s.GetPoints([]entities.PointIdentifier{{Type: entities.AnalogInput, Address: 1}})
	assert.ErrorIs(t, err, errors.ErrPointNotFound)
}

func TestCommitAndMarkFailed(t *testing.T) {
	s := New(config.DefaultPoints())
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	before, after, err := s.Commit(levelID, 6000, at)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), before.Raw())
	assert.Equal(t, uint16(6000), after.Raw())
	assert.Equal(t, at, after.State().Timestamp)

	failed, err := s.MarkFailed(levelID)
	require.NoError(t, err)
	assert.True(t, failed.State().Stale)
	assert.Equal(t, 1, failed.State().ConsecutiveFailures)
	assert.Equal(t, uint16(6000), failed.Raw(), "failed read keeps the previous value")

	failed, err = s.MarkFailed(levelID)
	require.NoError(t, err)
	assert.Equal(t, 2, failed.State().ConsecutiveFailures)

	_, after, err = s.Commit(levelID, 6100, at.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, after.State().Stale)
	assert.Equal(t, 0, after.State().ConsecutiveFailures)

	_, _, err = s.Commit(entities.PointIdentifier{Type: entities.AnalogInput, Address: 9}, 1, at)
	assert.ErrorIs(t, err, errors.ErrPointNotFound)
}

func TestSnapshotFollowsConfigurationOrder(t *testing.T) {
	s := New(config.DefaultPoints())

	var names []string
	for _, p := range s.Snapshot() {
		names = append(names, p.Config().Name)
	}
	assert.Equal(t, []string{"L", "STOP", "V1", "P1", "P2"}, names)
}

func TestConcurrentCommitsAndReads(t *testing.T) {
	s := New(config.DefaultPoints())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_, _, err := s.Commit(pump1ID, uint16((i+w)%2), time.Now())
				assert.NoError(t, err)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				points, err := s.GetPoints([]entities.PointIdentifier{pump1ID, levelID})
				assert.NoError(t, err)
				assert.LessOrEqual(t, points[0].Raw(), uint16(1))
			}
		}()
	}
	wg.Wait()
}

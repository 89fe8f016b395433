package configuration

import (
	"sync"
	"testing"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationLookup(t *testing.T) {
	c, err := New(config.DefaultPoints(), 1)
	require.NoError(t, err)

	item, err := c.Lookup("P1")
	require.NoError(t, err)
	assert.Equal(t, uint16(2005), item.StartAddress)

	byID, ok := c.Item(entities.PointIdentifier{Type: entities.DigitalOutput, Address: 2002})
	require.True(t, ok)
	assert.Equal(t, "V1", byID.Name)

	_, err = c.Lookup("P3")
	assert.ErrorIs(t, err, errors.ErrConfiguration)

	assert.Equal(t, byte(1), c.UnitAddress())
	assert.Len(t, c.GetConfigurationItems(), 5)
}

func TestConfigurationRejectsInvalidTable(t *testing.T) {
	items := config.DefaultPoints()
	items[0].ScaleFactor = 0

	_, err := New(items, 1)
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestTransactionIDsAreUnique(t *testing.T) {
	c, err := New(config.DefaultPoints(), 1)
	require.NoError(t, err)

	const workers, perWorker = 8, 1000
	ids := make(chan uint16, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- c.GetTransactionID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint16]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate transaction id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

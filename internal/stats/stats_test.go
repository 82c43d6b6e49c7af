package stats_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/stats"
)

func Test_Counters_IncrementAndSnapshot(t *testing.T) {
	t.Parallel()

	c := stats.New()
	c.IncrCommandsProcessed()
	c.IncrCommandsProcessed()
	c.IncrKeyspaceHit()
	c.IncrKeyspaceMiss()
	c.IncrExpiredKeys(3)
	c.IncrEvictedKeys(5)
	c.NotifyKeyChanged(0, "k")

	snap := c.Snapshot()
	require.Equal(t, int64(2), snap.CommandsProcessed)
	require.Equal(t, int64(1), snap.KeyspaceHits)
	require.Equal(t, int64(1), snap.KeyspaceMisses)
	require.Equal(t, int64(3), snap.ExpiredKeys)
	require.Equal(t, int64(5), snap.EvictedKeys)
	require.Equal(t, int64(1), snap.Mutations)
}

func Test_Counters_ConcurrentIncrements_NoRace(t *testing.T) {
	t.Parallel()

	c := stats.New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncrCommandsProcessed()
		}()
	}
	wg.Wait()

	require.Equal(t, int64(100), c.Snapshot().CommandsProcessed)
}

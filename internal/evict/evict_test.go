package evict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/evict"
	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
)

func Test_EnsureBudget_UnboundedWhenMaxBytesIsZero(t *testing.T) {
	t.Parallel()

	ks := store.NewKeyspace(4, 0, nil)
	ks.Set("k", store.StringValue("a big value that would not fit under a tiny cap"), 0)

	p := evict.New(5, stats.New())
	require.NoError(t, p.EnsureBudget(ks, 0))
	require.True(t, ks.Exists("k"))
}

func Test_EnsureBudget_EvictsUntilUnderCap(t *testing.T) {
	t.Parallel()

	counters := stats.New()
	ks := store.NewKeyspace(4, 0, counters)
	for i := 0; i < 20; i++ {
		ks.Set(string(rune('a'+i)), store.StringValue("0123456789"), 0)
	}
	before := ks.EstimatedBytes()
	require.Positive(t, before)

	p := evict.New(5, counters)
	cap := before / 2
	err := p.EnsureBudget(ks, cap)
	require.NoError(t, err)
	require.LessOrEqual(t, ks.EstimatedBytes(), cap)
	require.Positive(t, counters.Snapshot().EvictedKeys)
}

func Test_EnsureBudget_ReturnsOOMWhenKeyspaceEmpty(t *testing.T) {
	t.Parallel()

	ks := store.NewKeyspace(4, 0, nil)
	p := evict.New(5, nil)

	err := p.EnsureBudget(ks, 1)
	require.ErrorIs(t, err, evict.ErrOOM)
}

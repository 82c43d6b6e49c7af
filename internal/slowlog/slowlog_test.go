package slowlog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/slowlog"
)

func Test_MaybeRecord_SkipsBelowThreshold(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, 1000)
	l.MaybeRecord(1, 500, []string{"GET", "k"})
	require.Equal(t, 0, l.Len())
}

func Test_MaybeRecord_RecordsAtOrAboveThreshold(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, 1000)
	l.MaybeRecord(1, 1000, []string{"GET", "k"})
	l.MaybeRecord(2, 5000, []string{"SET", "k", "v"})
	require.Equal(t, 2, l.Len())
}

func Test_MaybeRecord_NegativeThresholdDisablesRecording(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, -1)
	l.MaybeRecord(1, 1_000_000, []string{"SET", "k", "v"})
	require.Equal(t, 0, l.Len())
}

func Test_Get_ReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, 0)
	l.MaybeRecord(1, 100, []string{"CMD1"})
	l.MaybeRecord(2, 200, []string{"CMD2"})
	l.MaybeRecord(3, 300, []string{"CMD3"})

	entries := l.Get(-1)
	require.Len(t, entries, 3)
	require.Equal(t, []string{"CMD3"}, entries[0].Args)
	require.Equal(t, []string{"CMD2"}, entries[1].Args)
	require.Equal(t, []string{"CMD1"}, entries[2].Args)
}

func Test_Get_LimitsToN(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, 0)
	for i := 0; i < 5; i++ {
		l.MaybeRecord(int64(i), 100, []string{"CMD"})
	}
	require.Len(t, l.Get(2), 2)
}

func Test_CircularBuffer_WrapsAtCapacity(t *testing.T) {
	t.Parallel()

	l := slowlog.New(3, 0)
	for i := 1; i <= 5; i++ {
		l.MaybeRecord(int64(i), 100, []string{"CMD"})
	}
	require.Equal(t, 3, l.Len(), "length is capped at capacity")

	entries := l.Get(-1)
	require.Len(t, entries, 3)
	// Only the three most recent entries (ids 3, 4, 5) survive.
	require.Equal(t, int64(5), entries[0].ID)
	require.Equal(t, int64(4), entries[1].ID)
	require.Equal(t, int64(3), entries[2].ID)
}

func Test_Reset_ClearsEntries(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, 0)
	l.MaybeRecord(1, 100, []string{"CMD"})
	l.Reset()
	require.Equal(t, 0, l.Len())
	require.Empty(t, l.Get(-1))
}

func Test_SetThreshold_AffectsSubsequentRecording(t *testing.T) {
	t.Parallel()

	l := slowlog.New(10, 0)
	l.SetThreshold(10_000)
	l.MaybeRecord(1, 5_000, []string{"CMD"})
	require.Equal(t, 0, l.Len())

	l.SetThreshold(0)
	l.MaybeRecord(2, 5_000, []string{"CMD"})
	require.Equal(t, 1, l.Len())
}

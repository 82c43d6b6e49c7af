package expire_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/expire"
	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
)

func Test_Run_ExpiresStaleKeysAcrossDatabases(t *testing.T) {
	t.Parallel()

	counters := stats.New()
	dbs := store.NewDBSet(2, 4, counters)

	past := time.Now().Add(-time.Hour).UnixMilli()
	for i := 0; i < 10; i++ {
		dbs.Get(0).Set(string(rune('a'+i)), store.StringValue("v"), past)
	}
	dbs.Get(1).Set("live", store.StringValue("v"), 0)

	s := expire.New(nil, dbs, counters, 5*time.Millisecond, 5, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)
	require.NoError(t, err)

	require.Equal(t, 0, dbs.Get(0).DBSize())
	require.True(t, dbs.Get(1).Exists("live"))
	require.Positive(t, counters.Snapshot().ExpiredKeys)
}

func Test_Run_StopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	counters := stats.New()
	dbs := store.NewDBSet(1, 2, counters)
	s := expire.New(nil, dbs, counters, 5*time.Millisecond, 5, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func Test_New_FallsBackToDefaultsOnInvalidArguments(t *testing.T) {
	t.Parallel()

	dbs := store.NewDBSet(1, 2, nil)
	s := expire.New(nil, dbs, nil, 0, 0, 0)
	require.NotNil(t, s)
}

package txn_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/txn"
)

func Test_TxState_Multi_EntersQueueingMode(t *testing.T) {
	t.Parallel()

	var tx txn.TxState
	tx.Multi()
	require.Equal(t, txn.InMulti, tx.State)
	require.False(t, tx.Dirty)
	require.Empty(t, tx.Queue)
}

func Test_TxState_Enqueue_MarksDirtyOnParseError(t *testing.T) {
	t.Parallel()

	var tx txn.TxState
	tx.Multi()
	tx.Enqueue("GET", [][]byte{[]byte("k")}, nil)
	require.False(t, tx.Dirty)

	tx.Enqueue("BOGUS", nil, errors.New("bad arity"))
	require.True(t, tx.Dirty)
	require.Len(t, tx.Queue, 2)
}

func Test_TxState_Reset_ClearsQueueAndDirtyFlag(t *testing.T) {
	t.Parallel()

	var tx txn.TxState
	tx.Multi()
	tx.Enqueue("SET", nil, errors.New("bad"))
	tx.Reset()

	require.Equal(t, txn.Normal, tx.State)
	require.False(t, tx.Dirty)
	require.Empty(t, tx.Queue)
}

func Test_WatchSet_WatchThenObserved(t *testing.T) {
	t.Parallel()

	ws := txn.NewWatchSet()
	ws.Watch(0, "k", 7)

	v, ok := ws.Observed(0, "k")
	require.True(t, ok)
	require.Equal(t, uint64(7), v)

	_, ok = ws.Observed(0, "other")
	require.False(t, ok)
}

func Test_WatchSet_RewatchRefreshesVersion(t *testing.T) {
	t.Parallel()

	ws := txn.NewWatchSet()
	ws.Watch(0, "k", 1)
	ws.Watch(0, "k", 2)

	v, ok := ws.Observed(0, "k")
	require.True(t, ok)
	require.Equal(t, uint64(2), v)
}

func Test_WatchSet_ClearEmptiesEverything(t *testing.T) {
	t.Parallel()

	ws := txn.NewWatchSet()
	ws.Watch(0, "a", 1)
	ws.Watch(1, "b", 2)
	require.False(t, ws.Empty())

	ws.Clear()
	require.True(t, ws.Empty())
	require.Empty(t, ws.Keys())
}

func Test_Coordinator_RunSharedAllowsConcurrency(t *testing.T) {
	t.Parallel()

	c := txn.NewCoordinator()
	var inFlight int32
	var maxObserved int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RunShared(func() {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					cur := atomic.LoadInt32(&maxObserved)
					if n <= cur || atomic.CompareAndSwapInt32(&maxObserved, cur, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
			})
		}()
	}
	wg.Wait()

	require.Greater(t, maxObserved, int32(1), "shared commands should overlap")
}

func Test_Coordinator_RunExclusiveBlocksSharedRunners(t *testing.T) {
	t.Parallel()

	c := txn.NewCoordinator()
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.RunExclusive(func() {
			record("exclusive-start")
			close(started)
			time.Sleep(10 * time.Millisecond)
			record("exclusive-end")
		})
	}()

	<-started
	c.RunShared(func() { record("shared") })
	wg.Wait()

	require.Equal(t, []string{"exclusive-start", "exclusive-end", "shared"}, order)
}

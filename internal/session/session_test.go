package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/session"
)

func Test_New_AuthedReflectsWhetherAuthIsRequired(t *testing.T) {
	t.Parallel()

	open := session.New(1, nil, false)
	require.True(t, open.IsAuthed())

	guarded := session.New(2, nil, true)
	require.False(t, guarded.IsAuthed())
}

func Test_New_AssignsDistinctTraceIDs(t *testing.T) {
	t.Parallel()

	a := session.New(1, nil, false)
	b := session.New(2, nil, false)
	require.NotEmpty(t, a.TraceID)
	require.NotEqual(t, a.TraceID, b.TraceID)
}

func Test_IDAllocator_IsMonotonicAndUnique(t *testing.T) {
	t.Parallel()

	alloc := &session.IDAllocator{}
	seen := make(map[int64]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := alloc.Next()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, 100, "every allocated id must be unique")
}

func Test_DBIndex_SetAndGet(t *testing.T) {
	t.Parallel()

	s := session.New(1, nil, false)
	require.Equal(t, 0, s.GetDBIndex())
	s.SetDBIndex(3)
	require.Equal(t, 3, s.GetDBIndex())
}

func Test_SubscriptionTracking_AddRemoveUpdatesCount(t *testing.T) {
	t.Parallel()

	s := session.New(1, nil, false)
	require.False(t, s.InSubscribeMode())

	s.AddChannel("news")
	s.AddPattern("user:*")
	require.ElementsMatch(t, []string{"news"}, s.Channels())
	require.ElementsMatch(t, []string{"user:*"}, s.Patterns())

	s.SetSubCount(2)
	require.True(t, s.InSubscribeMode())

	s.RemoveChannel("news")
	s.RemovePattern("user:*")
	require.Empty(t, s.Channels())
	require.Empty(t, s.Patterns())
}

func Test_Registry_RegisterUnregisterAndList(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry()
	require.Equal(t, 0, reg.Count())

	a := session.New(1, nil, false)
	b := session.New(2, nil, false)
	reg.Register(a)
	reg.Register(b)
	require.Equal(t, 2, reg.Count())

	all := reg.All()
	require.Len(t, all, 2)
	require.Equal(t, int64(1), all[0].ID, "All() is ordered by id")
	require.Equal(t, int64(2), all[1].ID)

	reg.Unregister(a.ID)
	require.Equal(t, 1, reg.Count())
	require.Equal(t, int64(2), reg.All()[0].ID)
}

func Test_Registry_ConcurrentRegisterUnregister_NoRace(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry()
	alloc := &session.IDAllocator{}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := session.New(alloc.Next(), nil, false)
			reg.Register(s)
			reg.All()
			reg.Unregister(s.ID)
		}()
	}
	wg.Wait()
	require.Equal(t, 0, reg.Count())
}

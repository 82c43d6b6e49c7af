package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/hll"
	"github.com/edirooss/rediskv-server/internal/snapshot"
	"github.com/edirooss/rediskv-server/internal/store"
)

func Test_SaveThenLoad_RoundTripsEveryValueType(t *testing.T) {
	t.Parallel()

	dbs := store.NewDBSet(2, 4, nil)
	dbs.Get(0).Set("str", store.StringValue("hello"), 0)

	hv := store.HashValue{"f1": []byte("v1"), "f2": []byte("v2")}
	dbs.Get(0).Set("hash", hv, 0)

	sv := store.SetValue{"a": {}, "b": {}}
	dbs.Get(0).Set("set", sv, 0)

	zv := store.NewZSetValue()
	zv.Z.Add("m1", 1.5)
	zv.Z.Add("m2", 2.5)
	dbs.Get(0).Set("zset", zv, 0)

	lv := store.NewListValue()
	lv.L.PushBack([]byte("e1"))
	lv.L.PushBack([]byte("e2"))
	dbs.Get(0).Set("list", lv, 0)

	h := hll.New()
	h.Add([]byte("x"))
	dbs.Get(0).Set("hll", &store.HLLValue{H: h}, 0)

	dbs.Get(1).Set("other-db", store.StringValue("v"), 0)

	path := filepath.Join(t.TempDir(), "snap.bin")
	saver := snapshot.NewSaver(nil, path, &snapshot.Store{DBs: dbs})
	require.NoError(t, saver.Save())
	require.Positive(t, saver.LastSaveUnix())

	loaded := store.NewDBSet(2, 4, nil)
	require.NoError(t, snapshot.Load(nil, path, loaded))

	e, ok := loaded.Get(0).Get("str")
	require.True(t, ok)
	require.Equal(t, store.StringValue("hello"), e.Value)

	e, ok = loaded.Get(0).Get("hash")
	require.True(t, ok)
	require.Equal(t, hv, e.Value)

	e, ok = loaded.Get(0).Get("set")
	require.True(t, ok)
	require.Equal(t, sv, e.Value)

	e, ok = loaded.Get(0).Get("zset")
	require.True(t, ok)
	gotZ, ok := e.Value.(*store.ZSetValue)
	require.True(t, ok)
	score, exists := gotZ.Z.Score("m1")
	require.True(t, exists)
	require.Equal(t, 1.5, score)

	e, ok = loaded.Get(0).Get("list")
	require.True(t, ok)
	gotL, ok := e.Value.(*store.ListValue)
	require.True(t, ok)
	require.Equal(t, 2, gotL.L.Len())

	e, ok = loaded.Get(0).Get("hll")
	require.True(t, ok)
	gotH, ok := e.Value.(*store.HLLValue)
	require.True(t, ok)
	require.EqualValues(t, 1, gotH.H.Count())

	e, ok = loaded.Get(1).Get("other-db")
	require.True(t, ok)
	require.Equal(t, store.StringValue("v"), e.Value)
}

func Test_SaveThenLoad_PreservesTTL(t *testing.T) {
	t.Parallel()

	dbs := store.NewDBSet(1, 4, nil)
	expiresAt := time.Now().Add(time.Hour).UnixNano()
	dbs.Get(0).Set("k", store.StringValue("v"), expiresAt)

	path := filepath.Join(t.TempDir(), "snap.bin")
	saver := snapshot.NewSaver(nil, path, &snapshot.Store{DBs: dbs})
	require.NoError(t, saver.Save())

	loaded := store.NewDBSet(1, 4, nil)
	require.NoError(t, snapshot.Load(nil, path, loaded))

	e, ok := loaded.Get(0).Get("k")
	require.True(t, ok)
	require.True(t, e.HasTTL())
}

func Test_Load_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	dbs := store.NewDBSet(1, 4, nil)
	path := filepath.Join(t.TempDir(), "does-not-exist.bin")
	require.NoError(t, snapshot.Load(nil, path, dbs))
	require.Equal(t, 0, dbs.Get(0).DBSize())
}

func Test_Load_RejectsBadMagic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a valid snapshot header"), 0o644))

	dbs := store.NewDBSet(1, 4, nil)
	err := snapshot.Load(nil, path, dbs)
	require.Error(t, err)
}

func Test_Save_IsIdempotentUnderConcurrentCalls(t *testing.T) {
	t.Parallel()

	dbs := store.NewDBSet(1, 4, nil)
	dbs.Get(0).Set("k", store.StringValue("v"), 0)
	path := filepath.Join(t.TempDir(), "snap.bin")
	saver := snapshot.NewSaver(nil, path, &snapshot.Store{DBs: dbs})

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() { done <- saver.Save() }()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}

	loaded := store.NewDBSet(1, 4, nil)
	require.NoError(t, snapshot.Load(nil, path, loaded))
	require.True(t, loaded.Get(0).Exists("k"))
}

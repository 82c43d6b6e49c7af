package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/config"
	"github.com/edirooss/rediskv-server/internal/dispatch"
	"github.com/edirooss/rediskv-server/internal/evict"
	"github.com/edirooss/rediskv-server/internal/pubsub"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/slowlog"
	"github.com/edirooss/rediskv-server/internal/snapshot"
	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"github.com/edirooss/rediskv-server/internal/txn"
)

func newDispatcher(t *testing.T, authPassword string) *dispatch.Dispatcher {
	t.Helper()
	counters := stats.New()
	cfg := config.Config{Databases: 16, AuthPassword: authPassword}
	dbs := store.NewDBSet(cfg.Databases, 4, counters)
	coord := txn.NewCoordinator()
	hub := pubsub.NewHub(nil)
	sl := slowlog.New(128, 0)
	ev := evict.New(5, counters)
	saver := snapshot.NewSaver(nil, t.TempDir()+"/snap.bin", &snapshot.Store{DBs: dbs})
	idAlloc := &session.IDAllocator{}
	return dispatch.New(nil, cfg, dbs, coord, hub, counters, sl, ev, saver, idAlloc)
}

func newSession(requireAuth bool) *session.Session {
	return session.New(1, nil, requireAuth)
}

func args(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func Test_Dispatch_UnknownCommandReturnsError(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)
	reply := d.Dispatch(sess, args("FROBNICATE", "x"))

	errReply, ok := reply.(resp.Error)
	require.True(t, ok)
	require.Contains(t, errReply.Err.Error(), "unknown command")
}

func Test_Dispatch_WrongArityReturnsError(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)
	reply := d.Dispatch(sess, args("GET"))

	errReply, ok := reply.(resp.Error)
	require.True(t, ok)
	require.Contains(t, errReply.Err.Error(), "wrong number of arguments")
}

func Test_Dispatch_Ping_RepliesPong(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)
	reply := d.Dispatch(sess, args("PING"))
	require.Equal(t, resp.SimpleString("PONG"), reply)
}

func Test_Dispatch_RequiresAuthWhenPasswordConfigured(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "hunter2")
	sess := newSession(true)

	reply := d.Dispatch(sess, args("GET", "k"))
	errReply, ok := reply.(resp.Error)
	require.True(t, ok)
	require.Contains(t, errReply.Err.Error(), "NOAUTH")

	authReply := d.Dispatch(sess, args("AUTH", "hunter2"))
	require.Equal(t, resp.OK, authReply)

	reply = d.Dispatch(sess, args("GET", "k"))
	require.Equal(t, resp.NilBulk{}, reply)
}

func Test_Dispatch_SetThenGet_RoundTrips(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	setReply := d.Dispatch(sess, args("SET", "k", "v"))
	require.Equal(t, resp.OK, setReply)

	getReply := d.Dispatch(sess, args("GET", "k"))
	require.Equal(t, resp.BulkString("v"), getReply)
}

func Test_Dispatch_Incr_IncrementsStoredInteger(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	require.Equal(t, resp.Integer(1), d.Dispatch(sess, args("INCR", "n")))
	require.Equal(t, resp.Integer(2), d.Dispatch(sess, args("INCR", "n")))
}

func Test_Dispatch_Del_RemovesKeysAndReportsCount(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)
	d.Dispatch(sess, args("SET", "a", "1"))
	d.Dispatch(sess, args("SET", "b", "2"))

	reply := d.Dispatch(sess, args("DEL", "a", "b", "missing"))
	require.Equal(t, resp.Integer(2), reply)
	require.Equal(t, resp.Integer(0), d.Dispatch(sess, args("EXISTS", "a")))
}

func Test_Dispatch_HSetHGet_RoundTrips(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	reply := d.Dispatch(sess, args("HSET", "h", "f1", "v1"))
	require.Equal(t, resp.Integer(1), reply)

	getReply := d.Dispatch(sess, args("HGET", "h", "f1"))
	require.Equal(t, resp.BulkString("v1"), getReply)
}

func Test_Dispatch_SAdd_ReportsNewMembers(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	reply := d.Dispatch(sess, args("SADD", "s", "a", "b", "a"))
	require.Equal(t, resp.Integer(2), reply)
}

func Test_Dispatch_ZAdd_ReportsNewMembers(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	reply := d.Dispatch(sess, args("ZADD", "z", "1", "a", "2", "b"))
	require.Equal(t, resp.Integer(2), reply)
}

func Test_Dispatch_Expire_SetsPositiveTTL(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)
	d.Dispatch(sess, args("SET", "k", "v"))

	reply := d.Dispatch(sess, args("EXPIRE", "k", "100"))
	require.Equal(t, resp.Integer(1), reply)

	ttl := d.Dispatch(sess, args("TTL", "k"))
	ttlInt, ok := ttl.(resp.Integer)
	require.True(t, ok)
	require.Greater(t, int64(ttlInt), int64(0))
}

func Test_Dispatch_Multi_QueuesCommandsUntilExec(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	require.Equal(t, resp.OK, d.Dispatch(sess, args("MULTI")))

	queued := d.Dispatch(sess, args("SET", "k", "v"))
	require.Equal(t, resp.SimpleString("QUEUED"), queued)

	execReply := d.Dispatch(sess, args("EXEC"))
	arr, ok := execReply.(resp.Array)
	require.True(t, ok)
	require.Len(t, arr, 1)
	require.Equal(t, resp.OK, arr[0])

	require.Equal(t, resp.BulkString("v"), d.Dispatch(sess, args("GET", "k")))
}

func Test_Dispatch_Discard_DropsQueuedCommands(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	d.Dispatch(sess, args("MULTI"))
	d.Dispatch(sess, args("SET", "k", "v"))

	reply := d.Dispatch(sess, args("DISCARD"))
	require.Equal(t, resp.OK, reply)

	require.Equal(t, resp.NilBulk{}, d.Dispatch(sess, args("GET", "k")))
}

func Test_Dispatch_SubscribeMode_RejectsOrdinaryCommands(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "")
	sess := newSession(false)

	d.Dispatch(sess, args("SUBSCRIBE", "chan"))
	require.True(t, sess.InSubscribeMode())

	reply := d.Dispatch(sess, args("GET", "k"))
	errReply, ok := reply.(resp.Error)
	require.True(t, ok)
	require.Contains(t, errReply.Err.Error(), "only (P|S)SUBSCRIBE")
}

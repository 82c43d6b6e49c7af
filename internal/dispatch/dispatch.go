// Package dispatch is the command execution layer (spec.md §4.2): name
// resolution, arity checking, the auth/subscription/transaction gates,
// and the per-command handler table. Grounded on the teacher's
// internal/http router+middleware chain (internal/http/middleware/
// request_id.go, concurrent_requests.go) — a fixed ordered chain of
// gates wrapping a resolved handler — generalized from HTTP middleware
// to the RESP command pipeline.
package dispatch

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/edirooss/rediskv-server/internal/config"
	"github.com/edirooss/rediskv-server/internal/evict"
	"github.com/edirooss/rediskv-server/internal/pubsub"
	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/slowlog"
	"github.com/edirooss/rediskv-server/internal/snapshot"
	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"github.com/edirooss/rediskv-server/internal/txn"
	"go.uber.org/zap"
)

// Handler executes one command's semantics.
type Handler func(d *Dispatcher, sess *session.Session, args [][]byte) resp.Reply

// Spec describes one command's shape for arity checking and gating.
type Spec struct {
	Name    string
	MinArgs int  // total argv length including the command name
	MaxArgs int  // -1 means unbounded
	NoAuth  bool // allowed before AUTH when a password is configured
	InSub   bool // allowed while the session is in subscribe mode
	Handler Handler

	// SkipCoordWrap excludes this command from the default "take the
	// Coordinator's shared lock for the handler's whole duration" wrap
	// (spec.md §4.5). EXEC manages the exclusive side itself; the
	// blocking list commands poll in a loop and must only hold the
	// shared lock around each individual attempt, not across the sleep.
	SkipCoordWrap bool
}

// Dispatcher owns every shared subsystem a command handler may touch.
type Dispatcher struct {
	Log      *zap.Logger
	Cfg      config.Config
	DBs      *store.DBSet
	Coord    *txn.Coordinator
	Hub      *pubsub.Hub
	Counters *stats.Counters
	SlowLog  *slowlog.Log
	Evictor  *evict.Policy
	Saver    *snapshot.Saver
	IDAlloc  *session.IDAllocator
	Sessions *session.Registry
	StartUnix int64

	registry *Registry
}

func New(log *zap.Logger, cfg config.Config, dbs *store.DBSet, coord *txn.Coordinator, hub *pubsub.Hub, counters *stats.Counters, sl *slowlog.Log, ev *evict.Policy, saver *snapshot.Saver, idAlloc *session.IDAllocator) *Dispatcher {
	d := &Dispatcher{
		Log: log, Cfg: cfg, DBs: dbs, Coord: coord, Hub: hub,
		Counters: counters, SlowLog: sl, Evictor: ev, Saver: saver,
		IDAlloc: idAlloc, Sessions: session.NewRegistry(), StartUnix: time.Now().Unix(),
	}
	d.registry = buildRegistry()
	return d
}

// Dispatch resolves, gates, and runs one command line (argv[0] is the
// command name). It is the single entry point the connection's read
// loop calls for every parsed request.
func (d *Dispatcher) Dispatch(sess *session.Session, argv [][]byte) resp.Reply {
	if len(argv) == 0 {
		return resp.Err(rerr.Generic("empty command"))
	}
	name := strings.ToUpper(string(argv[0]))
	full := name
	// Container commands (CONFIG GET, CLIENT ID, SLOWLOG GET, PUBSUB
	// CHANNELS, OBJECT ENCODING …) key their spec on "CMD SUBCMD".
	if sc, ok := d.registry.subcommandOf[name]; ok && len(argv) >= 2 {
		sub := strings.ToUpper(string(argv[1]))
		if _, ok := sc[sub]; ok {
			full = name + " " + sub
		}
	}

	spec, ok := d.registry.byName[full]
	if !ok {
		spec, ok = d.registry.byName[name]
	}
	// Inside MULTI, a command rejected here (unknown name, wrong arity) is
	// queued with its error, which marks the transaction dirty so that
	// EXEC answers EXECABORT.
	reject := func(e *rerr.Error) resp.Reply {
		if sess.Tx.State == txn.InMulti {
			sess.Tx.Enqueue(full, argv[1:], e)
		}
		return resp.Err(e)
	}
	if !ok {
		return reject(rerr.UnknownCommandErr(name))
	}
	if spec.MinArgs > 0 && len(argv) < spec.MinArgs {
		return reject(rerr.WrongArityErr(strings.ToLower(name)))
	}
	if spec.MaxArgs >= 0 && len(argv) > spec.MaxArgs {
		return reject(rerr.WrongArityErr(strings.ToLower(name)))
	}

	// Gate (a): auth.
	if d.Cfg.AuthPassword != "" && !sess.IsAuthed() && !spec.NoAuth {
		return resp.Err(rerr.NoAuthErr())
	}
	// Gate (b): subscription mode.
	if sess.InSubscribeMode() && !spec.InSub {
		return resp.Err(rerr.New(rerr.ERR, "Can't execute '"+strings.ToLower(name)+"': only (P|S)SUBSCRIBE / (P|S)UNSUBSCRIBE / PING / QUIT / RESET are allowed in this context"))
	}
	// Gate (c): transaction queueing. MULTI/EXEC/DISCARD/WATCH/UNWATCH/
	// RESET/QUIT bypass the queue and are handled by their own handlers;
	// a subscription command drops the open MULTI and then runs;
	// everything else queues while a MULTI is open.
	if sess.Tx.State == txn.InMulti && !isTxControlCommand(full) {
		switch full {
		case "SUBSCRIBE", "PSUBSCRIBE", "SSUBSCRIBE", "UNSUBSCRIBE", "PUNSUBSCRIBE", "SUNSUBSCRIBE":
			sess.Tx.Reset()
		default:
			sess.Tx.Enqueue(full, argv[1:], nil)
			return resp.SimpleString("QUEUED")
		}
	}

	start := time.Now()
	var reply resp.Reply
	if spec.SkipCoordWrap {
		reply = spec.Handler(d, sess, argv)
	} else {
		d.Coord.RunShared(func() { reply = spec.Handler(d, sess, argv) })
	}
	d.Counters.IncrCommandsProcessed()
	d.SlowLog.MaybeRecord(time.Now().Unix(), time.Since(start).Microseconds(), argvStrings(argv))
	return reply
}

func isTxControlCommand(name string) bool {
	switch name {
	case "MULTI", "EXEC", "DISCARD", "WATCH", "UNWATCH", "RESET", "QUIT":
		return true
	}
	return false
}

func argvStrings(argv [][]byte) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = string(a)
	}
	return out
}

// Registry is the resolved command table.
type Registry struct {
	byName       map[string]Spec
	subcommandOf map[string]map[string]struct{}
}

func buildRegistry() *Registry {
	r := &Registry{byName: make(map[string]Spec), subcommandOf: make(map[string]map[string]struct{})}
	for _, s := range allSpecs() {
		r.byName[s.Name] = s
		if parts := strings.SplitN(s.Name, " ", 2); len(parts) == 2 {
			m, ok := r.subcommandOf[parts[0]]
			if !ok {
				m = make(map[string]struct{})
				r.subcommandOf[parts[0]] = m
			}
			m[parts[1]] = struct{}{}
		}
	}
	return r
}

// keyspaceFor returns the session's currently-selected database.
func keyspaceFor(d *Dispatcher, sess *session.Session) *store.Keyspace {
	return d.DBs.Get(sess.GetDBIndex())
}

// parseInt parses a RESP bulk argument as a base-10 signed integer,
// returning the spec's exact error phrasing on failure.
func parseInt(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, rerr.NotIntegerErr()
	}
	return n, nil
}

func parseFloat(b []byte) (float64, error) {
	s := string(b)
	switch strings.ToLower(s) {
	case "+inf", "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, rerr.NotFloatErr()
	}
	return f, nil
}

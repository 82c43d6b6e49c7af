package dispatch

import (
	"strings"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/txn"
)

func cmdMulti(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if sess.Tx.State == txn.InMulti {
		return resp.Err(rerr.Generic("MULTI calls can not be nested"))
	}
	sess.Tx.Multi()
	return resp.OK
}

func cmdDiscard(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if sess.Tx.State != txn.InMulti {
		return resp.Err(rerr.Generic("DISCARD without MULTI"))
	}
	sess.Tx.Reset()
	sess.Watches.Clear()
	return resp.OK
}

func cmdWatch(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if sess.Tx.State == txn.InMulti {
		return resp.Err(rerr.Generic("WATCH inside MULTI is not allowed"))
	}
	ks := keyspaceFor(d, sess)
	db := sess.GetDBIndex()
	for _, k := range argv[1:] {
		key := string(k)
		var version uint64
		if e, ok := ks.Peek(key); ok {
			version = e.Version
		}
		sess.Watches.Watch(db, key, version)
	}
	return resp.OK
}

func cmdUnwatch(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	sess.Watches.Clear()
	return resp.OK
}

// cmdExec runs the whole queued command sequence under the Coordinator's
// exclusive lock (spec.md §4.5): no other connection's command can
// interleave. Dirty WATCHes are re-checked first, under the same
// exclusive section, so nothing can sneak in between the check and the
// queued commands actually running.
func cmdExec(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if sess.Tx.State != txn.InMulti {
		return resp.Err(rerr.Generic("EXEC without MULTI"))
	}
	tx := sess.Tx
	sess.Tx.Reset()

	if tx.Dirty {
		sess.Watches.Clear()
		return resp.Err(rerr.ExecAbortErr())
	}

	var results resp.Array
	d.Coord.RunExclusive(func() {
		db := sess.GetDBIndex()
		ks := d.DBs.Get(db)
		for _, wk := range sess.Watches.Keys() {
			if wk.DB != db {
				continue
			}
			observed, _ := sess.Watches.Observed(wk.DB, wk.Key)
			var current uint64
			if e, ok := ks.Peek(wk.Key); ok {
				current = e.Version
			}
			if current != observed {
				results = nil
				return
			}
		}
		results = make(resp.Array, 0, len(tx.Queue))
		for _, qc := range tx.Queue {
			full := strings.ToUpper(qc.Name)
			spec, ok := d.registry.byName[full]
			if !ok {
				results = append(results, resp.Err(rerr.UnknownCommandErr(qc.Name)))
				continue
			}
			fullArgv := append([][]byte{[]byte(qc.Name)}, qc.Args...)
			results = append(results, spec.Handler(d, sess, fullArgv))
		}
	})
	sess.Watches.Clear()
	if results == nil {
		return resp.NilArray{}
	}
	return results
}

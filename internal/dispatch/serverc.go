package dispatch

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
)

func processID() int { return os.Getpid() }

func cmdDBSize(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.Int(int64(keyspaceFor(d, sess).DBSize()))
}

func cmdFlushDB(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	keyspaceFor(d, sess).FlushAll()
	return resp.OK
}

func cmdFlushAll(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	for _, ks := range d.DBs.All() {
		ks.FlushAll()
	}
	return resp.OK
}

func cmdSave(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if d.Saver == nil {
		return resp.Err(rerr.Generic("persistence is not configured"))
	}
	if err := d.Saver.Save(); err != nil {
		return resp.Err(rerr.Generic("%s", err.Error()))
	}
	return resp.OK
}

func cmdBGSave(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if d.Saver == nil {
		return resp.Err(rerr.Generic("persistence is not configured"))
	}
	go func() {
		if err := d.Saver.Save(); err != nil {
			d.Log.Sugar().Warnw("background save failed", "error", err)
		}
	}()
	return resp.SimpleString("Background saving started")
}

func cmdLastSave(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if d.Saver == nil {
		return resp.Int(0)
	}
	return resp.Int(d.Saver.LastSaveUnix())
}

func cmdSlowLogGet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n := -1
	if len(argv) >= 3 {
		v, err := parseInt(argv[2])
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		n = int(v)
	}
	entries := d.SlowLog.Get(n)
	out := make(resp.Array, len(entries))
	for i, e := range entries {
		out[i] = resp.Array{
			resp.Int(e.ID),
			resp.Int(e.TimestampUnix),
			resp.Int(e.DurationMicros),
			resp.StrArray(e.Args),
		}
	}
	return out
}

func cmdSlowLogLen(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return resp.Int(int64(d.SlowLog.Len()))
}

func cmdSlowLogReset(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	d.SlowLog.Reset()
	return resp.OK
}

// cmdConfigGet reports a fixed set of parameters (maxmemory,
// maxvalue-bytes, slowlog-log-slower-than, slowlog-max-len, databases,
// requirepass) filtered by the glob pattern. cmdConfigSet changes only
// maxmemory, maxvalue-bytes, slowlog-log-slower-than and requirepass;
// everything else in config.Config is fixed at process start.
func cmdConfigGet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	pattern := strings.ToLower(string(argv[2]))
	var out resp.Array
	add := func(name, value string) {
		if globMatchOrFalse(pattern, name) {
			out = append(out, resp.BulkStr(name), resp.BulkStr(value))
		}
	}
	add("maxmemory", strconv.FormatInt(d.Cfg.MaxMemoryBytes, 10))
	add("maxvalue-bytes", strconv.FormatInt(d.Cfg.MaxValueBytes, 10))
	add("slowlog-log-slower-than", strconv.FormatInt(d.Cfg.SlowLogSlowerThanUS, 10))
	add("slowlog-max-len", strconv.Itoa(d.Cfg.SlowLogMaxLen))
	add("databases", strconv.Itoa(d.Cfg.Databases))
	add("requirepass", d.Cfg.AuthPassword)
	return out
}

func cmdConfigSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if (len(argv)-2)%2 != 0 {
		return resp.Err(rerr.SyntaxErr())
	}
	for i := 2; i < len(argv); i += 2 {
		name := strings.ToLower(string(argv[i]))
		val := string(argv[i+1])
		switch name {
		case "maxmemory":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 0 {
				return resp.Err(rerr.Generic("Invalid argument for CONFIG SET 'maxmemory'"))
			}
			d.Cfg.MaxMemoryBytes = n
		case "maxvalue-bytes":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 0 {
				return resp.Err(rerr.Generic("Invalid argument for CONFIG SET 'maxvalue-bytes'"))
			}
			d.Cfg.MaxValueBytes = n
		case "slowlog-log-slower-than":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return resp.Err(rerr.Generic("Invalid argument for CONFIG SET 'slowlog-log-slower-than'"))
			}
			d.SlowLog.SetThreshold(n)
			d.Cfg.SlowLogSlowerThanUS = n
		case "requirepass":
			d.Cfg.AuthPassword = val
		default:
			return resp.Err(rerr.Generic("Unknown or read-only CONFIG parameter '%s'", name))
		}
	}
	return resp.OK
}

func cmdInfo(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	snap := d.Counters.Snapshot()
	uptime := time.Now().Unix() - d.StartUnix
	var b strings.Builder
	fmt.Fprintf(&b, "# Server\r\nrediskv_version:1.0.0\r\nuptime_in_seconds:%d\r\nprocess_id:%d\r\n\r\n", uptime, processID())
	fmt.Fprintf(&b, "# Clients\r\nconnected_clients:%d\r\n\r\n", d.Sessions.Count())
	fmt.Fprintf(&b, "# Memory\r\nused_memory:%d\r\nmaxmemory:%d\r\n\r\n", totalEstimatedBytes(d), d.Cfg.MaxMemoryBytes)
	fmt.Fprintf(&b, "# Persistence\r\nrdb_last_save_time:%d\r\n\r\n", lastSaveOf(d))
	fmt.Fprintf(&b, "# Stats\r\ntotal_commands_processed:%d\r\nkeyspace_hits:%d\r\nkeyspace_misses:%d\r\nexpired_keys:%d\r\nevicted_keys:%d\r\n\r\n",
		snap.CommandsProcessed, snap.KeyspaceHits, snap.KeyspaceMisses, snap.ExpiredKeys, snap.EvictedKeys)
	b.WriteString("# Keyspace\r\n")
	for i, ks := range d.DBs.All() {
		n := ks.DBSize()
		if n > 0 {
			fmt.Fprintf(&b, "db%d:keys=%d\r\n", i, n)
		}
	}
	return resp.BulkStr(b.String())
}

func lastSaveOf(d *Dispatcher) int64 {
	if d.Saver == nil {
		return 0
	}
	return d.Saver.LastSaveUnix()
}

func totalEstimatedBytes(d *Dispatcher) int64 {
	var total int64
	for _, ks := range d.DBs.All() {
		total += ks.EstimatedBytes()
	}
	return total
}

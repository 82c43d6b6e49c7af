package dispatch

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/edirooss/rediskv-server/internal/glob"
	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
)

func cmdDel(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	n := int64(0)
	for _, k := range argv[1:] {
		if ks.Delete(string(k)) {
			n++
		}
	}
	return resp.Int(n)
}

func cmdExists(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	n := int64(0)
	for _, k := range argv[1:] {
		if ks.Exists(string(k)) {
			n++
		}
	}
	return resp.Int(n)
}

func cmdType(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.SimpleString("none")
	}
	return resp.SimpleString(e.Value.Type().String())
}

func cmdObjectEncoding(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[2]))
	if !ok {
		return resp.Err(rerr.Generic("no such key"))
	}
	switch v := e.Value.(type) {
	case store.StringValue:
		if _, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return resp.BulkStr("int")
		}
		if len(v) <= 44 {
			return resp.BulkStr("embstr")
		}
		return resp.BulkStr("raw")
	case *store.ListValue:
		return resp.BulkStr("listpack")
	case store.HashValue:
		return resp.BulkStr("listpack")
	case store.SetValue:
		return resp.BulkStr("listpack")
	case *store.ZSetValue:
		return resp.BulkStr("skiplist")
	case *store.HLLValue:
		if v.H.IsSparse() {
			return resp.BulkStr("sparse")
		}
		return resp.BulkStr("dense")
	default:
		return resp.BulkStr("raw")
	}
}

func cmdKeys(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	pattern := string(argv[1])
	var out resp.Array
	for _, k := range ks.IterSnapshot() {
		if glob.Match(pattern, k) {
			out = append(out, resp.BulkStr(k))
		}
	}
	if out == nil {
		out = resp.Array{}
	}
	return out
}

// keyHash is the ordering key SCAN's cursor walks (spec.md §4.2): a
// hash-ordered traversal where the cursor is the hash of the last key
// the previous call examined (emitted or filtered out).
func keyHash(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

func cmdScan(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	cursor, err := strconv.ParseUint(string(argv[1]), 10, 64)
	if err != nil {
		return resp.Err(rerr.Generic("invalid cursor"))
	}
	count := 10
	var pattern string
	var typeFilter string
	for i := 2; i < len(argv); i++ {
		tok := strings.ToUpper(string(argv[i]))
		switch tok {
		case "COUNT":
			i++
			if i >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			n, perr := strconv.Atoi(string(argv[i]))
			if perr != nil || n <= 0 {
				return resp.Err(rerr.SyntaxErr())
			}
			count = n
		case "MATCH":
			i++
			if i >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			pattern = string(argv[i])
		case "TYPE":
			i++
			if i >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			typeFilter = string(argv[i])
		default:
			return resp.Err(rerr.SyntaxErr())
		}
	}

	ks := keyspaceFor(d, sess)
	keys := ks.IterSnapshot()
	type hk struct {
		key string
		h   uint64
	}
	hashed := make([]hk, 0, len(keys))
	for _, k := range keys {
		hashed = append(hashed, hk{k, keyHash(k)})
	}
	sort.Slice(hashed, func(i, j int) bool {
		if hashed[i].h != hashed[j].h {
			return hashed[i].h < hashed[j].h
		}
		return hashed[i].key < hashed[j].key
	})

	start := sort.Search(len(hashed), func(i int) bool { return hashed[i].h > cursor })
	end := start
	emitted := 0
	var out resp.Array
	for ; end < len(hashed) && emitted < count; end++ {
		k := hashed[end].key
		if pattern != "" && !glob.Match(pattern, k) {
			continue
		}
		if typeFilter != "" {
			if e, ok := ks.Peek(k); !ok || e.Value.Type().String() != typeFilter {
				continue
			}
		}
		out = append(out, resp.BulkStr(k))
		emitted++
	}
	nextCursor := uint64(0)
	if end < len(hashed) {
		nextCursor = hashed[end-1].h
	}
	if out == nil {
		out = resp.Array{}
	}
	return resp.Array{resp.BulkStr(strconv.FormatUint(nextCursor, 10)), out}
}

func cmdRename(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	if !ks.Rename(string(argv[1]), string(argv[2])) {
		return resp.Err(rerr.Generic("no such key"))
	}
	return resp.OK
}

func cmdRenameNX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	if ks.Exists(string(argv[2])) {
		return resp.Int(0)
	}
	if !ks.Rename(string(argv[1]), string(argv[2])) {
		return resp.Err(rerr.Generic("no such key"))
	}
	return resp.Int(1)
}

func expireCommon(d *Dispatcher, sess *session.Session, argv [][]byte, unit time.Duration, absolute bool) resp.Reply {
	n, err := parseInt(argv[2])
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	e, ok := ks.Peek(key)
	if !ok {
		return resp.Int(0)
	}

	var expiresAt int64
	if absolute {
		expiresAt = n * int64(unit)
	} else {
		expiresAt = time.Now().Add(time.Duration(n) * unit).UnixNano()
	}

	// NX/XX/GT/LT option parsing (argv[3] optional), mirroring Redis 7.
	for i := 3; i < len(argv); i++ {
		switch strings.ToUpper(string(argv[i])) {
		case "NX":
			if e.HasTTL() {
				return resp.Int(0)
			}
		case "XX":
			if !e.HasTTL() {
				return resp.Int(0)
			}
		case "GT":
			if !e.HasTTL() || expiresAt <= e.ExpiresAt {
				return resp.Int(0)
			}
		case "LT":
			if e.HasTTL() && expiresAt >= e.ExpiresAt {
				return resp.Int(0)
			}
		default:
			return resp.Err(rerr.SyntaxErr())
		}
	}

	if expiresAt <= time.Now().UnixNano() {
		ks.Delete(key)
		return resp.Int(1)
	}
	ks.Set(key, e.Value, expiresAt)
	return resp.Int(1)
}

func cmdExpire(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return expireCommon(d, sess, argv, time.Second, false)
}
func cmdPExpire(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return expireCommon(d, sess, argv, time.Millisecond, false)
}
func cmdExpireAt(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return expireCommon(d, sess, argv, time.Second, true)
}
func cmdPExpireAt(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return expireCommon(d, sess, argv, time.Millisecond, true)
}

func ttlCommon(d *Dispatcher, sess *session.Session, argv [][]byte, unit time.Duration) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(-2)
	}
	if !e.HasTTL() {
		return resp.Int(-1)
	}
	remaining := time.Duration(e.ExpiresAt - time.Now().UnixNano())
	if remaining < 0 {
		remaining = 0
	}
	return resp.Int(int64(remaining / unit))
}

func cmdTTL(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return ttlCommon(d, sess, argv, time.Second)
}
func cmdPTTL(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return ttlCommon(d, sess, argv, time.Millisecond)
}

func cmdPersist(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	e, ok := ks.Peek(key)
	if !ok || !e.HasTTL() {
		return resp.Int(0)
	}
	ks.Set(key, e.Value, 0)
	return resp.Int(1)
}

func cmdCopy(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	replace := false
	for i := 3; i < len(argv); i++ {
		if strings.ToUpper(string(argv[i])) == "REPLACE" {
			replace = true
		}
	}
	ks := keyspaceFor(d, sess)
	src, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(0)
	}
	dst := string(argv[2])
	if !replace && ks.Exists(dst) {
		return resp.Int(0)
	}
	ks.Set(dst, src.Value, src.ExpiresAt)
	return resp.Int(1)
}

func cmdUnlink(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply { return cmdDel(d, sess, argv) }

func cmdTouch(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	n := int64(0)
	for _, k := range argv[1:] {
		if _, ok := ks.Get(string(k)); ok {
			n++
		}
	}
	return resp.Int(n)
}

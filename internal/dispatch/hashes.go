package dispatch

import (
	"strconv"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
)

func hsetCommon(d *Dispatcher, sess *session.Session, key string, pairs [][]byte, nxOnly bool) resp.Reply {
	if len(pairs)%2 != 0 {
		return resp.Err(rerr.WrongArityErr("hset"))
	}
	ks := keyspaceFor(d, sess)
	var added int64
	var opErr error
	var skippedExisting bool
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var hv store.HashValue
		var expiresAt int64
		if exists {
			v, terr := asHash(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			hv = v
			expiresAt = e.ExpiresAt
		} else {
			hv = make(store.HashValue)
		}
		for i := 0; i < len(pairs); i += 2 {
			field := string(pairs[i])
			if _, has := hv[field]; has {
				if nxOnly {
					skippedExisting = true
					continue
				}
			} else {
				added++
			}
			hv[field] = append([]byte(nil), pairs[i+1]...)
		}
		return &store.Entry{Value: hv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if nxOnly {
		if added > 0 && !skippedExisting {
			return resp.Int(1)
		}
		if added == 0 {
			return resp.Int(0)
		}
	}
	return resp.Int(added)
}

func cmdHSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return hsetCommon(d, sess, string(argv[1]), argv[2:], false)
}
func cmdHMSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	r := hsetCommon(d, sess, string(argv[1]), argv[2:], false)
	if _, isErr := r.(resp.Error); isErr {
		return r
	}
	return resp.OK
}
func cmdHSetNX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return hsetCommon(d, sess, string(argv[1]), argv[2:4], true)
}

func cmdHGet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Get(string(argv[1]))
	if !ok {
		return resp.NilBulk{}
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	v, ok := hv[string(argv[2])]
	if !ok {
		return resp.NilBulk{}
	}
	return resp.Bulk(v)
}

func cmdHMGet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Get(string(argv[1]))
	var hv store.HashValue
	if ok {
		v, err := asHash(e)
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		hv = v
	}
	out := make(resp.Array, len(argv)-2)
	for i, f := range argv[2:] {
		if v, has := hv[string(f)]; has {
			out[i] = resp.Bulk(v)
		} else {
			out[i] = resp.NilBulk{}
		}
	}
	return out
}

func cmdHDel(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var removed int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		hv, terr := asHash(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		for _, f := range argv[2:] {
			if _, has := hv[string(f)]; has {
				delete(hv, string(f))
				removed++
			}
		}
		if len(hv) == 0 {
			return nil, true
		}
		if removed == 0 {
			return e, false
		}
		return &store.Entry{Value: hv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(removed)
}

func cmdHExists(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(0)
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if _, has := hv[string(argv[2])]; has {
		return resp.Int(1)
	}
	return resp.Int(0)
}

func cmdHGetAll(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Array{}
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := make(resp.Array, 0, len(hv)*2)
	for f, v := range hv {
		out = append(out, resp.BulkStr(f), resp.Bulk(v))
	}
	return out
}

func cmdHKeys(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Array{}
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := make(resp.Array, 0, len(hv))
	for f := range hv {
		out = append(out, resp.BulkStr(f))
	}
	return out
}

func cmdHVals(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Array{}
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := make(resp.Array, 0, len(hv))
	for _, v := range hv {
		out = append(out, resp.Bulk(v))
	}
	return out
}

func cmdHLen(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(0)
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return resp.Int(int64(len(hv)))
}

func cmdHStrlen(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(0)
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return resp.Int(int64(len(hv[string(argv[2])])))
}

func cmdHIncrBy(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	delta, derr := parseInt(argv[3])
	if derr != nil {
		return resp.Err(derr.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	field := string(argv[2])
	var result int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var hv store.HashValue
		var expiresAt int64
		if exists {
			v, terr := asHash(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			hv = v
			expiresAt = e.ExpiresAt
		} else {
			hv = make(store.HashValue)
		}
		var cur int64
		if raw, has := hv[field]; has {
			n, perr := strconv.ParseInt(string(raw), 10, 64)
			if perr != nil {
				opErr = rerr.Generic("hash value is not an integer")
				return e, false
			}
			cur = n
		}
		next := cur + delta
		if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
			opErr = rerr.Generic("increment or decrement would overflow")
			return e, false
		}
		result = next
		hv[field] = []byte(strconv.FormatInt(next, 10))
		return &store.Entry{Value: hv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(result)
}

func cmdHIncrByFloat(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	delta, derr := parseFloat(argv[3])
	if derr != nil {
		return resp.Err(rerr.Generic("value is not a valid float"))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	field := string(argv[2])
	var result string
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var hv store.HashValue
		var expiresAt int64
		if exists {
			v, terr := asHash(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			hv = v
			expiresAt = e.ExpiresAt
		} else {
			hv = make(store.HashValue)
		}
		var cur float64
		if raw, has := hv[field]; has {
			f, perr := strconv.ParseFloat(string(raw), 64)
			if perr != nil {
				opErr = rerr.Generic("hash value is not a float")
				return e, false
			}
			cur = f
		}
		next := cur + delta
		if isNaNOrInf(next) {
			opErr = rerr.Generic("increment would produce NaN or Infinity")
			return e, false
		}
		result = formatFloat(next)
		hv[field] = []byte(result)
		return &store.Entry{Value: hv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.BulkStr(result)
}

func cmdHScan(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Array{resp.BulkStr("0"), resp.Array{}}
	}
	hv, err := asHash(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	pattern, novalues := scanModifiers(argv[3:])
	out := make(resp.Array, 0, len(hv)*2)
	for f, v := range hv {
		if pattern != "" && !globMatchOrFalse(pattern, f) {
			continue
		}
		out = append(out, resp.BulkStr(f))
		if !novalues {
			out = append(out, resp.Bulk(v))
		}
	}
	return resp.Array{resp.BulkStr("0"), out}
}

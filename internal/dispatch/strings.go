package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
)

func cmdGet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Get(string(argv[1]))
	if !ok {
		d.Counters.IncrKeyspaceMiss()
		return resp.NilBulk{}
	}
	sv, err := asString(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	d.Counters.IncrKeyspaceHit()
	return resp.Bulk(sv)
}

type setOpts struct {
	nx, xx, keepTTL, getFlag bool
	hasExpiresAt             bool
	expiresAt                int64
}

func parseSetOpts(argv [][]byte) (setOpts, error) {
	var o setOpts
	ttlModes := 0
	for i := 2; i < len(argv); i++ {
		tok := strings.ToUpper(string(argv[i]))
		switch tok {
		case "NX":
			o.nx = true
		case "XX":
			o.xx = true
		case "GET":
			o.getFlag = true
		case "KEEPTTL":
			o.keepTTL = true
			ttlModes++
		case "EX", "PX", "EXAT", "PXAT":
			i++
			if i >= len(argv) {
				return o, rerr.SyntaxErr()
			}
			n, err := parseInt(argv[i])
			if err != nil {
				return o, err
			}
			switch tok {
			case "EX":
				o.expiresAt = time.Now().Add(time.Duration(n) * time.Second).UnixNano()
			case "PX":
				o.expiresAt = time.Now().Add(time.Duration(n) * time.Millisecond).UnixNano()
			case "EXAT":
				o.expiresAt = n * int64(time.Second)
			case "PXAT":
				o.expiresAt = n * int64(time.Millisecond)
			}
			o.hasExpiresAt = true
			ttlModes++
		default:
			return o, rerr.SyntaxErr()
		}
	}
	if o.nx && o.xx {
		return o, rerr.SyntaxErr()
	}
	if ttlModes > 1 {
		return o, rerr.SyntaxErr()
	}
	return o, nil
}

func cmdSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if err := d.checkMaxValue(len(argv[2])); err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	opts, err := parseSetOpts(argv)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])

	var prior resp.Reply = resp.NilBulk{}
	existed := false
	var existingEntry *store.Entry
	if e, ok := ks.Peek(key); ok {
		existed = true
		existingEntry = e
		if sv, terr := asString(e); terr == nil {
			prior = resp.Bulk(sv)
		} else if opts.getFlag {
			return resp.Err(terr.(*rerr.Error))
		}
	}

	if (opts.nx && existed) || (opts.xx && !existed) {
		if opts.getFlag {
			return prior
		}
		return resp.NilBulk{}
	}

	expiresAt := int64(0)
	if opts.keepTTL && existingEntry != nil {
		expiresAt = existingEntry.ExpiresAt
	} else if opts.hasExpiresAt {
		expiresAt = opts.expiresAt
		if expiresAt <= time.Now().UnixNano() {
			ks.Delete(key)
			if opts.getFlag {
				return prior
			}
			return resp.OK
		}
	}

	ks.Set(key, store.StringValue(append([]byte(nil), argv[2]...)), expiresAt)
	if err := d.enforceMemoryBudget(ks); err != nil {
		return resp.Err(rerr.OOMErr())
	}
	if opts.getFlag {
		return prior
	}
	return resp.OK
}

func cmdSetNX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	if ks.Exists(key) {
		return resp.Int(0)
	}
	ks.Set(key, store.StringValue(append([]byte(nil), argv[2]...)), 0)
	return resp.Int(1)
}

func cmdSetEX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n, err := parseInt(argv[2])
	if err != nil || n <= 0 {
		return resp.Err(rerr.Generic("invalid expire time in 'setex' command"))
	}
	ks := keyspaceFor(d, sess)
	ks.Set(string(argv[1]), store.StringValue(append([]byte(nil), argv[3]...)), time.Now().Add(time.Duration(n)*time.Second).UnixNano())
	return resp.OK
}

func cmdPSetEX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n, err := parseInt(argv[2])
	if err != nil || n <= 0 {
		return resp.Err(rerr.Generic("invalid expire time in 'psetex' command"))
	}
	ks := keyspaceFor(d, sess)
	ks.Set(string(argv[1]), store.StringValue(append([]byte(nil), argv[3]...)), time.Now().Add(time.Duration(n)*time.Millisecond).UnixNano())
	return resp.OK
}

func cmdGetDel(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	e, ok := ks.Peek(key)
	if !ok {
		return resp.NilBulk{}
	}
	sv, err := asString(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	ks.Delete(key)
	return resp.Bulk(sv)
}

func cmdGetEx(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	e, ok := ks.Peek(key)
	if !ok {
		return resp.NilBulk{}
	}
	sv, err := asString(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}

	persist := false
	var expiresAt int64 = e.ExpiresAt
	hasTTLMode := false
	for i := 2; i < len(argv); i++ {
		tok := strings.ToUpper(string(argv[i]))
		switch tok {
		case "PERSIST":
			persist = true
		case "EX", "PX", "EXAT", "PXAT":
			i++
			if i >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			n, perr := parseInt(argv[i])
			if perr != nil {
				return resp.Err(perr.(*rerr.Error))
			}
			switch tok {
			case "EX":
				expiresAt = time.Now().Add(time.Duration(n) * time.Second).UnixNano()
			case "PX":
				expiresAt = time.Now().Add(time.Duration(n) * time.Millisecond).UnixNano()
			case "EXAT":
				expiresAt = n * int64(time.Second)
			case "PXAT":
				expiresAt = n * int64(time.Millisecond)
			}
			hasTTLMode = true
		default:
			return resp.Err(rerr.SyntaxErr())
		}
	}
	if persist {
		expiresAt = 0
	}
	if persist || hasTTLMode {
		ks.Set(key, sv, expiresAt)
	}
	return resp.Bulk(sv)
}

func cmdGetSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var prior resp.Reply = resp.NilBulk{}
	if e, ok := ks.Peek(key); ok {
		sv, err := asString(e)
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		prior = resp.Bulk(sv)
	}
	ks.Set(key, store.StringValue(append([]byte(nil), argv[2]...)), 0)
	return prior
}

func cmdGetRange(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Bulk([]byte{})
	}
	sv, err := asString(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	start, err1 := parseInt(argv[2])
	stop, err2 := parseInt(argv[3])
	if err1 != nil || err2 != nil {
		return resp.Err(rerr.NotIntegerErr())
	}
	n := int64(len(sv))
	start, stop = clampRange(start, stop, n)
	if n == 0 || start > stop {
		return resp.Bulk([]byte{})
	}
	return resp.Bulk(sv[start : stop+1])
}

func clampRange(start, stop, n int64) (int64, int64) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	return start, stop
}

func cmdSetRange(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	offset, err := parseInt(argv[2])
	if err != nil || offset < 0 {
		return resp.Err(rerr.Generic("offset is out of range"))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	patch := argv[3]
	if err := d.checkMaxValue(int(offset) + len(patch)); err != nil {
		return resp.Err(err.(*rerr.Error))
	}

	var result store.StringValue
	e, ok := ks.Peek(key)
	if ok {
		sv, terr := asString(e)
		if terr != nil {
			return resp.Err(terr.(*rerr.Error))
		}
		result = append(store.StringValue(nil), sv...)
	}
	needed := int(offset) + len(patch)
	if len(result) < needed {
		grown := make(store.StringValue, needed)
		copy(grown, result)
		result = grown
	}
	copy(result[offset:], patch)
	var expiresAt int64
	if ok {
		expiresAt = e.ExpiresAt
	}
	ks.Set(key, result, expiresAt)
	return resp.Int(int64(len(result)))
}

func cmdAppend(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	e, ok := ks.Peek(key)
	var cur store.StringValue
	var expiresAt int64
	if ok {
		sv, err := asString(e)
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		cur = sv
		expiresAt = e.ExpiresAt
	}
	if err := d.checkMaxValue(len(cur) + len(argv[2])); err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := append(append(store.StringValue(nil), cur...), argv[2]...)
	ks.Set(key, out, expiresAt)
	if err := d.enforceMemoryBudget(ks); err != nil {
		return resp.Err(rerr.OOMErr())
	}
	return resp.Int(int64(len(out)))
}

func cmdStrlen(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(0)
	}
	sv, err := asString(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return resp.Int(int64(len(sv)))
}

func incrBy(d *Dispatcher, sess *session.Session, key string, delta int64) resp.Reply {
	ks := keyspaceFor(d, sess)
	var result int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var cur int64
		var expiresAt int64
		if exists {
			sv, terr := asString(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			n, perr := strconv.ParseInt(string(sv), 10, 64)
			if perr != nil {
				opErr = rerr.NotIntegerErr()
				return e, false
			}
			cur = n
			expiresAt = e.ExpiresAt
		}
		next := cur + delta
		if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
			opErr = rerr.NotIntegerErr()
			return e, false
		}
		result = next
		return &store.Entry{Value: store.StringValue(strconv.FormatInt(next, 10)), ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		if re, ok := opErr.(*rerr.Error); ok {
			return resp.Err(re)
		}
	}
	return resp.Int(result)
}

func cmdIncr(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return incrBy(d, sess, string(argv[1]), 1)
}
func cmdDecr(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return incrBy(d, sess, string(argv[1]), -1)
}
func cmdIncrBy(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n, err := parseInt(argv[2])
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return incrBy(d, sess, string(argv[1]), n)
}
func cmdDecrBy(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	n, err := parseInt(argv[2])
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return incrBy(d, sess, string(argv[1]), -n)
}

func cmdIncrByFloat(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	delta, err := parseFloat(argv[2])
	if err != nil {
		return resp.Err(rerr.Generic("value is not a valid float"))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var result string
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var cur float64
		var expiresAt int64
		if exists {
			sv, terr := asString(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			f, perr := strconv.ParseFloat(string(sv), 64)
			if perr != nil {
				opErr = rerr.Generic("value is not a valid float")
				return e, false
			}
			cur = f
			expiresAt = e.ExpiresAt
		}
		next := cur + delta
		if isNaNOrInf(next) {
			opErr = rerr.Generic("increment would produce NaN or Infinity")
			return e, false
		}
		result = formatFloat(next)
		return &store.Entry{Value: store.StringValue(result), ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		if re, ok := opErr.(*rerr.Error); ok {
			return resp.Err(re)
		}
	}
	return resp.BulkStr(result)
}

func cmdMGet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	out := make(resp.Array, len(argv)-1)
	for i, k := range argv[1:] {
		e, ok := ks.Get(string(k))
		if !ok {
			out[i] = resp.NilBulk{}
			continue
		}
		sv, err := asString(e)
		if err != nil {
			out[i] = resp.NilBulk{}
			continue
		}
		out[i] = resp.Bulk(sv)
	}
	return out
}

func cmdMSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if (len(argv)-1)%2 != 0 {
		return resp.Err(rerr.WrongArityErr("mset"))
	}
	ks := keyspaceFor(d, sess)
	for i := 1; i < len(argv); i += 2 {
		ks.Set(string(argv[i]), store.StringValue(append([]byte(nil), argv[i+1]...)), 0)
	}
	return resp.OK
}

func cmdMSetNX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	if (len(argv)-1)%2 != 0 {
		return resp.Err(rerr.WrongArityErr("msetnx"))
	}
	ks := keyspaceFor(d, sess)
	for i := 1; i < len(argv); i += 2 {
		if ks.Exists(string(argv[i])) {
			return resp.Int(0)
		}
	}
	for i := 1; i < len(argv); i += 2 {
		ks.Set(string(argv[i]), store.StringValue(append([]byte(nil), argv[i+1]...)), 0)
	}
	return resp.Int(1)
}

package dispatch

import (
	"container/list"
	"strconv"
	"strings"
	"time"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
)

func pushCommon(d *Dispatcher, sess *session.Session, key string, values [][]byte, front, requireExisting bool) resp.Reply {
	ks := keyspaceFor(d, sess)
	var length int
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if requireExisting && !exists {
			return e, false
		}
		var lv *store.ListValue
		var expiresAt int64
		if exists {
			v, terr := asList(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			lv = v
			expiresAt = e.ExpiresAt
		} else {
			lv = store.NewListValue()
		}
		for _, val := range values {
			cp := append([]byte(nil), val...)
			if front {
				lv.L.PushFront(cp)
			} else {
				lv.L.PushBack(cp)
			}
		}
		length = lv.L.Len()
		return &store.Entry{Value: lv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if requireExisting && length == 0 {
		return resp.Int(0)
	}
	if err := d.enforceMemoryBudget(ks); err != nil {
		return resp.Err(rerr.OOMErr())
	}
	return resp.Int(int64(length))
}

func cmdLPush(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return pushCommon(d, sess, string(argv[1]), argv[2:], true, false)
}
func cmdRPush(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return pushCommon(d, sess, string(argv[1]), argv[2:], false, false)
}
func cmdLPushX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return pushCommon(d, sess, string(argv[1]), argv[2:], true, true)
}
func cmdRPushX(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return pushCommon(d, sess, string(argv[1]), argv[2:], false, true)
}

func popCommon(d *Dispatcher, sess *session.Session, key string, front bool, count int, hasCount bool) resp.Reply {
	ks := keyspaceFor(d, sess)
	var popped [][]byte
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		lv, terr := asList(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		n := count
		if !hasCount {
			n = 1
		}
		for i := 0; i < n; i++ {
			var el *list.Element
			if front {
				el = lv.L.Front()
			} else {
				el = lv.L.Back()
			}
			if el == nil {
				break
			}
			popped = append(popped, el.Value.([]byte))
			lv.L.Remove(el)
		}
		if lv.L.Len() == 0 {
			return nil, true
		}
		return &store.Entry{Value: lv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if len(popped) == 0 {
		if hasCount {
			return resp.NilArray{}
		}
		return resp.NilBulk{}
	}
	if !hasCount {
		return resp.Bulk(popped[0])
	}
	return resp.BulkArray(popped)
}

func cmdLPop(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	hasCount := len(argv) == 3
	count := 0
	if hasCount {
		n, err := parseInt(argv[2])
		if err != nil || n < 0 {
			return resp.Err(rerr.Generic("value is out of range, must be positive"))
		}
		count = int(n)
	}
	return popCommon(d, sess, string(argv[1]), true, count, hasCount)
}

func cmdRPop(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	hasCount := len(argv) == 3
	count := 0
	if hasCount {
		n, err := parseInt(argv[2])
		if err != nil || n < 0 {
			return resp.Err(rerr.Generic("value is out of range, must be positive"))
		}
		count = int(n)
	}
	return popCommon(d, sess, string(argv[1]), false, count, hasCount)
}

func listElements(lv *store.ListValue) [][]byte {
	out := make([][]byte, 0, lv.L.Len())
	for e := lv.L.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.([]byte))
	}
	return out
}

func cmdLRange(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Array{}
	}
	lv, err := asList(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	start, e1 := parseInt(argv[2])
	stop, e2 := parseInt(argv[3])
	if e1 != nil || e2 != nil {
		return resp.Err(rerr.NotIntegerErr())
	}
	all := listElements(lv)
	n := int64(len(all))
	start, stop = clampRange(start, stop, n)
	if n == 0 || start > stop {
		return resp.Array{}
	}
	return resp.BulkArray(all[start : stop+1])
}

func cmdLLen(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.Int(0)
	}
	lv, err := asList(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return resp.Int(int64(lv.L.Len()))
}

func cmdLIndex(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.NilBulk{}
	}
	lv, err := asList(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	idx, ierr := parseInt(argv[2])
	if ierr != nil {
		return resp.Err(ierr.(*rerr.Error))
	}
	all := listElements(lv)
	n := int64(len(all))
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return resp.NilBulk{}
	}
	return resp.Bulk(all[idx])
}

func cmdLSet(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	idx, ierr := parseInt(argv[2])
	if ierr != nil {
		return resp.Err(ierr.(*rerr.Error))
	}
	var opErr error
	found := false
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			opErr = rerr.Generic("no such key")
			return e, false
		}
		lv, terr := asList(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		n := int64(lv.L.Len())
		i := idx
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			opErr = rerr.Generic("index out of range")
			return e, false
		}
		el := lv.L.Front()
		for j := int64(0); j < i; j++ {
			el = el.Next()
		}
		el.Value = append([]byte(nil), argv[3]...)
		found = true
		return &store.Entry{Value: lv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if !found {
		return resp.Err(rerr.Generic("no such key"))
	}
	return resp.OK
}

func cmdLInsert(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	before := strings.ToUpper(string(argv[2])) == "BEFORE"
	if !before && strings.ToUpper(string(argv[2])) != "AFTER" {
		return resp.Err(rerr.SyntaxErr())
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var result int64 = -1
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			result = 0
			return e, false
		}
		lv, terr := asList(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		var target *list.Element
		for el := lv.L.Front(); el != nil; el = el.Next() {
			if string(el.Value.([]byte)) == string(argv[3]) {
				target = el
				break
			}
		}
		if target == nil {
			result = -1
			return e, false
		}
		cp := append([]byte(nil), argv[4]...)
		if before {
			lv.L.InsertBefore(cp, target)
		} else {
			lv.L.InsertAfter(cp, target)
		}
		result = int64(lv.L.Len())
		return &store.Entry{Value: lv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(result)
}

func cmdLRem(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	count, cerr := parseInt(argv[2])
	if cerr != nil {
		return resp.Err(cerr.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var removed int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		lv, terr := asList(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		target := string(argv[3])
		switch {
		case count > 0:
			el := lv.L.Front()
			for el != nil && removed < count {
				next := el.Next()
				if string(el.Value.([]byte)) == target {
					lv.L.Remove(el)
					removed++
				}
				el = next
			}
		case count < 0:
			el := lv.L.Back()
			for el != nil && removed < -count {
				prev := el.Prev()
				if string(el.Value.([]byte)) == target {
					lv.L.Remove(el)
					removed++
				}
				el = prev
			}
		default:
			el := lv.L.Front()
			for el != nil {
				next := el.Next()
				if string(el.Value.([]byte)) == target {
					lv.L.Remove(el)
					removed++
				}
				el = next
			}
		}
		if lv.L.Len() == 0 {
			return nil, true
		}
		if removed == 0 {
			return e, false
		}
		return &store.Entry{Value: lv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(removed)
}

func cmdLTrim(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	start, e1 := parseInt(argv[2])
	stop, e2 := parseInt(argv[3])
	if e1 != nil || e2 != nil {
		return resp.Err(rerr.NotIntegerErr())
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		lv, terr := asList(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		all := listElements(lv)
		n := int64(len(all))
		s, p := clampRange(start, stop, n)
		if n == 0 || s > p {
			return nil, true
		}
		kept := store.NewListValue()
		for _, v := range all[s : p+1] {
			kept.L.PushBack(v)
		}
		return &store.Entry{Value: kept, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.OK
}

func cmdRPopLPush(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	src := string(argv[1])
	dst := string(argv[2])
	var moved []byte
	var opErr error
	ks.ComputeIfPresentOrAbsent(src, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		lv, terr := asList(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		back := lv.L.Back()
		if back == nil {
			return e, false
		}
		moved = back.Value.([]byte)
		lv.L.Remove(back)
		if lv.L.Len() == 0 {
			return nil, true
		}
		return &store.Entry{Value: lv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if moved == nil {
		return resp.NilBulk{}
	}
	ks.ComputeIfPresentOrAbsent(dst, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var lv *store.ListValue
		var expiresAt int64
		if exists {
			v, terr := asList(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			lv = v
			expiresAt = e.ExpiresAt
		} else {
			lv = store.NewListValue()
		}
		lv.L.PushFront(moved)
		return &store.Entry{Value: lv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Bulk(moved)
}

func cmdLPos(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	e, ok := ks.Peek(string(argv[1]))
	if !ok {
		return resp.NilBulk{}
	}
	lv, err := asList(e)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	rank := int64(1)
	count := int64(1)
	hasCount := false
	for i := 3; i < len(argv); i++ {
		switch strings.ToUpper(string(argv[i])) {
		case "RANK":
			i++
			if i >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			n, perr := parseInt(argv[i])
			if perr != nil {
				return resp.Err(perr.(*rerr.Error))
			}
			rank = n
		case "COUNT":
			i++
			if i >= len(argv) {
				return resp.Err(rerr.SyntaxErr())
			}
			n, perr := parseInt(argv[i])
			if perr != nil || n < 0 {
				return resp.Err(rerr.Generic("COUNT can't be negative"))
			}
			count = n
			hasCount = true
		default:
			return resp.Err(rerr.SyntaxErr())
		}
	}
	if rank == 0 {
		return resp.Err(rerr.Generic("RANK can't be zero"))
	}
	all := listElements(lv)
	target := string(argv[2])
	var matches []int64
	if rank > 0 {
		skip := rank - 1
		for i, v := range all {
			if string(v) == target {
				if skip > 0 {
					skip--
					continue
				}
				matches = append(matches, int64(i))
				if count > 0 && int64(len(matches)) >= count {
					break
				}
			}
		}
	} else {
		skip := -rank - 1
		for i := len(all) - 1; i >= 0; i-- {
			if string(all[i]) == target {
				if skip > 0 {
					skip--
					continue
				}
				matches = append(matches, int64(i))
				if count > 0 && int64(len(matches)) >= count {
					break
				}
			}
		}
	}
	if !hasCount {
		if len(matches) == 0 {
			return resp.NilBulk{}
		}
		return resp.Int(matches[0])
	}
	out := make(resp.Array, len(matches))
	for i, m := range matches {
		out[i] = resp.Int(m)
	}
	return out
}

const blockingPollInterval = 50 * time.Millisecond

func blockingPop(d *Dispatcher, sess *session.Session, keys []string, front bool, timeoutSec float64) resp.Reply {
	deadline := time.Time{}
	if timeoutSec > 0 {
		deadline = time.Now().Add(time.Duration(timeoutSec * float64(time.Second)))
	}
	for {
		var result resp.Reply
		d.Coord.RunShared(func() {
			for _, k := range keys {
				reply := popCommon(d, sess, k, front, 0, false)
				if _, isNil := reply.(resp.NilBulk); !isNil {
					if errReply, isErr := reply.(resp.Error); isErr {
						result = errReply
						return
					}
					result = resp.Array{resp.BulkStr(k), reply}
					return
				}
			}
		})
		if result != nil {
			return result
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return resp.NilArray{}
		}
		time.Sleep(blockingPollInterval)
		if !deadline.IsZero() && time.Now().After(deadline) {
			return resp.NilArray{}
		}
	}
}

func cmdBLPop(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	timeout, err := strconv.ParseFloat(string(argv[len(argv)-1]), 64)
	if err != nil {
		return resp.Err(rerr.Generic("timeout is not a float or out of range"))
	}
	keys := make([]string, len(argv)-2)
	for i, k := range argv[1 : len(argv)-1] {
		keys[i] = string(k)
	}
	return blockingPop(d, sess, keys, true, timeout)
}

func cmdBRPop(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	timeout, err := strconv.ParseFloat(string(argv[len(argv)-1]), 64)
	if err != nil {
		return resp.Err(rerr.Generic("timeout is not a float or out of range"))
	}
	keys := make([]string, len(argv)-2)
	for i, k := range argv[1 : len(argv)-1] {
		keys[i] = string(k)
	}
	return blockingPop(d, sess, keys, false, timeout)
}

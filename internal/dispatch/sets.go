package dispatch

import (
	"math/rand"

	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
)

func cmdSAdd(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var added int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var sv store.SetValue
		var expiresAt int64
		if exists {
			v, terr := asSet(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			sv = v
			expiresAt = e.ExpiresAt
		} else {
			sv = make(store.SetValue)
		}
		for _, m := range argv[2:] {
			k := string(m)
			if _, has := sv[k]; !has {
				sv[k] = struct{}{}
				added++
			}
		}
		return &store.Entry{Value: sv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if err := d.enforceMemoryBudget(ks); err != nil {
		return resp.Err(rerr.OOMErr())
	}
	return resp.Int(added)
}

func cmdSRem(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var removed int64
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		sv, terr := asSet(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		for _, m := range argv[2:] {
			if _, has := sv[string(m)]; has {
				delete(sv, string(m))
				removed++
			}
		}
		if len(sv) == 0 {
			return nil, true
		}
		if removed == 0 {
			return e, false
		}
		return &store.Entry{Value: sv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(removed)
}

func getSetOrEmpty(ks *store.Keyspace, key string) (store.SetValue, error) {
	e, ok := ks.Peek(key)
	if !ok {
		return nil, nil
	}
	return asSet(e)
}

func cmdSMembers(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	sv, err := getSetOrEmpty(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := make(resp.Array, 0, len(sv))
	for m := range sv {
		out = append(out, resp.BulkStr(m))
	}
	return out
}

func cmdSCard(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	sv, err := getSetOrEmpty(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	return resp.Int(int64(len(sv)))
}

func cmdSIsMember(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	sv, err := getSetOrEmpty(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	if _, has := sv[string(argv[2])]; has {
		return resp.Int(1)
	}
	return resp.Int(0)
}

func setOp(d *Dispatcher, sess *session.Session, keys []string, kind string) (map[string]struct{}, error) {
	ks := keyspaceFor(d, sess)
	sets := make([]store.SetValue, len(keys))
	for i, k := range keys {
		sv, err := getSetOrEmpty(ks, k)
		if err != nil {
			return nil, err
		}
		sets[i] = sv
	}
	out := make(map[string]struct{})
	switch kind {
	case "union":
		for _, sv := range sets {
			for m := range sv {
				out[m] = struct{}{}
			}
		}
	case "inter":
		if len(sets) == 0 {
			return out, nil
		}
		for m := range sets[0] {
			in := true
			for _, sv := range sets[1:] {
				if _, has := sv[m]; !has {
					in = false
					break
				}
			}
			if in {
				out[m] = struct{}{}
			}
		}
	case "diff":
		if len(sets) == 0 {
			return out, nil
		}
		for m := range sets[0] {
			excluded := false
			for _, sv := range sets[1:] {
				if _, has := sv[m]; has {
					excluded = true
					break
				}
			}
			if !excluded {
				out[m] = struct{}{}
			}
		}
	}
	return out, nil
}

func setOpReply(d *Dispatcher, sess *session.Session, argv [][]byte, kind string) resp.Reply {
	keys := make([]string, len(argv)-1)
	for i, k := range argv[1:] {
		keys[i] = string(k)
	}
	result, err := setOp(d, sess, keys, kind)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	out := make(resp.Array, 0, len(result))
	for m := range result {
		out = append(out, resp.BulkStr(m))
	}
	return out
}

func setOpStore(d *Dispatcher, sess *session.Session, argv [][]byte, kind string) resp.Reply {
	dst := string(argv[1])
	keys := make([]string, len(argv)-2)
	for i, k := range argv[2:] {
		keys[i] = string(k)
	}
	result, err := setOp(d, sess, keys, kind)
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	ks := keyspaceFor(d, sess)
	if len(result) == 0 {
		ks.Delete(dst)
		return resp.Int(0)
	}
	sv := make(store.SetValue, len(result))
	for m := range result {
		sv[m] = struct{}{}
	}
	ks.Set(dst, sv, 0)
	return resp.Int(int64(len(sv)))
}

func cmdSUnion(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return setOpReply(d, sess, argv, "union")
}
func cmdSInter(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return setOpReply(d, sess, argv, "inter")
}
func cmdSDiff(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return setOpReply(d, sess, argv, "diff")
}
func cmdSUnionStore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return setOpStore(d, sess, argv, "union")
}
func cmdSInterStore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return setOpStore(d, sess, argv, "inter")
}
func cmdSDiffStore(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	return setOpStore(d, sess, argv, "diff")
}

func cmdSPop(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	hasCount := len(argv) == 3
	count := int64(1)
	if hasCount {
		n, err := parseInt(argv[2])
		if err != nil || n < 0 {
			return resp.Err(rerr.Generic("value is out of range, must be positive"))
		}
		count = n
	}
	ks := keyspaceFor(d, sess)
	key := string(argv[1])
	var popped []string
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		sv, terr := asSet(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		members := make([]string, 0, len(sv))
		for m := range sv {
			members = append(members, m)
		}
		rand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		n := int(count)
		if n > len(members) {
			n = len(members)
		}
		popped = members[:n]
		for _, m := range popped {
			delete(sv, m)
		}
		if len(sv) == 0 {
			return nil, true
		}
		return &store.Entry{Value: sv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if !hasCount {
		if len(popped) == 0 {
			return resp.NilBulk{}
		}
		return resp.BulkStr(popped[0])
	}
	return resp.StrArray(popped)
}

func cmdSRandMember(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	sv, err := getSetOrEmpty(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	members := make([]string, 0, len(sv))
	for m := range sv {
		members = append(members, m)
	}
	if len(argv) == 2 {
		if len(members) == 0 {
			return resp.NilBulk{}
		}
		return resp.BulkStr(members[rand.Intn(len(members))])
	}
	count, cerr := parseInt(argv[2])
	if cerr != nil {
		return resp.Err(cerr.(*rerr.Error))
	}
	rand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	if count >= 0 {
		n := int(count)
		if n > len(members) {
			n = len(members)
		}
		return resp.StrArray(members[:n])
	}
	// Negative count: allow repeats, exactly -count results.
	n := int(-count)
	if len(members) == 0 {
		return resp.Array{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = members[rand.Intn(len(members))]
	}
	return resp.StrArray(out)
}

func cmdSMove(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	src := string(argv[1])
	dst := string(argv[2])
	member := string(argv[3])
	var moved bool
	var opErr error
	ks.ComputeIfPresentOrAbsent(src, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		if !exists {
			return e, false
		}
		sv, terr := asSet(e)
		if terr != nil {
			opErr = terr
			return e, false
		}
		if _, has := sv[member]; !has {
			return e, false
		}
		delete(sv, member)
		moved = true
		if len(sv) == 0 {
			return nil, true
		}
		return &store.Entry{Value: sv, ExpiresAt: e.ExpiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if !moved {
		return resp.Int(0)
	}
	ks.ComputeIfPresentOrAbsent(dst, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var sv store.SetValue
		var expiresAt int64
		if exists {
			v, terr := asSet(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			sv = v
			expiresAt = e.ExpiresAt
		} else {
			sv = make(store.SetValue)
		}
		sv[member] = struct{}{}
		return &store.Entry{Value: sv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	return resp.Int(1)
}

func cmdSScan(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	sv, err := getSetOrEmpty(ks, string(argv[1]))
	if err != nil {
		return resp.Err(err.(*rerr.Error))
	}
	pattern, _ := scanModifiers(argv[3:])
	out := make(resp.Array, 0, len(sv))
	for m := range sv {
		if globMatchOrFalse(pattern, m) {
			out = append(out, resp.BulkStr(m))
		}
	}
	return resp.Array{resp.BulkStr("0"), out}
}

package dispatch

import (
	"github.com/edirooss/rediskv-server/internal/hll"
	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/resp"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/store"
)

func cmdPFAdd(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	key := string(argv[1])
	ks := keyspaceFor(d, sess)
	var anyChanged bool
	var wasCreated bool
	var opErr error
	ks.ComputeIfPresentOrAbsent(key, func(e *store.Entry, exists bool) (*store.Entry, bool) {
		var hv *store.HLLValue
		var expiresAt int64
		if exists {
			v, terr := asHLL(e)
			if terr != nil {
				opErr = terr
				return e, false
			}
			hv = v
			expiresAt = e.ExpiresAt
		} else {
			hv = &store.HLLValue{H: hll.New()}
			wasCreated = true
		}
		for _, elem := range argv[2:] {
			if hv.H.Add(elem) {
				anyChanged = true
			}
		}
		if !anyChanged && !wasCreated {
			return e, false
		}
		return &store.Entry{Value: hv, ExpiresAt: expiresAt}, true
	})
	if opErr != nil {
		return resp.Err(opErr.(*rerr.Error))
	}
	if anyChanged || wasCreated {
		return resp.Int(1)
	}
	return resp.Int(0)
}

func cmdPFCount(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	if len(argv) == 2 {
		e, ok := ks.Peek(string(argv[1]))
		if !ok {
			return resp.Int(0)
		}
		hv, err := asHLL(e)
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		return resp.Int(int64(hv.H.Count()))
	}
	merged := hll.New()
	for _, k := range argv[1:] {
		e, ok := ks.Peek(string(k))
		if !ok {
			continue
		}
		hv, err := asHLL(e)
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		merged.Merge(hv.H)
	}
	return resp.Int(int64(merged.Count()))
}

func cmdPFMerge(d *Dispatcher, sess *session.Session, argv [][]byte) resp.Reply {
	ks := keyspaceFor(d, sess)
	dst := string(argv[1])
	merged := hll.New()
	for _, k := range argv[1:] {
		e, ok := ks.Peek(string(k))
		if !ok {
			continue
		}
		hv, err := asHLL(e)
		if err != nil {
			return resp.Err(err.(*rerr.Error))
		}
		merged.Merge(hv.H)
	}
	ks.Set(dst, &store.HLLValue{H: merged}, 0)
	return resp.OK
}

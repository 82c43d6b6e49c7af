package dispatch

import (
	"github.com/edirooss/rediskv-server/internal/rerr"
	"github.com/edirooss/rediskv-server/internal/store"
)

// wrongType is returned by the per-type lookup helpers below when a key
// exists with a different concrete value shape (spec.md §3 invariant 3).
func wrongType() error { return rerr.WrongTypeErr() }

func asString(e *store.Entry) (store.StringValue, error) {
	v, ok := e.Value.(store.StringValue)
	if !ok {
		return nil, wrongType()
	}
	return v, nil
}

func asList(e *store.Entry) (*store.ListValue, error) {
	v, ok := e.Value.(*store.ListValue)
	if !ok {
		return nil, wrongType()
	}
	return v, nil
}

func asHash(e *store.Entry) (store.HashValue, error) {
	v, ok := e.Value.(store.HashValue)
	if !ok {
		return nil, wrongType()
	}
	return v, nil
}

func asSet(e *store.Entry) (store.SetValue, error) {
	v, ok := e.Value.(store.SetValue)
	if !ok {
		return nil, wrongType()
	}
	return v, nil
}

func asZSet(e *store.Entry) (*store.ZSetValue, error) {
	v, ok := e.Value.(*store.ZSetValue)
	if !ok {
		return nil, wrongType()
	}
	return v, nil
}

func asHLL(e *store.Entry) (*store.HLLValue, error) {
	v, ok := e.Value.(*store.HLLValue)
	if !ok {
		return nil, wrongType()
	}
	return v, nil
}

// checkMaxValue rejects writes whose payload exceeds the configured
// per-value ceiling (spec.md §6 configuration surface, §7 resource
// errors).
func (d *Dispatcher) checkMaxValue(n int) error {
	if d.Cfg.MaxValueBytes > 0 && int64(n) > d.Cfg.MaxValueBytes {
		return rerr.Generic("value exceeds configured maxvalue_bytes")
	}
	return nil
}

// enforceMemoryBudget runs the eviction policy for the entry's database
// after a write (spec.md §4.4): callers perform the write first, then
// call this. Eviction samples every key of the database, the key just
// written included, and an OOM error comes back only once the database
// has no keys left to sample while still over the ceiling.
func (d *Dispatcher) enforceMemoryBudget(ks *store.Keyspace) error {
	if d.Evictor == nil {
		return nil
	}
	return d.Evictor.EnsureBudget(ks, d.Cfg.MaxMemoryBytes)
}

// Package store implements the sharded, typed keyspace described in
// spec.md §3/§4.1: a tagged-variant value model with per-key metadata
// (TTL, version, LRU epoch), accessed through N independently-locked
// shards. Grounded on the teacher's internal/repo/store/store.go
// read/write locking split (stateRW for reads, a write path that stays
// short under lock) generalized from one global map to N shard maps,
// and on torua's internal/shard hash-based ownership idea for choosing
// a shard by key hash.
package store

import (
	"container/list"

	"github.com/edirooss/rediskv-server/internal/hll"
	"github.com/edirooss/rediskv-server/internal/zset"
)

// Type tags the concrete shape of a Value (spec.md §3).
type Type int

const (
	TString Type = iota
	TList
	THash
	TSet
	TZSet
	THLL
)

func (t Type) String() string {
	switch t {
	case TString:
		return "string"
	case TList:
		return "list"
	case THash:
		return "hash"
	case TSet:
		return "set"
	case TZSet:
		return "zset"
	case THLL:
		return "string" // HLLs are stored as opaque strings from a client's point of view
	default:
		return "unknown"
	}
}

// Value is a tagged variant with exactly one concrete shape per spec.md §3.
type Value interface {
	Type() Type
	// approxBytes estimates the in-memory footprint of the value payload
	// alone (spec.md §4.4 memory accounting).
	approxBytes() int64
}

// StringValue is a binary-safe byte sequence.
type StringValue []byte

func (StringValue) Type() Type           { return TString }
func (v StringValue) approxBytes() int64 { return int64(len(v)) }

// ListValue is an ordered sequence of binary-safe byte sequences with
// O(1) push/pop at both ends (container/list gives that directly; no
// pack example or ecosystem library supplies a deque more idiomatically
// than the standard library here).
type ListValue struct {
	L *list.List // element Value is []byte
}

func NewListValue() *ListValue { return &ListValue{L: list.New()} }

func (*ListValue) Type() Type { return TList }
func (v *ListValue) approxBytes() int64 {
	var n int64
	for e := v.L.Front(); e != nil; e = e.Next() {
		n += int64(len(e.Value.([]byte)))
	}
	return n
}

// HashValue maps field bytes to value bytes.
type HashValue map[string][]byte

func (HashValue) Type() Type { return THash }
func (v HashValue) approxBytes() int64 {
	var n int64
	for k, val := range v {
		n += int64(len(k) + len(val))
	}
	return n
}

// SetValue is a set of unique byte-sequence members.
type SetValue map[string]struct{}

func (SetValue) Type() Type { return TSet }
func (v SetValue) approxBytes() int64 {
	var n int64
	for k := range v {
		n += int64(len(k))
	}
	return n
}

// ZSetValue is a sorted set ordered by (score, member).
type ZSetValue struct{ Z *zset.ZSet }

func NewZSetValue() *ZSetValue { return &ZSetValue{Z: zset.New()} }

func (*ZSetValue) Type() Type { return TZSet }
func (v *ZSetValue) approxBytes() int64 {
	var n int64
	for _, m := range v.Z.All() {
		n += int64(len(m.Name)) + 8
	}
	return n
}

// HLLValue is a HyperLogLog cardinality estimator.
type HLLValue struct{ H *hll.HLL }

func NewHLLValue() *HLLValue { return &HLLValue{H: hll.New()} }

func (*HLLValue) Type() Type { return THLL }
func (v *HLLValue) approxBytes() int64 {
	if v.H.IsSparse() {
		return 64 // nominal; sparse footprint is small and data-dependent
	}
	return 16384
}

const entryOverheadBytes = 48 // per-entry bookkeeping constant (spec.md §4.4)

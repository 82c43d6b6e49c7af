// Package stats collects the lightweight server-wide counters surfaced by
// INFO (spec.md §6 server commands): commands processed, keyspace hits
// and misses, expired/evicted key counts, and per-key mutations. Grounded
// on the teacher's internal/infrastructure/processmgr counters tracking
// process lifecycle events with plain atomics rather than a metrics
// library, generalized to keyspace events here.
package stats

import "sync/atomic"

// Counters is safe for concurrent use; every field is updated with
// atomics so it can be wired directly as a store.Notifier and read from
// the command dispatcher without a separate lock.
type Counters struct {
	commandsProcessed int64
	keyspaceHits      int64
	keyspaceMisses    int64
	expiredKeys       int64
	evictedKeys       int64
	mutations         int64
}

func New() *Counters { return &Counters{} }

func (c *Counters) IncrCommandsProcessed() { atomic.AddInt64(&c.commandsProcessed, 1) }
func (c *Counters) IncrKeyspaceHit()       { atomic.AddInt64(&c.keyspaceHits, 1) }
func (c *Counters) IncrKeyspaceMiss()      { atomic.AddInt64(&c.keyspaceMisses, 1) }
func (c *Counters) IncrExpiredKeys(n int64) { atomic.AddInt64(&c.expiredKeys, n) }
func (c *Counters) IncrEvictedKeys(n int64) { atomic.AddInt64(&c.evictedKeys, n) }

// NotifyKeyChanged implements store.Notifier: every insert/delete/expire/
// evict routes through here as a generic mutation count, independent of
// the more specific counters above which callers bump directly.
func (c *Counters) NotifyKeyChanged(_ int, _ string) { atomic.AddInt64(&c.mutations, 1) }

// Snapshot is a point-in-time copy of every counter, for rendering INFO.
type Snapshot struct {
	CommandsProcessed int64
	KeyspaceHits      int64
	KeyspaceMisses    int64
	ExpiredKeys       int64
	EvictedKeys       int64
	Mutations         int64
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		CommandsProcessed: atomic.LoadInt64(&c.commandsProcessed),
		KeyspaceHits:      atomic.LoadInt64(&c.keyspaceHits),
		KeyspaceMisses:    atomic.LoadInt64(&c.keyspaceMisses),
		ExpiredKeys:       atomic.LoadInt64(&c.expiredKeys),
		EvictedKeys:       atomic.LoadInt64(&c.evictedKeys),
		Mutations:         atomic.LoadInt64(&c.mutations),
	}
}

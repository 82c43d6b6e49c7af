package store

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Notifier is called synchronously, while the owning shard lock is still
// held, for every key mutation (set, delete, expire, evict, overwrite).
// spec.md §4.5/§9 requires the WATCH dirty-bit write to happen under the
// same shard lock as the mutation that caused it. In this server WATCH
// relies on Entry.Version, bumped under that lock; the only Notifier
// implementation is internal/stats.Counters.
type Notifier interface {
	NotifyKeyChanged(dbIndex int, key string)
}

type noopNotifier struct{}

func (noopNotifier) NotifyKeyChanged(int, string) {}

// shard is one independently-locked bucket of the keyspace.
type shard struct {
	mu        sync.RWMutex
	data      map[string]*Entry
	expirable map[string]struct{} // keys with a TTL, for the active sampler
	bytes     int64               // estimated footprint of this shard's entries
}

func newShard() *shard {
	return &shard{
		data:      make(map[string]*Entry),
		expirable: make(map[string]struct{}),
	}
}

// Keyspace is one database's sharded key→(value,metadata) map.
type Keyspace struct {
	shards   []*shard
	dbIndex  int
	notifier Notifier
	lruClock int64 // atomic monotonic tick, bumped on every access
	version  uint64 // atomic global version source; each mutation takes a fresh one
}

// NewKeyspace creates a keyspace with the given shard count for database
// dbIndex. numShards should be a power of two in the 16-256 range per
// spec.md §4.1; any positive value works.
func NewKeyspace(numShards, dbIndex int, notifier Notifier) *Keyspace {
	if numShards <= 0 {
		numShards = 32
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	ks := &Keyspace{
		shards:   make([]*shard, numShards),
		dbIndex:  dbIndex,
		notifier: notifier,
	}
	for i := range ks.shards {
		ks.shards[i] = newShard()
	}
	return ks
}

func (ks *Keyspace) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(ks.shards)
}

func (ks *Keyspace) shardFor(key string) *shard { return ks.shards[ks.shardIndex(key)] }

func (ks *Keyspace) nextVersion() uint64 { return atomic.AddUint64(&ks.version, 1) }

func (ks *Keyspace) tickLRU() int64 { return atomic.AddInt64(&ks.lruClock, 1) }

// nowNano is overridable in tests; defaults to the wall clock.
var nowNano = func() int64 { return time.Now().UnixNano() }

// expireLocked deletes key from sh if it has expired as of now, bumping
// its version first so a concurrent WATCH observes the disappearance as
// a dirty transition (spec.md §4.3/§9). Must be called with sh.mu held
// for writing. Returns true if the key was removed.
func (ks *Keyspace) expireLocked(sh *shard, key string, now int64) bool {
	e, ok := sh.data[key]
	if !ok || !e.Expired(now) {
		return false
	}
	e.Version = ks.nextVersion()
	ks.removeLocked(sh, key, e)
	ks.notifier.NotifyKeyChanged(ks.dbIndex, key)
	return true
}

func (ks *Keyspace) removeLocked(sh *shard, key string, e *Entry) {
	sh.bytes -= e.approxBytes(key)
	delete(sh.data, key)
	delete(sh.expirable, key)
}

func (ks *Keyspace) insertLocked(sh *shard, key string, e *Entry) {
	sh.data[key] = e
	if e.HasTTL() {
		sh.expirable[key] = struct{}{}
	} else {
		delete(sh.expirable, key)
	}
	sh.bytes += e.approxBytes(key)
}

// Get returns the live entry for key, applying lazy expiration, and
// stamps its LRU epoch (spec.md §3 invariant 1/2, §4.3).
func (ks *Keyspace) Get(key string) (*Entry, bool) {
	sh := ks.shardFor(key)
	now := nowNano()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if ks.expireLocked(sh, key, now) {
		return nil, false
	}
	e, ok := sh.data[key]
	if !ok {
		return nil, false
	}
	e.LRUEpoch = ks.tickLRU()
	return e, true
}

// Peek is like Get but does not update the LRU epoch (for TYPE/TTL-style
// introspection commands that should not count as an access).
func (ks *Keyspace) Peek(key string) (*Entry, bool) {
	sh := ks.shardFor(key)
	now := nowNano()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if ks.expireLocked(sh, key, now) {
		return nil, false
	}
	e, ok := sh.data[key]
	return e, ok
}

// Exists reports whether key is live, applying lazy expiration.
func (ks *Keyspace) Exists(key string) bool {
	_, ok := ks.Peek(key)
	return ok
}

// Set inserts or replaces key's value and TTL wholesale (spec.md §4.1
// insert_or_replace). expiresAt==0 means no TTL. Bumps version.
func (ks *Keyspace) Set(key string, v Value, expiresAt int64) *Entry {
	sh := ks.shardFor(key)
	now := nowNano()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	ks.expireLocked(sh, key, now)

	if old, ok := sh.data[key]; ok {
		ks.removeLocked(sh, key, old)
	}
	e := &Entry{Value: v, ExpiresAt: expiresAt, Version: ks.nextVersion(), LRUEpoch: ks.tickLRU()}
	ks.insertLocked(sh, key, e)
	ks.notifier.NotifyKeyChanged(ks.dbIndex, key)
	return e
}

// Delete removes key if present, bumping its version. Returns true if a
// live key was removed.
func (ks *Keyspace) Delete(key string) bool {
	sh := ks.shardFor(key)
	now := nowNano()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if ks.expireLocked(sh, key, now) {
		return false
	}
	e, ok := sh.data[key]
	if !ok {
		return false
	}
	e.Version = ks.nextVersion()
	ks.removeLocked(sh, key, e)
	ks.notifier.NotifyKeyChanged(ks.dbIndex, key)
	return true
}

// MutateFunc is given the live entry (nil if the key is absent/expired)
// and returns the entry to store (nil to delete/leave absent) plus
// whether any mutation actually happened (controls version bump and
// notification; read-only lookups should return changed=false).
type MutateFunc func(e *Entry, exists bool) (newEntry *Entry, changed bool)

// ComputeIfPresentOrAbsent runs fn under the owning shard's lock,
// atomically combining a lazily-expired read with a write decision
// (spec.md §4.1 compute_if_present). This is how nearly every command
// (INCR, HSET, SADD, …) gets read-modify-write atomicity without a
// separate read+write round trip that could race with another
// connection.
func (ks *Keyspace) ComputeIfPresentOrAbsent(key string, fn MutateFunc) *Entry {
	sh := ks.shardFor(key)
	now := nowNano()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	ks.expireLocked(sh, key, now)

	existing, ok := sh.data[key]
	newEntry, changed := fn(existing, ok)
	if !changed {
		return existing
	}

	if ok {
		ks.removeLocked(sh, key, existing)
	}
	if newEntry != nil {
		newEntry.Version = ks.nextVersion()
		newEntry.LRUEpoch = ks.tickLRU()
		ks.insertLocked(sh, key, newEntry)
	} else if ok {
		// Deletion: still needs a fresh version bump for WATCH even though
		// insertLocked won't run.
		existing.Version = ks.nextVersion()
	}
	ks.notifier.NotifyKeyChanged(ks.dbIndex, key)
	return newEntry
}

// Rename moves src's (value, TTL) to dst, deleting src. Returns false if
// src does not exist. Locks both shards in ascending index order to
// satisfy spec.md §4.1's deterministic multi-key lock ordering.
func (ks *Keyspace) Rename(src, dst string) bool {
	si, di := ks.shardIndex(src), ks.shardIndex(dst)
	ssh, dsh := ks.shards[si], ks.shards[di]
	now := nowNano()

	if si == di {
		ssh.mu.Lock()
		defer ssh.mu.Unlock()
	} else if si < di {
		ssh.mu.Lock()
		defer ssh.mu.Unlock()
		dsh.mu.Lock()
		defer dsh.mu.Unlock()
	} else {
		dsh.mu.Lock()
		defer dsh.mu.Unlock()
		ssh.mu.Lock()
		defer ssh.mu.Unlock()
	}

	ks.expireLocked(ssh, src, now)
	e, ok := ssh.data[src]
	if !ok {
		return false
	}
	ks.removeLocked(ssh, src, e)

	ks.expireLocked(dsh, dst, now)
	if old, existed := dsh.data[dst]; existed {
		ks.removeLocked(dsh, dst, old)
	}
	e.Version = ks.nextVersion()
	e.LRUEpoch = ks.tickLRU()
	ks.insertLocked(dsh, dst, e)

	ks.notifier.NotifyKeyChanged(ks.dbIndex, src)
	ks.notifier.NotifyKeyChanged(ks.dbIndex, dst)
	return true
}

// IterSnapshot returns a coherent point-in-time list of live keys
// (spec.md §4.1): no duplicates, no re-entry; keys added mid-iteration
// may or may not appear. Achieved by taking a brief read lock per shard.
func (ks *Keyspace) IterSnapshot() []string {
	var out []string
	now := nowNano()
	for _, sh := range ks.shards {
		sh.mu.RLock()
		for k, e := range sh.data {
			if !e.Expired(now) {
				out = append(out, k)
			}
		}
		sh.mu.RUnlock()
	}
	return out
}

// SampleKeysWithTTL returns up to n keys that currently carry a TTL,
// sampled from a random subset of shards (spec.md §4.3 active sampler).
func (ks *Keyspace) SampleKeysWithTTL(n int) []string {
	if n <= 0 {
		return nil
	}
	order := rand.Perm(len(ks.shards))
	var out []string
	for _, idx := range order {
		sh := ks.shards[idx]
		sh.mu.RLock()
		for k := range sh.expirable {
			out = append(out, k)
			if len(out) >= n {
				sh.mu.RUnlock()
				return out
			}
		}
		sh.mu.RUnlock()
	}
	return out
}

// SampleRandomKeys returns up to n keys drawn true-randomly from the
// live keyspace (spec.md §4.4: eviction sampling must not use
// deterministic iteration order).
func (ks *Keyspace) SampleRandomKeys(n int) []string {
	if n <= 0 {
		return nil
	}
	order := rand.Perm(len(ks.shards))
	var out []string
	for _, idx := range order {
		sh := ks.shards[idx]
		sh.mu.RLock()
		keys := make([]string, 0, len(sh.data))
		for k := range sh.data {
			keys = append(keys, k)
		}
		sh.mu.RUnlock()
		rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		for _, k := range keys {
			out = append(out, k)
			if len(out) >= n {
				return out
			}
		}
	}
	return out
}

// LRUEpochOf returns the entry's current LRU epoch and whether it is
// still live (used by the eviction engine to rank sampled candidates
// without racing a concurrent mutation).
func (ks *Keyspace) LRUEpochOf(key string) (int64, bool) {
	sh := ks.shardFor(key)
	now := nowNano()
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.data[key]
	if !ok || e.Expired(now) {
		return 0, false
	}
	return e.LRUEpoch, true
}

// DBSize returns the number of live keys (approximate across shards,
// computed without a global lock; acceptable for an observability/
// admin-facing count).
func (ks *Keyspace) DBSize() int {
	n := 0
	now := nowNano()
	for _, sh := range ks.shards {
		sh.mu.RLock()
		for _, e := range sh.data {
			if !e.Expired(now) {
				n++
			}
		}
		sh.mu.RUnlock()
	}
	return n
}

// EstimatedBytes sums each shard's running footprint estimate (spec.md
// §4.4 memory accounting).
func (ks *Keyspace) EstimatedBytes() int64 {
	var total int64
	for _, sh := range ks.shards {
		sh.mu.RLock()
		total += sh.bytes
		sh.mu.RUnlock()
	}
	return total
}

// FlushAll drops every key in every shard without individually bumping
// versions (FLUSHDB/FLUSHALL are defined as a wholesale reset, not a
// per-key delete sequence).
func (ks *Keyspace) FlushAll() {
	for _, sh := range ks.shards {
		sh.mu.Lock()
		sh.data = make(map[string]*Entry)
		sh.expirable = make(map[string]struct{})
		sh.bytes = 0
		sh.mu.Unlock()
	}
}

// NumShards returns the shard count (for tests and diagnostics).
func (ks *Keyspace) NumShards() int { return len(ks.shards) }

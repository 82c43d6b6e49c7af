// Package evict implements approximate-LRU eviction under a memory
// ceiling (spec.md §4.4): sample a handful of random keys, evict the one
// with the smallest lru_epoch, repeat until under budget. Grounded on
// the teacher's internal/repo/store/store.go size-accounting idiom
// (running footprint checked on every write) generalized with random
// sampling instead of a single global map.
package evict

import (
	"errors"

	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
)

const defaultSampleSize = 5

// ErrOOM is returned when maxmemory is exceeded and the keyspace has no
// keys left to sample for eviction.
var ErrOOM = errors.New("OOM command not allowed when used memory > 'maxmemory'")

// Policy drives eviction for one database.
type Policy struct {
	sampleSize int
	counters   *stats.Counters
}

func New(sampleSize int, counters *stats.Counters) *Policy {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	return &Policy{sampleSize: sampleSize, counters: counters}
}

// EnsureBudget evicts keys from ks until its estimated footprint is at
// or below maxBytes (0 = unbounded, always satisfied). Returns ErrOOM if
// the ceiling is still exceeded and the keyspace has no keys left to
// sample; a round that frees nothing is simply retried.
func (p *Policy) EnsureBudget(ks *store.Keyspace, maxBytes int64) error {
	if maxBytes <= 0 {
		return nil
	}
	for ks.EstimatedBytes() > maxBytes {
		candidates := ks.SampleRandomKeys(p.sampleSize)
		if len(candidates) == 0 {
			return ErrOOM
		}
		victim, found := smallestEpoch(ks, candidates)
		if !found {
			// All sampled keys vanished (raced with concurrent deletes);
			// try again rather than declaring OOM prematurely.
			continue
		}
		if !ks.Delete(victim) {
			continue
		}
		if p.counters != nil {
			p.counters.IncrEvictedKeys(1)
		}
	}
	return nil
}

func smallestEpoch(ks *store.Keyspace, keys []string) (string, bool) {
	var (
		best      string
		bestEpoch int64
		found     bool
	)
	for _, k := range keys {
		epoch, ok := ks.LRUEpochOf(k)
		if !ok {
			continue
		}
		if !found || epoch < bestEpoch {
			best, bestEpoch, found = k, epoch, true
		}
	}
	return best, found
}

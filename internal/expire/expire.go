// Package expire implements the active expiration sampler (spec.md §4.3):
// a fixed-interval background tick that samples keys with a TTL and
// deletes the expired ones, re-sampling immediately under load (bounded
// by a wall-clock budget per tick) so a burst of simultaneous expirations
// drains quickly instead of trickling out one tick at a time. Grounded on
// the teacher's internal/infrastructure/processmgr supervision loops
// (ticker + zap logging of each pass), adapted from process health
// checks to key sampling.
package expire

import (
	"context"
	"time"

	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"go.uber.org/zap"
)

const (
	defaultInterval   = 100 * time.Millisecond
	defaultSampleSize = 20
	defaultBudget     = 25 * time.Millisecond
	dirtyRatioRepeat  = 0.25
)

// Sampler periodically expires stale keys across every database.
type Sampler struct {
	log        *zap.Logger
	dbs        *store.DBSet
	counters   *stats.Counters
	interval   time.Duration
	sampleSize int
	budget     time.Duration
}

func New(log *zap.Logger, dbs *store.DBSet, counters *stats.Counters, interval time.Duration, sampleSize int, budget time.Duration) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	if budget <= 0 {
		budget = defaultBudget
	}
	return &Sampler{
		log:        log.Named("expire"),
		dbs:        dbs,
		counters:   counters,
		interval:   interval,
		sampleSize: sampleSize,
		budget:     budget,
	}
}

// Run ticks until ctx is cancelled. Intended to be supervised by an
// errgroup alongside the accept loop and the snapshot saver.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Sampler) tick() {
	deadline := time.Now().Add(s.budget)
	for _, ks := range s.dbs.All() {
		for {
			n := s.sweepOnce(ks)
			if n == 0 || time.Now().After(deadline) {
				break
			}
			// Repeat immediately only if a large share of the sample was
			// already expired — a signal there may be more to reclaim.
			if float64(n)/float64(s.sampleSize) < dirtyRatioRepeat {
				break
			}
		}
	}
}

// sweepOnce samples keys with a TTL and expires the stale ones via the
// keyspace's own lazy-expiration path (Peek deletes expired entries as a
// side effect), returning how many were found expired.
func (s *Sampler) sweepOnce(ks *store.Keyspace) int {
	keys := ks.SampleKeysWithTTL(s.sampleSize)
	expired := 0
	for _, k := range keys {
		if _, ok := ks.Peek(k); !ok {
			expired++
		}
	}
	if expired > 0 {
		s.counters.IncrExpiredKeys(int64(expired))
		s.log.Debug("active expiration pass", zap.Int("sampled", len(keys)), zap.Int("expired", expired))
	}
	return expired
}

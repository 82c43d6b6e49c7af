// Package pubsub implements the channel/pattern/shard-channel fanout hub
// (spec.md §4.6): SUBSCRIBE/UNSUBSCRIBE, PSUBSCRIBE/PUNSUBSCRIBE,
// SSUBSCRIBE/SUNSUBSCRIBE, and PUBLISH/SPUBLISH delivery with bounded
// per-subscriber queues. Grounded on the teacher's processmgr.process
// lifecycle idiom (closeOnce-guarded teardown, a done channel, zap
// lifecycle logging) generalized from one supervised child process to
// many concurrently-subscribed connections.
package pubsub

import (
	"sync"

	"github.com/edirooss/rediskv-server/internal/glob"
	"go.uber.org/zap"
)

// Message is one delivered publication.
type Message struct {
	Kind    string // "message", "pmessage", or "smessage"
	Channel string
	Pattern string // only set for "pmessage"
	Payload []byte
}

// subscriberQueueSize bounds each subscriber's pending-delivery queue
// (spec.md §4.6: bounded per-subscriber queue, drop-oldest-on-full).
const subscriberQueueSize = 1024

// Subscriber is one connection's delivery endpoint.
type Subscriber struct {
	log *zap.Logger

	mu      sync.Mutex
	queue   []Message
	dropped int64
	notify  chan struct{} // signaled (non-blocking) whenever queue gains an item

	closeOnce sync.Once
	closed    chan struct{}
}

func newSubscriber(log *zap.Logger) *Subscriber {
	return &Subscriber{
		log:    log,
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Deliver enqueues msg, dropping the oldest queued message if full.
func (s *Subscriber) Deliver(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.closed:
		return
	default:
	}
	if len(s.queue) >= subscriberQueueSize {
		s.queue = s.queue[1:]
		s.dropped++
	}
	s.queue = append(s.queue, msg)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Wait returns a channel that is signaled when new messages may be
// available (the connection's read loop selects on this alongside its
// socket deadline).
func (s *Subscriber) Wait() <-chan struct{} { return s.notify }

// Drain removes and returns every currently-queued message.
func (s *Subscriber) Drain() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	out := s.queue
	s.queue = nil
	return out
}

// Dropped returns how many messages have been discarded for overflow.
func (s *Subscriber) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close marks the subscriber inactive; idempotent.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Hub owns channel, pattern, and shard-channel subscription sets.
type Hub struct {
	log *zap.Logger

	mu        sync.RWMutex
	channels  map[string]map[*Subscriber]struct{}
	patterns  map[string]map[*Subscriber]struct{}
	shardChs  map[string]map[*Subscriber]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:      log.Named("pubsub"),
		channels: make(map[string]map[*Subscriber]struct{}),
		patterns: make(map[string]map[*Subscriber]struct{}),
		shardChs: make(map[string]map[*Subscriber]struct{}),
	}
}

// NewSubscriber mints a delivery endpoint for one connection.
func (h *Hub) NewSubscriber() *Subscriber { return newSubscriber(h.log) }

func subscribe(mu *sync.RWMutex, set map[string]map[*Subscriber]struct{}, key string, sub *Subscriber) {
	mu.Lock()
	defer mu.Unlock()
	m, ok := set[key]
	if !ok {
		m = make(map[*Subscriber]struct{})
		set[key] = m
	}
	m[sub] = struct{}{}
}

func unsubscribe(mu *sync.RWMutex, set map[string]map[*Subscriber]struct{}, key string, sub *Subscriber) {
	mu.Lock()
	defer mu.Unlock()
	m, ok := set[key]
	if !ok {
		return
	}
	delete(m, sub)
	if len(m) == 0 {
		delete(set, key)
	}
}

func (h *Hub) Subscribe(channel string, sub *Subscriber) { subscribe(&h.mu, h.channels, channel, sub) }
func (h *Hub) Unsubscribe(channel string, sub *Subscriber) {
	unsubscribe(&h.mu, h.channels, channel, sub)
}

func (h *Hub) PSubscribe(pattern string, sub *Subscriber) { subscribe(&h.mu, h.patterns, pattern, sub) }
func (h *Hub) PUnsubscribe(pattern string, sub *Subscriber) {
	unsubscribe(&h.mu, h.patterns, pattern, sub)
}

func (h *Hub) SSubscribe(channel string, sub *Subscriber) { subscribe(&h.mu, h.shardChs, channel, sub) }
func (h *Hub) SUnsubscribe(channel string, sub *Subscriber) {
	unsubscribe(&h.mu, h.shardChs, channel, sub)
}

// UnsubscribeAll removes sub from every channel/pattern/shard-channel it
// is a member of (connection close, RESET).
func (h *Hub) UnsubscribeAll(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range []map[string]map[*Subscriber]struct{}{h.channels, h.patterns, h.shardChs} {
		for key, m := range set {
			if _, ok := m[sub]; ok {
				delete(m, sub)
				if len(m) == 0 {
					delete(set, key)
				}
			}
		}
	}
}

// Publish delivers payload to every exact-channel and pattern subscriber
// of channel, returning the number of subscribers reached (spec.md §4.6:
// PUBLISH's reply is the receiver count, not a delivery guarantee).
func (h *Hub) Publish(channel string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for sub := range h.channels[channel] {
		sub.Deliver(Message{Kind: "message", Channel: channel, Payload: payload})
		n++
	}
	for pattern, subs := range h.patterns {
		if !glob.Match(pattern, channel) {
			continue
		}
		for sub := range subs {
			sub.Deliver(Message{Kind: "pmessage", Channel: channel, Pattern: pattern, Payload: payload})
			n++
		}
	}
	return n
}

// SPublish delivers payload to shard-channel subscribers only (spec.md
// §4.6: SPUBLISH never reaches pattern subscribers; it is confined to
// this node, which is the whole cluster in a single-node server).
func (h *Hub) SPublish(channel string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for sub := range h.shardChs[channel] {
		sub.Deliver(Message{Kind: "smessage", Channel: channel, Payload: payload})
		n++
	}
	return n
}

// NumSub returns how many subscribers a given exact channel currently has
// (PUBSUB NUMSUB).
func (h *Hub) NumSub(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// ChannelsMatching returns active exact channels matching pattern ("" or
// "*" for all) — PUBSUB CHANNELS.
func (h *Hub) ChannelsMatching(pattern string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for ch := range h.channels {
		if pattern == "" || glob.Match(pattern, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// NumPat returns the number of distinct patterns with at least one
// subscriber (PUBSUB NUMPAT).
func (h *Hub) NumPat() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.patterns)
}

// ShardChannelsMatching mirrors ChannelsMatching for shard channels
// (PUBSUB SHARDCHANNELS).
func (h *Hub) ShardChannelsMatching(pattern string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for ch := range h.shardChs {
		if pattern == "" || glob.Match(pattern, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// NumShardSub returns how many subscribers a shard channel has (PUBSUB
// SHARDNUMSUB).
func (h *Hub) NumShardSub(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.shardChs[channel])
}

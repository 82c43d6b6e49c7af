// Package session holds per-connection state (spec.md §4.8): auth bit,
// selected database, client name/id, transaction sub-state, WATCH set,
// and subscription set. Grounded on the teacher's ChannelService pattern
// of a plain struct guarded by a narrow mutex around just the mutable
// fields, with a monotonic id allocator mirroring
// internal/infrastructure/processmgr's pid_allocator.go.
package session

import (
	"net"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/edirooss/rediskv-server/internal/pubsub"
	"github.com/edirooss/rediskv-server/internal/txn"
	"github.com/google/uuid"
)

// IDAllocator hands out globally unique, monotonically increasing client
// ids (CLIENT ID, CLIENT LIST), grounded on the teacher's pid_allocator.go
// monotonic-counter idiom.
type IDAllocator struct{ next int64 }

func (a *IDAllocator) Next() int64 { return atomic.AddInt64(&a.next, 1) }

// Session is one connection's state. All fields except the pub/sub
// delivery queue (owned by pubsub.Subscriber, which is already
// internally synchronized) are mutated only by the connection's own
// goroutine, per spec.md §4.8 — the mutex here exists solely to let
// CLIENT LIST and INFO read other sessions' state from the server's
// registry without racing this session's own goroutine.
type Session struct {
	mu sync.Mutex

	ID       int64
	TraceID  string
	Addr     string
	Authed   bool
	DBIndex  int
	Name     string
	Paused   bool
	resp3    bool

	Tx      txn.TxState
	Watches *txn.WatchSet

	Sub               *pubsub.Subscriber
	subscriptionCount int
	channels          map[string]struct{}
	patterns          map[string]struct{}
	shardChannels     map[string]struct{}

	createdAtUnix int64
}

func New(id int64, conn net.Conn, requireAuth bool) *Session {
	addr := ""
	if conn != nil {
		addr = conn.RemoteAddr().String()
	}
	return &Session{
		ID:      id,
		TraceID: uuid.NewString(),
		Addr:    addr,
		Authed:  !requireAuth,
		Watches: txn.NewWatchSet(),
	}
}

func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Name = name
}

func (s *Session) GetName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Name
}

func (s *Session) SetAuthed(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Authed = v
}

func (s *Session) IsAuthed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Authed
}

func (s *Session) SetDBIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DBIndex = i
}

func (s *Session) GetDBIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DBIndex
}

func (s *Session) SetPaused(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Paused = v
}

func (s *Session) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Paused
}

// InSubscribeMode reports whether the subscription gate (spec.md §4.2b)
// applies: true once any subscription exists for this session.
func (s *Session) InSubscribeMode() bool {
	return s.subCount() > 0
}

// subCount is a placeholder hook the dispatcher updates via
// SetSubCount; Subscriber itself doesn't track names, only delivery.
func (s *Session) subCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptionCount
}

func (s *Session) SetSubCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptionCount = n
}

func subAdd(set *map[string]struct{}, name string) {
	if *set == nil {
		*set = make(map[string]struct{})
	}
	(*set)[name] = struct{}{}
}

// AddChannel/AddPattern/AddShardChannel record a new subscription name so
// later UNSUBSCRIBE-with-no-arguments and CLIENT/PUBSUB introspection can
// report exactly what this session is subscribed to.
func (s *Session) AddChannel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subAdd(&s.channels, name)
	s.subscriptionCount = len(s.channels) + len(s.patterns) + len(s.shardChannels)
}

func (s *Session) AddPattern(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subAdd(&s.patterns, name)
	s.subscriptionCount = len(s.channels) + len(s.patterns) + len(s.shardChannels)
}

func (s *Session) AddShardChannel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subAdd(&s.shardChannels, name)
	s.subscriptionCount = len(s.channels) + len(s.patterns) + len(s.shardChannels)
}

func remove(set map[string]struct{}, name string) {
	delete(set, name)
}

func (s *Session) RemoveChannel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remove(s.channels, name)
	s.subscriptionCount = len(s.channels) + len(s.patterns) + len(s.shardChannels)
}

func (s *Session) RemovePattern(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remove(s.patterns, name)
	s.subscriptionCount = len(s.channels) + len(s.patterns) + len(s.shardChannels)
}

func (s *Session) RemoveShardChannel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remove(s.shardChannels, name)
	s.subscriptionCount = len(s.channels) + len(s.patterns) + len(s.shardChannels)
}

// Channels/Patterns/ShardChannels return snapshots of the subscribed
// names (UNSUBSCRIBE/PUNSUBSCRIBE/SUNSUBSCRIBE with no arguments unsubs
// from all of them).
func (s *Session) Channels() []string      { return snapshotKeys(&s.mu, s.channels) }
func (s *Session) Patterns() []string      { return snapshotKeys(&s.mu, s.patterns) }
func (s *Session) ShardChannels() []string { return snapshotKeys(&s.mu, s.shardChannels) }

func snapshotKeys(mu *sync.Mutex, set map[string]struct{}) []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// Registry tracks every currently-connected session so CLIENT LIST and
// INFO's connected_clients can see the whole server, not just the
// caller's own connection. Grounded on the same narrow-mutex-around-a-
// map idiom as Session itself.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry { return &Registry{sessions: make(map[int64]*Session)} }

func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *Registry) Unregister(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// All returns a snapshot of every registered session, ordered by id.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

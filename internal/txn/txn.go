// Package txn implements the MULTI/EXEC/DISCARD/WATCH state machine and
// the server-wide atomicity primitive EXEC relies on (spec.md §4.5).
package txn

import "sync"

// State has three values; together with TxState.Dirty it models the four
// transaction shapes from spec.md §4.5 (Normal, InMulti with a clean
// queue, InMulti with a dirty queue, Aborted). Aborted is reserved: no
// command in this server's surface drives a session into it.
type State int

const (
	Normal State = iota
	InMulti
	Aborted
)

// QueuedCommand is one command parsed and queued while a session is
// inside MULTI. parseErr records a validation failure detected at queue
// time (arity/syntax); per spec.md §4.5 this poisons the whole
// transaction (dirty-queue) without needing to re-validate at EXEC time.
type QueuedCommand struct {
	Name     string
	Args     [][]byte
	ParseErr error
}

// TxState is the per-session transaction sub-state.
type TxState struct {
	State State
	Dirty bool // a queued command had a parse/arity error
	Queue []QueuedCommand
}

// Multi transitions Normal → InMulti. Re-entering MULTI while already in
// one is a command-level error handled by the dispatcher, not here.
func (t *TxState) Multi() { t.State = InMulti; t.Dirty = false; t.Queue = nil }

// Enqueue appends a parsed (or parse-failed) command to the queue.
func (t *TxState) Enqueue(name string, args [][]byte, parseErr error) {
	t.Queue = append(t.Queue, QueuedCommand{Name: name, Args: args, ParseErr: parseErr})
	if parseErr != nil {
		t.Dirty = true
	}
}

// Reset returns to Normal, clearing the queue (used by EXEC and DISCARD).
func (t *TxState) Reset() { t.State = Normal; t.Dirty = false; t.Queue = nil }

// WatchKey identifies a watched key within a specific database.
type WatchKey struct {
	DB  int
	Key string
}

// WatchSet is the versions a session observed at WATCH time, per
// (db, key). A zero version means the key was absent when watched.
type WatchSet struct {
	mu    sync.Mutex
	seen  map[WatchKey]uint64
}

func NewWatchSet() *WatchSet { return &WatchSet{seen: make(map[WatchKey]uint64)} }

// Watch records the version observed for (db, key). Calling Watch again
// for the same key refreshes the observed version (Redis semantics:
// repeated WATCH on the same key before EXEC/UNWATCH just re-arms it).
func (w *WatchSet) Watch(db int, key string, version uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[WatchKey{DB: db, Key: key}] = version
}

// Keys returns a snapshot of all currently-watched (db,key) pairs.
func (w *WatchSet) Keys() []WatchKey {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WatchKey, 0, len(w.seen))
	for k := range w.seen {
		out = append(out, k)
	}
	return out
}

// Observed returns the version recorded for (db, key) and whether it was
// being watched at all.
func (w *WatchSet) Observed(db int, key string) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.seen[WatchKey{DB: db, Key: key}]
	return v, ok
}

// Clear drops all watches (EXEC, DISCARD, UNWATCH, disconnect).
func (w *WatchSet) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = make(map[WatchKey]uint64)
}

// Empty reports whether nothing is being watched.
func (w *WatchSet) Empty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen) == 0
}

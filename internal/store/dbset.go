package store

// DBSet holds the server's fixed set of numbered databases (SELECT 0..N-1,
// spec.md §6 connection commands) as independent Keyspace instances —
// a key in db 3 shares nothing with the same key in db 0.
type DBSet struct {
	dbs []*Keyspace
}

// NewDBSet builds count databases, each with the given shard count,
// wired to the same Notifier (it is told which dbIndex a mutation
// happened in).
func NewDBSet(count, shardsPerDB int, notifier Notifier) *DBSet {
	if count <= 0 {
		count = 16
	}
	ds := &DBSet{dbs: make([]*Keyspace, count)}
	for i := range ds.dbs {
		ds.dbs[i] = NewKeyspace(shardsPerDB, i, notifier)
	}
	return ds
}

// Count returns the number of databases.
func (ds *DBSet) Count() int { return len(ds.dbs) }

// Valid reports whether idx is a selectable database index.
func (ds *DBSet) Valid(idx int) bool { return idx >= 0 && idx < len(ds.dbs) }

// Get returns the keyspace for idx. Panics if idx is out of range;
// callers must check Valid first (SELECT validates before switching).
func (ds *DBSet) Get(idx int) *Keyspace { return ds.dbs[idx] }

// All returns every database's keyspace, in index order (FLUSHALL,
// background scans).
func (ds *DBSet) All() []*Keyspace { return ds.dbs }

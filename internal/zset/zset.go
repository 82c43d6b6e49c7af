// Package zset implements the sorted-set ordering contract from spec.md
// §3/§4.2: members are ordered by (score ASC, member lexicographic ASC),
// with O(log n) rank queries. Per spec.md §9 the choice between a
// skip-list and an ordered-slice implementation is not externally
// observable; this implementation keeps a hash map for O(1) score
// lookup plus a score-ordered slice maintained via binary search, which
// is simpler to make correct than a skip list while still giving
// O(log n) rank/range lookups (insert/delete are O(n) due to slice
// shifting, which is acceptable at the sizes this in-memory server
// targets).
package zset

import "sort"

// Member is one (member, score) pair.
type Member struct {
	Name  string
	Score float64
}

// ZSet is a sorted set ordered by (score ASC, member ASC).
type ZSet struct {
	byMember map[string]float64
	ordered  []Member // kept sorted by (Score, Name)
}

func New() *ZSet {
	return &ZSet{byMember: make(map[string]float64)}
}

func less(a, b Member) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Name < b.Name
}

// search returns the index of the first element >= m in sort order.
func (z *ZSet) search(m Member) int {
	return sort.Search(len(z.ordered), func(i int) bool { return !less(z.ordered[i], m) })
}

// Score returns the member's score and whether it exists.
func (z *ZSet) Score(member string) (float64, bool) {
	s, ok := z.byMember[member]
	return s, ok
}

// Len returns the number of members.
func (z *ZSet) Len() int { return len(z.ordered) }

// Add inserts or updates member with score. Returns true if the member
// was newly added (did not exist before).
func (z *ZSet) Add(member string, score float64) bool {
	if old, ok := z.byMember[member]; ok {
		if old == score {
			return false
		}
		z.removeOrdered(Member{Name: member, Score: old})
		z.insertOrdered(Member{Name: member, Score: score})
		z.byMember[member] = score
		return false
	}
	z.byMember[member] = score
	z.insertOrdered(Member{Name: member, Score: score})
	return true
}

func (z *ZSet) insertOrdered(m Member) {
	idx := z.search(m)
	z.ordered = append(z.ordered, Member{})
	copy(z.ordered[idx+1:], z.ordered[idx:])
	z.ordered[idx] = m
}

func (z *ZSet) removeOrdered(m Member) {
	idx := z.search(m)
	if idx >= len(z.ordered) || z.ordered[idx] != m {
		return
	}
	z.ordered = append(z.ordered[:idx], z.ordered[idx+1:]...)
}

// Remove deletes a member. Returns true if it existed.
func (z *ZSet) Remove(member string) bool {
	score, ok := z.byMember[member]
	if !ok {
		return false
	}
	delete(z.byMember, member)
	z.removeOrdered(Member{Name: member, Score: score})
	return true
}

// Rank returns the zero-based ascending rank of member, or -1 if absent.
func (z *ZSet) Rank(member string) int {
	score, ok := z.byMember[member]
	if !ok {
		return -1
	}
	idx := z.search(Member{Name: member, Score: score})
	if idx < len(z.ordered) && z.ordered[idx].Name == member {
		return idx
	}
	return -1
}

// RangeByIndex returns members at ascending ranks [start, stop] inclusive,
// supporting negative indices counted from the end (Redis semantics).
func (z *ZSet) RangeByIndex(start, stop int) []Member {
	n := len(z.ordered)
	start, stop, ok := normalizeRange(start, stop, n)
	if !ok {
		return nil
	}
	out := make([]Member, stop-start+1)
	copy(out, z.ordered[start:stop+1])
	return out
}

func normalizeRange(start, stop, n int) (int, int, bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

// ScoreRange describes a ZRANGEBYSCORE-style bound.
type ScoreRange struct {
	Min, Max         float64
	MinExcl, MaxExcl bool
}

// RangeByScore returns members with Min <= score <= Max (subject to
// exclusivity flags), ascending.
func (z *ZSet) RangeByScore(r ScoreRange) []Member {
	lo := sort.Search(len(z.ordered), func(i int) bool { return z.ordered[i].Score >= r.Min })
	var out []Member
	for i := lo; i < len(z.ordered); i++ {
		m := z.ordered[i]
		if r.MinExcl && m.Score == r.Min {
			continue
		}
		if m.Score > r.Max || (r.MaxExcl && m.Score == r.Max) {
			break
		}
		out = append(out, m)
	}
	return out
}

// CountByScore counts members within the score range.
func (z *ZSet) CountByScore(r ScoreRange) int {
	return len(z.RangeByScore(r))
}

// LexRange describes a ZRANGEBYLEX-style bound. Unbounded is represented
// by Min=="" && MinNegInf (−), or Max=="" && MaxPosInf (+).
type LexRange struct {
	Min, Max                   string
	MinExcl, MaxExcl           bool
	MinNegInf, MaxPosInf       bool
}

// RangeByLex returns members in lexicographic order within the bound,
// assuming all members share the same score (Redis's documented lex
// usage pattern).
func (z *ZSet) RangeByLex(r LexRange) []Member {
	var out []Member
	for _, m := range z.ordered {
		if !r.MinNegInf {
			if m.Name < r.Min || (r.MinExcl && m.Name == r.Min) {
				continue
			}
		}
		if !r.MaxPosInf {
			if m.Name > r.Max || (r.MaxExcl && m.Name == r.Max) {
				break
			}
		}
		out = append(out, m)
	}
	return out
}

// All returns all members in ascending order (for snapshot iteration).
func (z *ZSet) All() []Member {
	out := make([]Member, len(z.ordered))
	copy(out, z.ordered)
	return out
}

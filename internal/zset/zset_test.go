package zset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/zset"
)

func names(members []zset.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

func Test_Add_NewMemberReturnsTrue(t *testing.T) {
	t.Parallel()

	z := zset.New()
	require.True(t, z.Add("a", 1))
	require.False(t, z.Add("a", 2), "updating an existing member returns false")
	require.Equal(t, 1, z.Len())
}

func Test_Score_ReportsExistence(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 3.5)

	s, ok := z.Score("a")
	require.True(t, ok)
	require.Equal(t, 3.5, s)

	_, ok = z.Score("missing")
	require.False(t, ok)
}

func Test_Remove(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 1)
	require.True(t, z.Remove("a"))
	require.False(t, z.Remove("a"))
	require.Equal(t, 0, z.Len())
}

func Test_OrderingIsByScoreThenMemberName(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("b", 1)
	z.Add("a", 1)
	z.Add("c", 0)

	require.Equal(t, []string{"c", "a", "b"}, names(z.All()))
}

func Test_Rank_ReflectsAscendingPosition(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 10)
	z.Add("b", 20)
	z.Add("c", 30)

	require.Equal(t, 0, z.Rank("a"))
	require.Equal(t, 1, z.Rank("b"))
	require.Equal(t, 2, z.Rank("c"))
	require.Equal(t, -1, z.Rank("missing"))
}

func Test_RangeByIndex_SupportsNegativeIndices(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 1)
	z.Add("b", 2)
	z.Add("c", 3)

	require.Equal(t, []string{"a", "b", "c"}, names(z.RangeByIndex(0, -1)))
	require.Equal(t, []string{"c"}, names(z.RangeByIndex(-1, -1)))
	require.Nil(t, z.RangeByIndex(5, 10))
}

func Test_RangeByScore_RespectsExclusivity(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 1)
	z.Add("b", 2)
	z.Add("c", 3)

	inclusive := z.RangeByScore(zset.ScoreRange{Min: 1, Max: 3})
	require.Equal(t, []string{"a", "b", "c"}, names(inclusive))

	exclusive := z.RangeByScore(zset.ScoreRange{Min: 1, Max: 3, MinExcl: true, MaxExcl: true})
	require.Equal(t, []string{"b"}, names(exclusive))
}

func Test_CountByScore(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 1)
	z.Add("b", 2)
	require.Equal(t, 2, z.CountByScore(zset.ScoreRange{Min: 0, Max: 10}))
}

func Test_RangeByLex_UnboundedAndBounded(t *testing.T) {
	t.Parallel()

	z := zset.New()
	z.Add("a", 0)
	z.Add("b", 0)
	z.Add("c", 0)

	all := z.RangeByLex(zset.LexRange{MinNegInf: true, MaxPosInf: true})
	require.Equal(t, []string{"a", "b", "c"}, names(all))

	bounded := z.RangeByLex(zset.LexRange{Min: "a", MinExcl: true, Max: "c"})
	require.Equal(t, []string{"b", "c"}, names(bounded))
}

package hll_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/hll"
)

func Test_New_StartsSparseAndEmpty(t *testing.T) {
	t.Parallel()

	h := hll.New()
	require.True(t, h.IsSparse())
	require.Equal(t, uint64(0), h.Count())
}

func Test_Add_ChangesRegisterOnFirstInsert(t *testing.T) {
	t.Parallel()

	h := hll.New()
	require.True(t, h.Add([]byte("alpha")))
}

func Test_Count_IsWithinToleranceForKnownCardinality(t *testing.T) {
	t.Parallel()

	h := hll.New()
	const n = 10000
	for i := 0; i < n; i++ {
		h.Add([]byte(fmt.Sprintf("elem-%d", i)))
	}

	got := h.Count()
	// HyperLogLog's standard error at this precision is a few percent;
	// allow a generous 10% band so the test isn't flaky.
	lo := uint64(math.Round(n * 0.9))
	hi := uint64(math.Round(n * 1.1))
	require.GreaterOrEqual(t, got, lo)
	require.LessOrEqual(t, got, hi)
}

func Test_Promotion_ToDenseOccursAtScale(t *testing.T) {
	t.Parallel()

	h := hll.New()
	for i := 0; i < 20000; i++ {
		h.Add([]byte(fmt.Sprintf("promote-%d", i)))
	}
	require.False(t, h.IsSparse(), "enough distinct registers should trigger dense promotion")
}

func Test_Merge_UnionsTwoSketches(t *testing.T) {
	t.Parallel()

	a := hll.New()
	b := hll.New()
	for i := 0; i < 500; i++ {
		a.Add([]byte(fmt.Sprintf("a-%d", i)))
	}
	for i := 0; i < 500; i++ {
		b.Add([]byte(fmt.Sprintf("b-%d", i)))
	}

	changed := a.Merge(b)
	require.True(t, changed)

	got := a.Count()
	lo := uint64(900)
	hi := uint64(1100)
	require.GreaterOrEqual(t, got, lo)
	require.LessOrEqual(t, got, hi)
}

func Test_MarshalDenseThenFromDense_RoundTripsCount(t *testing.T) {
	t.Parallel()

	h := hll.New()
	for i := 0; i < 20000; i++ { // force dense so MarshalDense reflects real registers
		h.Add([]byte(fmt.Sprintf("x-%d", i)))
	}

	raw := h.MarshalDense()
	restored := hll.FromDense(raw)
	require.Equal(t, h.Count(), restored.Count())
}

package numerics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvconnect/numerics"
)

func TestLdRound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{-0.5, 0},
		{-0.51, -1},
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{1e30, math.MaxInt64},
		{-1e30, math.MinInt64},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, numerics.LdRound(tc.in), "LdRound(%v)", tc.in)
	}
	assert.Equal(t, 3.0, numerics.DRound(2.5))
	assert.Equal(t, -2.0, numerics.DTruncate(-2.7))
}

func TestClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, numerics.IsInteger(3))
	assert.True(t, numerics.IsInteger(0))
	assert.True(t, numerics.IsInteger(-1e12))
	assert.True(t, numerics.IsInteger(0.1*30)) // 3.0000000000000004
	assert.False(t, numerics.IsInteger(3.01))
	assert.False(t, numerics.IsInteger(math.Inf(1)))
	assert.False(t, numerics.IsInteger(math.NaN()))

	assert.True(t, numerics.IsNaN(math.NaN()))
	assert.False(t, numerics.IsNaN(1))
	assert.True(t, numerics.IsFinite(-7))
	assert.False(t, numerics.IsFinite(math.Inf(-1)))
	assert.InDelta(t, 1e-10, numerics.Expm1(1e-10), 1e-20)
}

func TestModInverse(t *testing.T) {
	t.Parallel()

	for m := int64(2); m <= 40; m++ {
		for a := int64(-2 * m); a <= 2*m; a++ {
			inv, err := numerics.ModInverse(a, m)
			if numerics.GCD(a, m) != 1 {
				require.ErrorIs(t, err, numerics.ErrNotInvertible, "a=%d m=%d", a, m)
				continue
			}
			require.NoError(t, err)
			require.GreaterOrEqual(t, inv, int64(0))
			require.Less(t, inv, m)
			require.Equal(t, int64(1), numerics.Mod(a*inv, m), "a=%d m=%d inv=%d", a, m, inv)
		}
	}

	_, err := numerics.ModInverse(3, 0)
	require.ErrorIs(t, err, numerics.ErrInvalidModulus)

	inv, err := numerics.ModInverse(5, 1)
	require.NoError(t, err)
	require.Zero(t, inv)
}

func TestFirstIndex_WorkedExample(t *testing.T) {
	t.Parallel()

	// step 1: the vp sequence 1 2 3 0 1 2 3 0 ...
	assert.Equal(t, int64(3), numerics.FirstIndex(4, 1, 1, 0))
	assert.Equal(t, int64(0), numerics.FirstIndex(4, 1, 1, 1))
	assert.Equal(t, int64(1), numerics.FirstIndex(4, 1, 1, 2))
	assert.Equal(t, int64(2), numerics.FirstIndex(4, 1, 1, 3))

	// step 3: phases 1, 0, 3, 2 at traversal indices 0..3
	assert.Equal(t, int64(0), numerics.FirstIndex(4, 1, 3, 1))
	assert.Equal(t, int64(1), numerics.FirstIndex(4, 1, 3, 0))
	assert.Equal(t, int64(2), numerics.FirstIndex(4, 1, 3, 3))
	assert.Equal(t, int64(3), numerics.FirstIndex(4, 1, 3, 2))

	// step 2 never reaches the odd phases from phase0=1 ... only 1 and 3
	assert.Equal(t, numerics.InvalidIndex, numerics.FirstIndex(4, 1, 2, 0))
	assert.Equal(t, numerics.InvalidIndex, numerics.FirstIndex(4, 1, 2, 2))
	assert.Equal(t, int64(1), numerics.FirstIndex(4, 1, 2, 3))
}

// TestFirstIndex_BruteForce compares against a direct scan over one full
// repetition of the pattern, for every argument combination up to period 12.
func TestFirstIndex_BruteForce(t *testing.T) {
	t.Parallel()

	for period := int64(1); period <= 12; period++ {
		for phase0 := int64(0); phase0 < period; phase0++ {
			for step := int64(0); step <= 2*period; step++ {
				for phase := int64(0); phase < period; phase++ {
					want := numerics.InvalidIndex
					for idx := int64(0); idx < period; idx++ {
						if (phase0+idx*step)%period == phase {
							want = idx
							break
						}
					}
					got := numerics.FirstIndex(period, phase0, step, phase)
					require.Equal(t, want, got, "period=%d phase0=%d step=%d phase=%d", period, phase0, step, phase)
				}
			}
		}
	}
}

func TestFirstIndex_OutOfDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, numerics.InvalidIndex, numerics.FirstIndex(0, 0, 1, 0))
	assert.Equal(t, numerics.InvalidIndex, numerics.FirstIndex(4, 0, 1, 4))
	assert.Equal(t, numerics.InvalidIndex, numerics.FirstIndex(4, 0, 1, -1))
	// large operands must not overflow
	big := int64(1) << 61
	idx := numerics.FirstIndex(big+1, 5, big-1, 7)
	require.NotEqual(t, numerics.InvalidIndex, idx)
	require.Equal(t, int64(7), numerics.Mod(5+numerics.MulMod(idx, numerics.Mod(big-1, big+1), big+1), big+1))
}

func TestPeriod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(4), numerics.Period(4, 1))
	assert.Equal(t, int64(2), numerics.Period(4, 2))
	assert.Equal(t, int64(1), numerics.Period(4, 4))
	assert.Equal(t, int64(0), numerics.Period(0, 3))
}

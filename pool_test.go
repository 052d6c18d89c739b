package alns

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The pool is generic over the stored type, so a plain int stands in for an
// operator in these tests.

func TestPoolRegisterAssignsSequentialIndices(t *testing.T) {
	var p pool[int]

	require.Equal(t, 0, p.register(10))
	require.Equal(t, 1, p.register(20))
	require.Equal(t, 2, p.register(30))

	require.Len(t, p.ops, 3)
	require.Len(t, p.scores, 3)
	for i, s := range p.scores {
		assert.Equal(t, initialScore, s, "score %d must start at the initial value", i)
	}
}

func TestPoolRegisterPanicsOnCorruptedInvariant(t *testing.T) {
	var p pool[int]
	p.register(1)
	p.scores = append(p.scores, 0.5) // break scores.len == ops.len

	require.Panics(t, func() { p.register(2) })
}

func TestPoolUpdateScoreFormula(t *testing.T) {
	var p pool[int]
	p.register(0)

	const (
		decay      = 0.9
		multiplier = 10.0
	)

	p.updateScore(0, multiplier, decay)
	require.InDelta(t, 1.0*decay+(1-decay)*multiplier, p.scores[0], 1e-12)
}

func TestPoolUpdateScoreConvergesToMultiplier(t *testing.T) {
	cases := []struct {
		name       string
		decay      float64
		multiplier float64
	}{
		{"toward larger multiplier", 0.9, 10.0},
		{"toward smaller multiplier", 0.5, 0.2},
		{"toward zero", 0.3, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p pool[int]
			p.register(0)

			prev := p.scores[0]
			for i := 0; i < 200; i++ {
				p.updateScore(0, tc.multiplier, tc.decay)
				cur := p.scores[0]

				// Monotone approach: each step must not move away from
				// the multiplier.
				if prev < tc.multiplier {
					require.GreaterOrEqual(t, cur, prev)
				} else {
					require.LessOrEqual(t, cur, prev)
				}
				require.GreaterOrEqual(t, cur, 0.0, "scores must stay non-negative")
				prev = cur
			}
			require.InDelta(t, tc.multiplier, p.scores[0], 1e-6)
		})
	}
}

func TestPoolResetScoresKeepsOperators(t *testing.T) {
	var p pool[int]
	p.register(10)
	p.register(20)

	rng := rand.New(rand.NewSource(1))
	p.updateScore(0, 10, 0.9)
	p.updateScore(1, 0, 0.9)
	_ = p.selectIndex(rng)

	p.resetScores()

	require.Equal(t, []int{10, 20}, p.ops, "registrations must survive a reset")
	require.Equal(t, []float64{initialScore, initialScore}, p.scores)
}

func TestPoolSelectIndexStaysInRange(t *testing.T) {
	var p pool[int]
	for i := 0; i < 5; i++ {
		p.register(i)
	}
	p.updateScore(2, 10, 0.5)
	p.updateScore(4, 0, 0.5)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		id := p.selectIndex(rng)
		require.GreaterOrEqual(t, id, 0)
		require.Less(t, id, 5)
	}
}

package alns

import (
	"fmt"
	"math/rand"
)

// initialScore is the weight assigned to every operator on registration
// and restored by a reset.
const initialScore = 1.0

// pool stores operators of one kind together with their adaptive scores.
// Indices are stable: registration is append-only and operators are never
// removed or reordered.
type pool[T any] struct {
	ops    []T
	scores []float64
}

// register appends an operator with an initial score of 1.0 and returns its
// index. A score/operator count mismatch is a programming error and panics.
func (p *pool[T]) register(op T) int {
	if len(p.ops) != len(p.scores) {
		panic(fmt.Sprintf("alns: operator pool corrupted: %d operators but %d scores", len(p.ops), len(p.scores)))
	}
	p.ops = append(p.ops, op)
	p.scores = append(p.scores, initialScore)
	return len(p.ops) - 1
}

// selectIndex draws an operator index by roulette-wheel selection over the
// current scores. Panics if the pool is empty.
func (p *pool[T]) selectIndex(rng *rand.Rand) int {
	return rouletteWheel(p.scores, rng)
}

// updateScore moves the score at id toward multiplier by an exponential
// moving average with the given decay.
func (p *pool[T]) updateScore(id int, multiplier, decay float64) {
	p.scores[id] = p.scores[id]*decay + (1-decay)*multiplier
}

// resetScores restores every score to its initial value, keeping all
// registered operators.
func (p *pool[T]) resetScores() {
	for i := range p.scores {
		p.scores[i] = initialScore
	}
}

func (p *pool[T]) empty() bool {
	return len(p.ops) == 0
}

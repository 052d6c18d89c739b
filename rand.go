package alns

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// newSeededRand returns a pseudo-random generator seeded from the operating
// system's entropy source, falling back to the wall clock if that source is
// unavailable. Each solver owns exactly one generator; it is never shared.
func newSeededRand() *rand.Rand {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(buf[:]))))
}

// rouletteWheel picks an index in [0, len(weights)) with probability
// proportional to its weight. Weights must be non-negative.
//
// The draw is uniform in [0, sum(weights)); the returned index is the first
// whose cumulative weight reaches the draw. If floating-point rounding lets
// the accumulation fall short of the draw, the last index is returned, which
// keeps the function total for any non-empty, non-negative weight vector.
//
// Selecting from an empty vector is a caller error and panics.
func rouletteWheel(weights []float64, rng *rand.Rand) int {
	if len(weights) == 0 {
		panic("alns: roulette-wheel selection over an empty weight vector")
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	draw := rng.Float64() * total

	var acc float64
	for i, w := range weights {
		acc += w
		if acc >= draw {
			return i
		}
	}
	return len(weights) - 1
}

package tsp

import "math/rand"

// RandomRemoval is a destroy operator that moves up to Count random cities
// from the visiting order into the pending set. The operator owns its random
// generator, independent of the solver's selection generator.
type RandomRemoval struct {
	count int
	rng   *rand.Rand
}

// NewRandomRemoval creates a random-removal operator taking out count cities
// per application.
func NewRandomRemoval(count int, rng *rand.Rand) *RandomRemoval {
	return &RandomRemoval{count: count, rng: rng}
}

// Destroy implements the destroy-operator contract.
func (o *RandomRemoval) Destroy(t *Tour) {
	for i := 0; i < o.count && len(t.order) > 1; i++ {
		t.removeAt(o.rng.Intn(len(t.order)))
	}
}

// WorstRemoval is a destroy operator that repeatedly removes the city whose
// removal saves the most tour length.
type WorstRemoval struct {
	count int
}

// NewWorstRemoval creates a worst-removal operator taking out count cities
// per application.
func NewWorstRemoval(count int) *WorstRemoval {
	return &WorstRemoval{count: count}
}

// Destroy implements the destroy-operator contract.
func (o *WorstRemoval) Destroy(t *Tour) {
	for i := 0; i < o.count && len(t.order) > 1; i++ {
		worst := 0
		gain := t.removalGain(0)
		for pos := 1; pos < len(t.order); pos++ {
			if g := t.removalGain(pos); g > gain {
				worst, gain = pos, g
			}
		}
		t.removeAt(worst)
	}
}

// GreedyInsertion is a repair operator that reinserts every pending city at
// its cheapest position, in pending order.
type GreedyInsertion struct{}

// Repair implements the repair-operator contract.
func (GreedyInsertion) Repair(t *Tour) {
	for _, city := range t.pending {
		if len(t.order) == 0 {
			t.order = append(t.order, city)
			continue
		}
		best := 0
		delta := t.insertionDelta(city, 0)
		for pos := 1; pos < len(t.order); pos++ {
			if d := t.insertionDelta(city, pos); d < delta {
				best, delta = pos, d
			}
		}
		t.insertAt(city, best)
	}
	t.pending = t.pending[:0]
}

// RandomInsertion is a repair operator that reinserts every pending city at
// a uniformly random position.
type RandomInsertion struct {
	rng *rand.Rand
}

// NewRandomInsertion creates a random-insertion operator.
func NewRandomInsertion(rng *rand.Rand) *RandomInsertion {
	return &RandomInsertion{rng: rng}
}

// Repair implements the repair-operator contract.
func (o *RandomInsertion) Repair(t *Tour) {
	for _, city := range t.pending {
		if len(t.order) == 0 {
			t.order = append(t.order, city)
			continue
		}
		t.insertAt(city, o.rng.Intn(len(t.order)+1))
	}
	t.pending = t.pending[:0]
}

// Package tsp provides a Euclidean traveling-salesman problem as the demo
// workload for the ALNS engine: a tour solution type plus destroy and repair
// operators over it. The engine itself stays problem-agnostic; everything
// problem-specific lives here.
package tsp

import (
	"fmt"
	"math"
	"math/rand"
)

// Instance holds the immutable city coordinates of a problem instance.
type Instance struct {
	coords [][2]float64
}

// NewRandomInstance generates n cities uniformly in the unit square, using
// the given seed so that the same (n, seed) pair always reproduces the same
// instance. This is what lets a checkpointed job be resumed later.
func NewRandomInstance(n int, seed int64) (*Instance, error) {
	if n < 3 {
		return nil, fmt.Errorf("instance needs at least 3 cities, got %d", n)
	}

	rng := rand.New(rand.NewSource(seed))
	coords := make([][2]float64, n)
	for i := range coords {
		coords[i] = [2]float64{rng.Float64(), rng.Float64()}
	}
	return &Instance{coords: coords}, nil
}

// Size returns the number of cities.
func (inst *Instance) Size() int {
	return len(inst.coords)
}

// Coord returns the coordinates of city i.
func (inst *Instance) Coord(i int) [2]float64 {
	return inst.coords[i]
}

// Distance returns the Euclidean distance between cities i and j.
func (inst *Instance) Distance(i, j int) float64 {
	return math.Hypot(inst.coords[i][0]-inst.coords[j][0], inst.coords[i][1]-inst.coords[j][1])
}

// Tour is a cyclic visiting order over an instance's cities. It satisfies
// the engine's Solution capability: Cost returns the cycle length and Copy
// returns an independent tour sharing only the immutable instance.
//
// A destroy operator moves cities from the visiting order into the pending
// set; a repair operator reinserts them. Cost is only meaningful for a
// repaired tour (empty pending set), which is the only time the engine
// evaluates it.
type Tour struct {
	inst    *Instance
	order   []int
	pending []int
}

// NewTour returns the identity-order tour over the instance.
func NewTour(inst *Instance) *Tour {
	order := make([]int, inst.Size())
	for i := range order {
		order[i] = i
	}
	return &Tour{inst: inst, order: order}
}

// NewRandomTour returns a uniformly shuffled tour.
func NewRandomTour(inst *Instance, rng *rand.Rand) *Tour {
	t := NewTour(inst)
	rng.Shuffle(len(t.order), func(i, j int) {
		t.order[i], t.order[j] = t.order[j], t.order[i]
	})
	return t
}

// TourFromOrder builds a tour from an explicit visiting order, validating
// that it is a permutation of the instance's cities. Used when restoring a
// tour from a checkpoint.
func TourFromOrder(inst *Instance, order []int) (*Tour, error) {
	if len(order) != inst.Size() {
		return nil, fmt.Errorf("order has %d cities, instance has %d", len(order), inst.Size())
	}
	seen := make([]bool, inst.Size())
	for _, city := range order {
		if city < 0 || city >= inst.Size() {
			return nil, fmt.Errorf("city %d out of range [0, %d)", city, inst.Size())
		}
		if seen[city] {
			return nil, fmt.Errorf("city %d appears twice", city)
		}
		seen[city] = true
	}
	return &Tour{inst: inst, order: append([]int(nil), order...)}, nil
}

// Cost returns the length of the tour cycle over the cities currently in
// the visiting order.
func (t *Tour) Cost() float64 {
	if len(t.order) < 2 {
		return 0
	}
	var total float64
	for i, city := range t.order {
		next := t.order[(i+1)%len(t.order)]
		total += t.inst.Distance(city, next)
	}
	return total
}

// Copy returns an independent copy of the tour. The instance is shared; it
// is immutable.
func (t *Tour) Copy() *Tour {
	return &Tour{
		inst:    t.inst,
		order:   append([]int(nil), t.order...),
		pending: append([]int(nil), t.pending...),
	}
}

// Order returns a copy of the current visiting order.
func (t *Tour) Order() []int {
	return append([]int(nil), t.order...)
}

// Instance returns the instance this tour belongs to.
func (t *Tour) Instance() *Instance {
	return t.inst
}

// removalGain returns the cost saved by removing the city at position pos
// from the visiting order.
func (t *Tour) removalGain(pos int) float64 {
	n := len(t.order)
	prev := t.order[(pos-1+n)%n]
	city := t.order[pos]
	next := t.order[(pos+1)%n]
	return t.inst.Distance(prev, city) + t.inst.Distance(city, next) - t.inst.Distance(prev, next)
}

// removeAt moves the city at position pos from the order to the pending set.
func (t *Tour) removeAt(pos int) {
	t.pending = append(t.pending, t.order[pos])
	t.order = append(t.order[:pos], t.order[pos+1:]...)
}

// insertionDelta returns the cost added by inserting city before position
// pos of the visiting order.
func (t *Tour) insertionDelta(city, pos int) float64 {
	n := len(t.order)
	if n == 0 {
		return 0
	}
	prev := t.order[(pos-1+n)%n]
	next := t.order[pos%n]
	return t.inst.Distance(prev, city) + t.inst.Distance(city, next) - t.inst.Distance(prev, next)
}

// insertAt inserts city before position pos of the visiting order.
func (t *Tour) insertAt(city, pos int) {
	t.order = append(t.order, 0)
	copy(t.order[pos+1:], t.order[pos:])
	t.order[pos] = city
}

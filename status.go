package alns

import "math/rand"

// AlgorithmStatus groups the live state of a search: the three solution
// slots, the operator pools with their scores, the iteration and elapsed-time
// counters, and the solver's private random generator.
//
// The status is handed to acceptance criteria and visitors once per
// iteration. The exported surface marks what those strategies may touch:
// counters and scores are read-only, the solution slots are mutable (a
// visitor may, for example, run local search on the best solution between
// iterations). Operator selection and score bookkeeping stay internal to
// the solver.
type AlgorithmStatus[S Solution[S]] struct {
	params AlgorithmParams
	rng    *rand.Rand

	iteration  int
	elapsedSec float64

	destroy pool[DestroyOperator[S]]
	repair  pool[RepairOperator[S]]

	best      S
	current   S
	candidate S

	// Indices of the operators drawn during the current iteration's
	// selection step, consumed by that iteration's score update.
	lastDestroy int
	lastRepair  int
}

func newAlgorithmStatus[S Solution[S]](params AlgorithmParams, initial S) *AlgorithmStatus[S] {
	return &AlgorithmStatus[S]{
		params:      params,
		rng:         newSeededRand(),
		best:        initial.Copy(),
		current:     initial.Copy(),
		candidate:   initial.Copy(),
		lastDestroy: -1,
		lastRepair:  -1,
	}
}

// Iteration returns the number of completed iterations.
func (st *AlgorithmStatus[S]) Iteration() int {
	return st.iteration
}

// ElapsedSeconds returns the wall-clock seconds since the search started.
// The value is recomputed at the end of every iteration.
func (st *AlgorithmStatus[S]) ElapsedSeconds() float64 {
	return st.elapsedSec
}

// Best returns the best solution found so far. The returned value is live:
// in-place mutation by a visitor is allowed and affects the search.
func (st *AlgorithmStatus[S]) Best() S {
	return st.best
}

// Current returns the current solution of the search.
func (st *AlgorithmStatus[S]) Current() S {
	return st.current
}

// Candidate returns the solution produced by the destroy/repair pair during
// the current iteration. Only valid while an iteration is in flight, i.e.
// inside acceptance criteria and visitors.
func (st *AlgorithmStatus[S]) Candidate() S {
	return st.candidate
}

// SetBest replaces the best solution slot.
func (st *AlgorithmStatus[S]) SetBest(s S) {
	st.best = s
}

// SetCurrent replaces the current solution slot.
func (st *AlgorithmStatus[S]) SetCurrent(s S) {
	st.current = s
}

// DestroyScores returns a copy of the destroy operator scores, indexed by
// registration order.
func (st *AlgorithmStatus[S]) DestroyScores() []float64 {
	return append([]float64(nil), st.destroy.scores...)
}

// RepairScores returns a copy of the repair operator scores, indexed by
// registration order.
func (st *AlgorithmStatus[S]) RepairScores() []float64 {
	return append([]float64(nil), st.repair.scores...)
}

// NumDestroyOperators returns the number of registered destroy operators.
func (st *AlgorithmStatus[S]) NumDestroyOperators() int {
	return len(st.destroy.ops)
}

// NumRepairOperators returns the number of registered repair operators.
func (st *AlgorithmStatus[S]) NumRepairOperators() int {
	return len(st.repair.ops)
}

// selectDestroy draws a destroy operator by roulette wheel and records its
// index for the score update of the same iteration.
func (st *AlgorithmStatus[S]) selectDestroy() DestroyOperator[S] {
	st.lastDestroy = st.destroy.selectIndex(st.rng)
	return st.destroy.ops[st.lastDestroy]
}

// selectRepair draws a repair operator by roulette wheel and records its
// index for the score update of the same iteration.
func (st *AlgorithmStatus[S]) selectRepair() RepairOperator[S] {
	st.lastRepair = st.repair.selectIndex(st.rng)
	return st.repair.ops[st.lastRepair]
}

// updateScores applies the same outcome multiplier to the destroy and the
// repair operator used in the current iteration. The shared attribution is
// deliberate: the framework does not try to decide which of the two
// operators was responsible for the outcome.
func (st *AlgorithmStatus[S]) updateScores(multiplier float64) {
	st.destroy.updateScore(st.lastDestroy, multiplier, st.params.ScoreDecay)
	st.repair.updateScore(st.lastRepair, multiplier, st.params.ScoreDecay)
}

// reset reinitializes counters, solution slots and scores for a fresh run.
// Operator registrations (count and order) are preserved.
func (st *AlgorithmStatus[S]) reset(initial S) {
	st.iteration = 0
	st.elapsedSec = 0
	st.best = initial.Copy()
	st.current = initial.Copy()
	st.candidate = initial.Copy()
	st.destroy.resetScores()
	st.repair.resetScores()
	st.lastDestroy = -1
	st.lastRepair = -1
}

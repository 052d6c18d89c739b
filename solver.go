package alns

import "time"

// Solver drives the adaptive large neighborhood search. Operators must be
// registered before Solve is called; acceptance criterion and visitor are
// optional and default to accept-all and never-stop respectively.
//
// A Solver is single-threaded: one logical thread runs the whole
// select/transform/evaluate/update/observe cycle, and the only suspension
// point visible to callers is the per-iteration visitor call. Cancellation
// is cooperative, via the visitor's return value.
type Solver[S Solution[S]] struct {
	params     AlgorithmParams
	acceptance AcceptanceCriterion[S]
	visitor    AlgorithmVisitor[S]
	status     *AlgorithmStatus[S]
}

// NewSolver creates a solver from the given parameters and initial solution.
// The initial solution seeds the best, current and candidate slots with
// three independent copies. Returns an error if the parameters are invalid.
func NewSolver[S Solution[S]](params AlgorithmParams, initial S) (*Solver[S], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Solver[S]{
		params:     params,
		acceptance: AcceptAll[S](),
		visitor:    NopVisitor[S](),
		status:     newAlgorithmStatus(params, initial),
	}, nil
}

// AddDestroyOperator registers a destroy operator with an initial score of
// 1.0 and returns its stable index.
func (s *Solver[S]) AddDestroyOperator(op DestroyOperator[S]) int {
	return s.status.destroy.register(op)
}

// AddRepairOperator registers a repair operator with an initial score of
// 1.0 and returns its stable index.
func (s *Solver[S]) AddRepairOperator(op RepairOperator[S]) int {
	return s.status.repair.register(op)
}

// SetAcceptanceCriterion replaces the acceptance criterion. Passing nil
// restores the default accept-all criterion.
func (s *Solver[S]) SetAcceptanceCriterion(a AcceptanceCriterion[S]) {
	if a == nil {
		a = AcceptAll[S]()
	}
	s.acceptance = a
}

// SetVisitor replaces the visitor. Passing nil restores the default visitor,
// which never stops the search.
func (s *Solver[S]) SetVisitor(v AlgorithmVisitor[S]) {
	if v == nil {
		v = NopVisitor[S]()
	}
	s.visitor = v
}

// Params returns the current algorithm parameters.
func (s *Solver[S]) Params() AlgorithmParams {
	return s.params
}

// SetParams replaces the algorithm parameters. Returns an error if the new
// parameters are invalid, leaving the previous ones in place.
func (s *Solver[S]) SetParams(params AlgorithmParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.params = params
	s.status.params = params
	return nil
}

// Status returns the live algorithm status. The pointer stays valid across
// Solve and Reset calls.
func (s *Solver[S]) Status() *AlgorithmStatus[S] {
	return s.status
}

// Best returns the best solution found so far.
func (s *Solver[S]) Best() S {
	return s.status.best
}

// Reset reinitializes the search for a fresh run: iteration and elapsed-time
// counters go back to zero, best/current/candidate are re-seeded from
// initial, and every operator score returns to 1.0. Registered operators are
// kept, so a caller can change acceptance criterion or visitor and restart
// without re-registering.
func (s *Solver[S]) Reset(initial S) {
	s.status.reset(initial)
}

// Solve runs the search until the visitor stops it, and returns the best
// solution found. At least one destroy and one repair operator must have
// been registered; solving with an empty pool is a programming error and
// panics.
//
// Each iteration copies the current solution, applies one destroy and one
// repair operator drawn by roulette wheel, consults the acceptance
// criterion, and on acceptance updates the scores of the two operators used:
// with the new-best multiplier if the candidate beat the best solution, the
// new-improving multiplier if it only beat the current one, the new-accepted
// multiplier otherwise. Rejected candidates leave current, best and all
// scores untouched.
func (s *Solver[S]) Solve() S {
	st := s.status
	if st.destroy.empty() || st.repair.empty() {
		panic("alns: Solve requires at least one destroy and one repair operator")
	}

	start := time.Now()

	for {
		destroy := st.selectDestroy()
		repair := st.selectRepair()

		st.candidate = st.current.Copy()
		destroy.Destroy(st.candidate)
		repair.Repair(st.candidate)

		if s.acceptance.Accept(st) {
			switch {
			case st.candidate.Cost() < st.current.Cost() && st.candidate.Cost() < st.best.Cost():
				st.best = st.candidate.Copy()
				st.updateScores(s.params.NewBestMultiplier)
			case st.candidate.Cost() < st.current.Cost():
				st.updateScores(s.params.NewImprovingMultiplier)
			default:
				st.updateScores(s.params.NewAcceptedMultiplier)
			}
			st.current = st.candidate.Copy()
		}

		if !s.visitor.OnIterationEnd(st) {
			return st.best
		}

		st.elapsedSec = time.Since(start).Seconds()
		st.iteration++
	}
}

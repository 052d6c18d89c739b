// Package alns implements the Adaptive Large Neighborhood Search
// metaheuristic framework.
//
// The engine is problem-agnostic: it repeatedly destroys and repairs a
// candidate solution using caller-registered operators, adaptively learning
// which operators are productive through a roulette-wheel selection scheme
// over exponentially-smoothed scores. Acceptance of candidates and
// termination are both pluggable strategies.
//
// A minimal run looks like:
//
//	solver, err := alns.NewSolver(alns.DefaultAlgorithmParams(), initial)
//	if err != nil {
//		// invalid parameters
//	}
//	solver.AddDestroyOperator(myDestroy)
//	solver.AddRepairOperator(myRepair)
//	solver.SetVisitor(alns.VisitorFunc[*MySolution](func(st *alns.AlgorithmStatus[*MySolution]) bool {
//		return st.Iteration() < 10000
//	}))
//	best := solver.Solve()
//
// The engine performs no I/O, spawns no goroutines, and contains no
// problem-specific operators. Errors raised by operators, acceptance
// criteria, or visitors propagate unmodified out of Solve.
package alns

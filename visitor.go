package alns

// AlgorithmVisitor is called once per iteration, after acceptance and score
// bookkeeping are complete, with full access to the algorithm status. It can
// inspect or mutate the solutions, collect statistics, or stop the search by
// returning false. Returning false is the only termination path.
type AlgorithmVisitor[S Solution[S]] interface {
	OnIterationEnd(status *AlgorithmStatus[S]) bool
}

// VisitorFunc adapts a plain function to the AlgorithmVisitor interface.
type VisitorFunc[S Solution[S]] func(*AlgorithmStatus[S]) bool

// OnIterationEnd calls f(status).
func (f VisitorFunc[S]) OnIterationEnd(status *AlgorithmStatus[S]) bool { return f(status) }

// NopVisitor returns the default visitor, which does nothing and never stops
// the search. A solver left with both the default visitor and the default
// acceptance criterion loops forever; that is documented behavior, not a
// defect.
func NopVisitor[S Solution[S]]() AlgorithmVisitor[S] {
	return VisitorFunc[S](func(*AlgorithmStatus[S]) bool { return true })
}

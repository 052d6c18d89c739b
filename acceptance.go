package alns

// AcceptanceCriterion decides whether the candidate solution produced during
// the current iteration should replace the current solution. Accept is
// called once per iteration, with the candidate already assigned into the
// status and best/current still unchanged.
type AcceptanceCriterion[S Solution[S]] interface {
	Accept(status *AlgorithmStatus[S]) bool
}

// AcceptanceFunc adapts a plain function to the AcceptanceCriterion
// interface.
type AcceptanceFunc[S Solution[S]] func(*AlgorithmStatus[S]) bool

// Accept calls f(status).
func (f AcceptanceFunc[S]) Accept(status *AlgorithmStatus[S]) bool { return f(status) }

// AcceptAll returns the default acceptance criterion, which accepts every
// candidate. Combined with the default visitor the search never terminates;
// callers using AcceptAll must stop the loop through their visitor.
func AcceptAll[S Solution[S]]() AcceptanceCriterion[S] {
	return AcceptanceFunc[S](func(*AlgorithmStatus[S]) bool { return true })
}

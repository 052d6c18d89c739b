package alns

import "fmt"

// TerminationCriterion selects which stopping budget the linear
// record-to-record travel criterion measures its progress against.
type TerminationCriterion string

const (
	// TerminateOnIterations measures progress as the iteration count.
	TerminateOnIterations TerminationCriterion = "iterations"

	// TerminateOnTime measures progress as elapsed wall-clock seconds.
	TerminateOnTime TerminationCriterion = "time"
)

// LinearRecordToRecordTravel is the reference acceptance criterion. It
// accepts a candidate whose relative gap to the best solution,
// (candidate - best) / candidate, does not exceed a threshold derived
// linearly from the remaining stopping budget:
//
//	threshold = start + (start - end) * (limit - progress)
//
// where progress is either the iteration count or the elapsed seconds,
// depending on the configured termination criterion. The boundary is
// inclusive: a gap exactly equal to the threshold is accepted.
//
// The gap is undefined for a candidate with non-positive cost; such a
// candidate is always accepted.
//
// Note that the criterion only reads the stopping budget, it does not
// enforce it: terminating the search remains the visitor's job.
type LinearRecordToRecordTravel[S Solution[S]] struct {
	// TerminationCriterion selects the progress measure. Defaults to
	// TerminateOnIterations.
	TerminationCriterion TerminationCriterion

	// IterationsLimit is the stopping budget when terminating on
	// iterations.
	IterationsLimit int

	// TimeLimitSeconds is the stopping budget when terminating on time.
	TimeLimitSeconds float64

	// StartThreshold and EndThreshold bound the acceptance threshold over
	// the life of the search.
	StartThreshold float64
	EndThreshold   float64
}

// NewLinearRecordToRecordTravel returns the criterion with its standard
// parameters: iteration-based termination, a budget of one million
// iterations or one hour, and a threshold going from 0.1 to 0.
func NewLinearRecordToRecordTravel[S Solution[S]]() *LinearRecordToRecordTravel[S] {
	return &LinearRecordToRecordTravel[S]{
		TerminationCriterion: TerminateOnIterations,
		IterationsLimit:      1_000_000,
		TimeLimitSeconds:     3600,
		StartThreshold:       0.1,
		EndThreshold:         0.0,
	}
}

// Validate checks that the criterion's parameters are usable.
func (a *LinearRecordToRecordTravel[S]) Validate() error {
	switch a.TerminationCriterion {
	case TerminateOnIterations, TerminateOnTime:
	default:
		return fmt.Errorf("unknown termination criterion %q", a.TerminationCriterion)
	}
	if a.IterationsLimit <= 0 {
		return fmt.Errorf("iterations limit must be > 0, got %d", a.IterationsLimit)
	}
	if a.TimeLimitSeconds <= 0 {
		return fmt.Errorf("time limit must be > 0, got %g", a.TimeLimitSeconds)
	}
	return nil
}

// Accept implements the AcceptanceCriterion interface.
func (a *LinearRecordToRecordTravel[S]) Accept(status *AlgorithmStatus[S]) bool {
	var threshold float64
	if a.TerminationCriterion == TerminateOnTime {
		threshold = a.StartThreshold + (a.StartThreshold-a.EndThreshold)*(a.TimeLimitSeconds-status.ElapsedSeconds())
	} else {
		threshold = a.StartThreshold + (a.StartThreshold-a.EndThreshold)*float64(a.IterationsLimit-status.Iteration())
	}

	candidateCost := status.Candidate().Cost()
	if candidateCost <= 0 {
		return true
	}

	gap := (candidateCost - status.Best().Cost()) / candidateCost
	return gap <= threshold
}

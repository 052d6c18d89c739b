package alns

import "fmt"

// AlgorithmParams holds the score-adaptation parameters of the search.
// The parameters are read-only configuration: the solver never mutates them.
type AlgorithmParams struct {
	// ScoreDecay controls how fast operator scores change between
	// iterations. Values close to 1 make the score history sticky, values
	// close to 0 make scores track only the most recent outcome.
	// Must lie in the open interval (0, 1).
	ScoreDecay float64

	// NewBestMultiplier is the score multiplier applied to the destroy and
	// repair operators that produced a new overall best solution.
	NewBestMultiplier float64

	// NewImprovingMultiplier is the score multiplier applied when the
	// operators improved on the current solution, but not on the best.
	NewImprovingMultiplier float64

	// NewAcceptedMultiplier is the score multiplier applied when the
	// produced solution was accepted without improving on the current one.
	NewAcceptedMultiplier float64
}

// DefaultAlgorithmParams returns the standard parameter set.
func DefaultAlgorithmParams() AlgorithmParams {
	return AlgorithmParams{
		ScoreDecay:             0.9,
		NewBestMultiplier:      10.0,
		NewImprovingMultiplier: 4.0,
		NewAcceptedMultiplier:  1.5,
	}
}

// Validate checks that the parameters are usable by the solver.
func (p AlgorithmParams) Validate() error {
	if p.ScoreDecay <= 0 || p.ScoreDecay >= 1 {
		return fmt.Errorf("score decay must lie in (0, 1), got %g", p.ScoreDecay)
	}
	if p.NewBestMultiplier < 0 {
		return fmt.Errorf("new-best multiplier must be >= 0, got %g", p.NewBestMultiplier)
	}
	if p.NewImprovingMultiplier < 0 {
		return fmt.Errorf("new-improving multiplier must be >= 0, got %g", p.NewImprovingMultiplier)
	}
	if p.NewAcceptedMultiplier < 0 {
		return fmt.Errorf("new-accepted multiplier must be >= 0, got %g", p.NewAcceptedMultiplier)
	}
	return nil
}

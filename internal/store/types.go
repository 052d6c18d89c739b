package store

import (
	"fmt"
	"time"
)

// JobConfig holds the configuration of a search job. It lives in this
// package rather than in server to avoid an import cycle: checkpoints embed
// the config so a resumed job can rebuild the same instance.
type JobConfig struct {
	// Cities is the size of the randomly generated problem instance.
	Cities int `json:"cities"`

	// Iterations is the search budget.
	Iterations int `json:"iterations"`

	// Seed drives instance generation and the problem operators, so the
	// same (Cities, Seed) pair reproduces the same instance on resume.
	Seed int64 `json:"seed"`

	// DestroyCount is how many cities a destroy operator removes per
	// application (0 = a size-derived default).
	DestroyCount int `json:"destroyCount,omitempty"`

	// ParamsPath optionally points at a JSON parameter file.
	ParamsPath string `json:"paramsPath,omitempty"`

	// CheckpointInterval is the seconds between periodic checkpoints
	// (0 = disabled).
	CheckpointInterval int `json:"checkpointInterval,omitempty"`
}

// Checkpoint is a saved search state that can be resumed later.
//
// Only the best tour and the counters are saved, not the solver's internal
// state (operator scores, generator state). On resume the solver restarts
// with fresh scores, seeded with the checkpointed tour as its initial
// solution: the best cost can never get worse, but the continuation is not
// bit-identical to an uninterrupted run. Saving operator scores would tie
// the checkpoint format to the engine's internals for little benefit, since
// scores re-adapt within a few hundred iterations.
type Checkpoint struct {
	// JobID is the unique identifier of the search job.
	JobID string `json:"jobId"`

	// BestTour is the visiting order of the best solution found so far.
	BestTour []int `json:"bestTour"`

	// BestCost is the tour length achieved by BestTour.
	BestCost float64 `json:"bestCost"`

	// InitialCost is the starting tour length, kept for improvement
	// tracking.
	InitialCost float64 `json:"initialCost"`

	// Iteration is the iteration count when this checkpoint was created.
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed to rebuild the instance
	// and validate compatibility during resume.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the tour
// data. Used for listing checkpoints without loading large tours.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestCost  float64   `json:"bestCost"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Cities    int       `json:"cities"`
	Seed      int64     `json:"seed"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, bestTour []int, bestCost, initialCost float64, iteration int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		BestTour:    bestTour,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Iteration:   iteration,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to its metadata-only form.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestCost:  c.BestCost,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Cities:    c.Config.Cities,
		Seed:      c.Config.Seed,
	}
}

// Validate checks that the checkpoint carries a usable search state.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestTour) == 0 {
		return &ValidationError{Field: "BestTour", Reason: "cannot be empty"}
	}
	if c.Config.Cities <= 0 {
		return &ValidationError{Field: "Config.Cities", Reason: "must be positive"}
	}
	if len(c.BestTour) != c.Config.Cities {
		return &ValidationError{
			Field:  "BestTour",
			Reason: fmt.Sprintf("length mismatch: %d cities in tour, %d in config", len(c.BestTour), c.Config.Cities),
		}
	}
	if c.BestCost < 0 {
		return &ValidationError{Field: "BestCost", Reason: "cannot be negative"}
	}
	if c.InitialCost < 0 {
		return &ValidationError{Field: "InitialCost", Reason: "cannot be negative"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Iterations <= 0 {
		return &ValidationError{Field: "Config.Iterations", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkpoint: %s %s", e.Field, e.Reason)
}

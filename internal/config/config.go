// Package config loads solver parameters from a JSON file. Parameter
// loading is deliberately kept out of the engine package: the engine
// performs no I/O of its own.
//
// The recognized layout is:
//
//	{
//	  "scores": {
//	    "score_decay": 0.9,
//	    "new_best_multiplier": 10.0,
//	    "new_improving_multiplier": 4.0,
//	    "new_accepted_multiplier": 1.5
//	  },
//	  "acceptance": {
//	    "main_termination_criterion": "iterations",
//	    "start_threshold": 0.1,
//	    "end_threshold": 0.0
//	  },
//	  "iterations_limit": 1000000,
//	  "time_limit": 3600
//	}
//
// Every key is optional; missing keys keep their default values. A file
// that cannot be read or parsed is an error.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adaptivesolve/alns"
)

// AcceptanceParams carries the configuration of the linear
// record-to-record-travel acceptance criterion in a non-generic form, so it
// can be loaded once and instantiated for any solution type.
type AcceptanceParams struct {
	TerminationCriterion alns.TerminationCriterion
	IterationsLimit      int
	TimeLimitSeconds     float64
	StartThreshold       float64
	EndThreshold         float64
}

// DefaultAcceptanceParams mirrors the defaults of the engine's reference
// acceptance criterion.
func DefaultAcceptanceParams() AcceptanceParams {
	return AcceptanceParams{
		TerminationCriterion: alns.TerminateOnIterations,
		IterationsLimit:      1_000_000,
		TimeLimitSeconds:     3600,
		StartThreshold:       0.1,
		EndThreshold:         0.0,
	}
}

// NewCriterion instantiates the reference acceptance criterion for a
// concrete solution type from loaded parameters.
func NewCriterion[S alns.Solution[S]](p AcceptanceParams) *alns.LinearRecordToRecordTravel[S] {
	return &alns.LinearRecordToRecordTravel[S]{
		TerminationCriterion: p.TerminationCriterion,
		IterationsLimit:      p.IterationsLimit,
		TimeLimitSeconds:     p.TimeLimitSeconds,
		StartThreshold:       p.StartThreshold,
		EndThreshold:         p.EndThreshold,
	}
}

// fileFormat uses pointer fields so that absent keys are distinguishable
// from zero values and can fall back to defaults.
type fileFormat struct {
	Scores *struct {
		ScoreDecay             *float64 `json:"score_decay"`
		NewBestMultiplier      *float64 `json:"new_best_multiplier"`
		NewImprovingMultiplier *float64 `json:"new_improving_multiplier"`
		NewAcceptedMultiplier  *float64 `json:"new_accepted_multiplier"`
	} `json:"scores"`
	Acceptance *struct {
		MainTerminationCriterion *string  `json:"main_termination_criterion"`
		StartThreshold           *float64 `json:"start_threshold"`
		EndThreshold             *float64 `json:"end_threshold"`
	} `json:"acceptance"`
	IterationsLimit *int     `json:"iterations_limit"`
	TimeLimit       *float64 `json:"time_limit"`
}

// Load reads algorithm and acceptance parameters from the JSON file at
// path, filling in defaults for any missing key.
func Load(path string) (alns.AlgorithmParams, AcceptanceParams, error) {
	params := alns.DefaultAlgorithmParams()
	acceptance := DefaultAcceptanceParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return params, acceptance, fmt.Errorf("failed to read params file: %w", err)
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return params, acceptance, fmt.Errorf("failed to parse params file: %w", err)
	}

	if s := file.Scores; s != nil {
		if s.ScoreDecay != nil {
			params.ScoreDecay = *s.ScoreDecay
		}
		if s.NewBestMultiplier != nil {
			params.NewBestMultiplier = *s.NewBestMultiplier
		}
		if s.NewImprovingMultiplier != nil {
			params.NewImprovingMultiplier = *s.NewImprovingMultiplier
		}
		if s.NewAcceptedMultiplier != nil {
			params.NewAcceptedMultiplier = *s.NewAcceptedMultiplier
		}
	}

	if a := file.Acceptance; a != nil {
		if a.MainTerminationCriterion != nil {
			// An unrecognized criterion keeps the default, matching the
			// permissive treatment of all other keys.
			switch alns.TerminationCriterion(*a.MainTerminationCriterion) {
			case alns.TerminateOnIterations:
				acceptance.TerminationCriterion = alns.TerminateOnIterations
			case alns.TerminateOnTime:
				acceptance.TerminationCriterion = alns.TerminateOnTime
			}
		}
		if a.StartThreshold != nil {
			acceptance.StartThreshold = *a.StartThreshold
		}
		if a.EndThreshold != nil {
			acceptance.EndThreshold = *a.EndThreshold
		}
	}

	if file.IterationsLimit != nil {
		acceptance.IterationsLimit = *file.IterationsLimit
	}
	if file.TimeLimit != nil {
		acceptance.TimeLimitSeconds = *file.TimeLimit
	}

	if err := params.Validate(); err != nil {
		return params, acceptance, fmt.Errorf("invalid score parameters: %w", err)
	}
	return params, acceptance, nil
}

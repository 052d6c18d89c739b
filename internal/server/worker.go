package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/adaptivesolve/alns"
	"github.com/adaptivesolve/alns/internal/config"
	"github.com/adaptivesolve/alns/internal/store"
	"github.com/adaptivesolve/alns/internal/tsp"
)

// runJob executes a search job in the background.
// If checkpointStore is not nil and the job has checkpointInterval > 0,
// periodic checkpoints are saved while the search runs.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	// Get the job
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Update state to running
	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	// Whatever way the job ends, close its subscriber streams. Events
	// broadcast before this are still drained by subscribers.
	defer jm.broadcaster.CleanupJob(jobID)

	slog.Info("Starting job", "job_id", jobID, "cities", job.Config.Cities, "iterations", job.Config.Iterations)

	// Build the instance and the initial tour
	inst, err := tsp.NewRandomInstance(job.Config.Cities, job.Config.Seed)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to build instance: %w", err))
		return err
	}

	rng := rand.New(rand.NewSource(job.Config.Seed))
	initial := tsp.NewRandomTour(inst, rng)
	initialCost := initial.Cost()

	err = jm.UpdateJob(jobID, func(j *Job) {
		j.InitialCost = initialCost
		j.CurrentCost = initialCost
	})
	if err != nil {
		return err
	}

	slog.Info("Built instance", "job_id", jobID, "cities", inst.Size(), "initial_cost", initialCost)

	// Resolve algorithm parameters, from file if configured
	params := alns.DefaultAlgorithmParams()
	acceptParams := config.DefaultAcceptanceParams()
	acceptParams.IterationsLimit = job.Config.Iterations
	if job.Config.ParamsPath != "" {
		params, acceptParams, err = config.Load(job.Config.ParamsPath)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to load parameters: %w", err))
			return err
		}
	}

	solver, err := alns.NewSolver(params, initial)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	solver.AddDestroyOperator(tsp.NewRandomRemoval(job.Config.DestroyCount, rng))
	solver.AddDestroyOperator(tsp.NewWorstRemoval(job.Config.DestroyCount))
	solver.AddRepairOperator(tsp.GreedyInsertion{})
	solver.AddRepairOperator(tsp.NewRandomInsertion(rng))
	solver.SetAcceptanceCriterion(config.NewCriterion[*tsp.Tour](acceptParams))

	// Open the trace if the store exposes a directory layout
	var trace *store.TraceWriter
	if fsStore, ok := checkpointStore.(*store.FSStore); ok {
		trace, err = store.NewTraceWriter(fsStore.BaseDir(), jobID, false)
		if err != nil {
			slog.Warn("Failed to open trace, continuing without", "job_id", jobID, "error", err)
			trace = nil
		} else {
			defer trace.Close()
		}
	}

	// Check for cancellation before starting the search
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// Start progress monitoring goroutine
	start := time.Now()
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	// Start checkpoint monitoring goroutine if enabled
	checkpointing := checkpointStore != nil && job.Config.CheckpointInterval > 0
	checkpointDone := make(chan struct{})
	if checkpointing {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	}

	// Trace roughly a thousand points regardless of budget
	traceStride := job.Config.Iterations / 1000
	if traceStride < 1 {
		traceStride = 1
	}

	limit := job.Config.Iterations
	count := 0
	bestCost := initialCost
	traceFailed := false
	solver.SetVisitor(alns.VisitorFunc[*tsp.Tour](func(st *alns.AlgorithmStatus[*tsp.Tour]) bool {
		count++
		currentBest := st.Best().Cost()
		currentCost := st.Current().Cost()
		improved := currentBest < bestCost
		bestCost = currentBest

		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = count
			j.BestCost = currentBest
			j.CurrentCost = currentCost
			if improved {
				j.BestTour = st.Best().Order()
			}
		})

		if trace != nil && (improved || count%traceStride == 0) {
			err := trace.Write(store.TraceEntry{
				Iteration:   count,
				BestCost:    currentBest,
				CurrentCost: currentCost,
				Timestamp:   time.Now(),
			})
			if err != nil && !traceFailed {
				traceFailed = true
				slog.Warn("Trace write failed, further entries may be lost", "job_id", jobID, "error", err)
			}
		}

		return count < limit && ctx.Err() == nil
	}))

	best := solver.Solve()

	close(progressDone)
	if checkpointing {
		close(checkpointDone)
	}
	elapsed := time.Since(start)

	// Check for cancellation after the search
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// Update job with results
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestTour = best.Order()
		j.BestCost = best.Cost()
		j.Iterations = count
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	// Save a final checkpoint so completed jobs can be inspected later
	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	ips := float64(count) / elapsed.Seconds()

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", initialCost,
		"best_cost", best.Cost(),
		"iterations_per_second", ips,
	)

	// Broadcast final completion event
	if final, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(final, ips))
	}

	return nil
}

// monitorProgress periodically broadcasts progress events during the search
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Get current job state
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()

			var ips float64
			if elapsed > 0 {
				ips = float64(job.Iterations) / elapsed
			}

			jm.broadcaster.Broadcast(progressEvent(job, ips))
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during the search
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a checkpoint for the given job
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	// Get current job state
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Skip if no best tour yet
	if len(job.BestTour) == 0 {
		slog.Debug("Skipping checkpoint, no best tour yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		job.BestTour,
		job.BestCost,
		job.InitialCost,
		job.Iterations,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"iteration", job.Iterations,
		"best_cost", job.BestCost,
	)

	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/adaptivesolve/alns"
	"github.com/adaptivesolve/alns/internal/config"
	"github.com/adaptivesolve/alns/internal/store"
	"github.com/adaptivesolve/alns/internal/tsp"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeIters   int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a search from a checkpoint",
	Long: `Loads a checkpoint, rebuilds the instance from its recorded size and seed,
and continues the search from the saved best tour for another iteration
budget. Operator weights restart from their initial values.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 10000, "Additional iteration budget")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is unusable: %w", err)
	}

	slog.Info("Loaded checkpoint",
		"job_id", jobID,
		"iteration", checkpoint.Iteration,
		"best_cost", checkpoint.BestCost,
		"cities", checkpoint.Config.Cities,
	)

	// The instance is fully determined by its size and seed
	inst, err := tsp.NewRandomInstance(checkpoint.Config.Cities, checkpoint.Config.Seed)
	if err != nil {
		return fmt.Errorf("failed to rebuild instance: %w", err)
	}

	initial, err := tsp.TourFromOrder(inst, checkpoint.BestTour)
	if err != nil {
		return fmt.Errorf("checkpoint tour does not fit the instance: %w", err)
	}

	params := alns.DefaultAlgorithmParams()
	acceptParams := config.DefaultAcceptanceParams()
	acceptParams.IterationsLimit = resumeIters
	if checkpoint.Config.ParamsPath != "" {
		params, acceptParams, err = config.Load(checkpoint.Config.ParamsPath)
		if err != nil {
			return fmt.Errorf("failed to load parameters: %w", err)
		}
	}

	removal := checkpoint.Config.DestroyCount
	if removal <= 0 {
		removal = checkpoint.Config.Cities / 10
		if removal < 1 {
			removal = 1
		}
	}

	// Offset the seed so the resumed run does not replay the same moves
	rng := rand.New(rand.NewSource(checkpoint.Config.Seed + int64(checkpoint.Iteration)))

	solver, err := alns.NewSolver(params, initial)
	if err != nil {
		return err
	}
	solver.AddDestroyOperator(tsp.NewRandomRemoval(removal, rng))
	solver.AddDestroyOperator(tsp.NewWorstRemoval(removal))
	solver.AddRepairOperator(tsp.GreedyInsertion{})
	solver.AddRepairOperator(tsp.NewRandomInsertion(rng))
	solver.SetAcceptanceCriterion(config.NewCriterion[*tsp.Tour](acceptParams))

	trace, err := store.NewTraceWriter(checkpointStore.BaseDir(), jobID, true)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer trace.Close()

	traceStride := resumeIters / 1000
	if traceStride < 1 {
		traceStride = 1
	}

	count := 0
	bestCost := checkpoint.BestCost
	traceFailed := false
	solver.SetVisitor(alns.VisitorFunc[*tsp.Tour](func(st *alns.AlgorithmStatus[*tsp.Tour]) bool {
		count++
		currentBest := st.Best().Cost()
		improved := currentBest < bestCost
		bestCost = currentBest

		if improved || count%traceStride == 0 {
			err := trace.Write(store.TraceEntry{
				Iteration:   checkpoint.Iteration + count,
				BestCost:    currentBest,
				CurrentCost: st.Current().Cost(),
				Timestamp:   time.Now(),
			})
			if err != nil && !traceFailed {
				traceFailed = true
				slog.Warn("Trace write failed, further entries may be lost", "error", err)
			}
		}

		return count < resumeIters
	}))

	start := time.Now()
	best := solver.Solve()
	elapsed := time.Since(start)

	updated := store.NewCheckpoint(
		jobID,
		best.Order(),
		best.Cost(),
		checkpoint.InitialCost,
		checkpoint.Iteration+count,
		checkpoint.Config,
	)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Resume complete",
		"job_id", jobID,
		"elapsed", elapsed,
		"iterations", count,
		"total_iterations", checkpoint.Iteration+count,
		"best_cost", best.Cost(),
	)

	fmt.Printf("Resumed %s for %d iterations (cost: %.4f -> %.4f)\n",
		jobID, count, checkpoint.BestCost, best.Cost())

	return nil
}

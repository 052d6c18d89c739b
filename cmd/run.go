package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/adaptivesolve/alns"
	"github.com/adaptivesolve/alns/internal/config"
	"github.com/adaptivesolve/alns/internal/store"
	"github.com/adaptivesolve/alns/internal/tsp"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cities       int
	iters        int
	seed         int64
	destroyCount int
	paramsPath   string
	outPath      string
	runDataDir   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single-shot search",
	Long: `Generates a random travelling-salesman instance, runs the search for the
given iteration budget, and writes the best tour as JSON.`,
	RunE: runSearch,
}

func init() {
	runCmd.Flags().IntVar(&cities, "cities", 100, "Number of cities in the instance")
	runCmd.Flags().IntVar(&iters, "iters", 10000, "Iteration budget")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the instance and the initial tour")
	runCmd.Flags().IntVar(&destroyCount, "destroy", 0, "Cities removed per destroy step (0 = a tenth of the instance)")
	runCmd.Flags().StringVar(&paramsPath, "params", "", "Algorithm parameters file (JSON)")
	runCmd.Flags().StringVar(&outPath, "out", "tour.json", "Output tour path")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "If set, save a checkpoint and trace under this directory")

	rootCmd.AddCommand(runCmd)
}

// tourResult is the JSON document the run command writes.
type tourResult struct {
	Order       []int        `json:"order"`
	Cost        float64      `json:"cost"`
	InitialCost float64      `json:"initialCost"`
	Iterations  int          `json:"iterations"`
	Seed        int64        `json:"seed"`
	Coords      [][2]float64 `json:"coords"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	slog.Info("Starting search", "cities", cities, "iters", iters, "seed", seed)

	inst, err := tsp.NewRandomInstance(cities, seed)
	if err != nil {
		return fmt.Errorf("failed to build instance: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	initial := tsp.NewRandomTour(inst, rng)
	initialCost := initial.Cost()

	slog.Info("Built instance", "cities", inst.Size(), "initial_cost", initialCost)

	// Resolve algorithm parameters
	params := alns.DefaultAlgorithmParams()
	acceptParams := config.DefaultAcceptanceParams()
	acceptParams.IterationsLimit = iters
	if paramsPath != "" {
		params, acceptParams, err = config.Load(paramsPath)
		if err != nil {
			return fmt.Errorf("failed to load parameters: %w", err)
		}
	}

	removal := destroyCount
	if removal <= 0 {
		removal = cities / 10
		if removal < 1 {
			removal = 1
		}
	}

	solver, err := alns.NewSolver(params, initial)
	if err != nil {
		return err
	}
	solver.AddDestroyOperator(tsp.NewRandomRemoval(removal, rng))
	solver.AddDestroyOperator(tsp.NewWorstRemoval(removal))
	solver.AddRepairOperator(tsp.GreedyInsertion{})
	solver.AddRepairOperator(tsp.NewRandomInsertion(rng))
	solver.SetAcceptanceCriterion(config.NewCriterion[*tsp.Tour](acceptParams))

	// Set up optional persistence
	var (
		checkpointStore *store.FSStore
		trace           *store.TraceWriter
		jobID           string
	)
	if runDataDir != "" {
		checkpointStore, err = store.NewFSStore(runDataDir)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		jobID = uuid.New().String()
		trace, err = store.NewTraceWriter(checkpointStore.BaseDir(), jobID, false)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer trace.Close()
	}

	traceStride := iters / 1000
	if traceStride < 1 {
		traceStride = 1
	}
	progressStride := iters / 10
	if progressStride < 1 {
		progressStride = 1
	}

	count := 0
	bestCost := initialCost
	traceFailed := false
	solver.SetVisitor(alns.VisitorFunc[*tsp.Tour](func(st *alns.AlgorithmStatus[*tsp.Tour]) bool {
		count++
		currentBest := st.Best().Cost()
		improved := currentBest < bestCost
		bestCost = currentBest

		if count%progressStride == 0 {
			slog.Info("Progress", "iteration", count, "best_cost", currentBest, "current_cost", st.Current().Cost())
		}
		if trace != nil && (improved || count%traceStride == 0) {
			err := trace.Write(store.TraceEntry{
				Iteration:   count,
				BestCost:    currentBest,
				CurrentCost: st.Current().Cost(),
				Timestamp:   time.Now(),
			})
			if err != nil && !traceFailed {
				traceFailed = true
				slog.Warn("Trace write failed, further entries may be lost", "error", err)
			}
		}

		return count < iters
	}))

	start := time.Now()
	best := solver.Solve()
	elapsed := time.Since(start)

	// Save checkpoint if persistence is enabled
	if checkpointStore != nil {
		checkpoint := store.NewCheckpoint(jobID, best.Order(), best.Cost(), initialCost, count, store.JobConfig{
			Cities:       cities,
			Iterations:   iters,
			Seed:         seed,
			DestroyCount: removal,
			ParamsPath:   paramsPath,
		})
		if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
		slog.Info("Checkpoint saved", "job_id", jobID, "dir", checkpointStore.JobDir(jobID))
	}

	// Write the result document
	coords := make([][2]float64, inst.Size())
	for i := 0; i < inst.Size(); i++ {
		coords[i] = inst.Coord(i)
	}
	result := tourResult{
		Order:       best.Order(),
		Cost:        best.Cost(),
		InitialCost: initialCost,
		Iterations:  count,
		Seed:        seed,
		Coords:      coords,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	ips := float64(count) / elapsed.Seconds()

	slog.Info("Search complete",
		"elapsed", elapsed,
		"initial_cost", initialCost,
		"final_cost", best.Cost(),
		"improvement", initialCost-best.Cost(),
		"iterations_per_second", fmt.Sprintf("%.0f", ips),
	)

	fmt.Printf("Wrote %s (cost: %.4f -> %.4f, %.0f iterations/sec)\n", outPath, initialCost, best.Cost(), ips)

	return nil
}

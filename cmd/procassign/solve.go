package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	"github.com/viant/afs"

	"procAssign/internal/anneal"
	"procAssign/internal/bench"
	"procAssign/internal/config"
	"procAssign/internal/descent"
	"procAssign/internal/loader"
	"procAssign/internal/metrics"
	"procAssign/internal/opt"
	"procAssign/internal/procassign"
	"procAssign/internal/report"
	"procAssign/internal/tabu"
)

var (
	solveCmd = app.Command("solve", "улучшить начальное назначение локальным поиском")

	solveInstance = solveCmd.Arg("instance", "URL файла экземпляра").Required().String()
	solveInitial  = solveCmd.Arg("assignment", "URL файла начального назначения").Required().String()

	solveAlgo = solveCmd.Flag("algo", "алгоритм: descent | anneal | tabu").
			Default(bench.Descent).
			Enum(bench.Names...)
	solveMaxSweeps   = solveCmd.Flag("max-sweeps", "предел проходов спуска (descent.max_sweeps)").Int()
	solveMaxMoves    = solveCmd.Flag("max-moves", "предел применённых перемещений (descent.max_moves)").Int()
	solveMaxDuration = solveCmd.Flag("max-duration", "предел времени поиска (descent.max_duration)").Duration()
	solveWorkers     = solveCmd.Flag("workers", "горутины оценки кандидатов (descent.workers)").Int()
	solveBest        = solveCmd.Flag("best", "URL лучшего назначения; {run} - идентификатор запуска (output.best)").String()
	solveResult      = solveCmd.Flag("result", "URL итогового назначения").String()
	solveVerbose     = solveCmd.Flag("verbose", "печатать назначение при каждом улучшении (output.verbose)").Bool()
)

func runSolve(ctx context.Context, cfg *config.Config) error {
	if *solveMaxSweeps != 0 {
		cfg.Descent.MaxSweeps = *solveMaxSweeps
	}
	if *solveMaxMoves != 0 {
		cfg.Descent.MaxMoves = *solveMaxMoves
	}
	if *solveMaxDuration != 0 {
		cfg.Descent.MaxDuration = *solveMaxDuration
	}
	if *solveWorkers != 0 {
		cfg.Descent.Workers = *solveWorkers
	}
	if *solveBest != "" {
		cfg.Output.Best = *solveBest
	}
	if *solveVerbose {
		cfg.Output.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scope, closeAll := initObservability(cfg)
	defer closeAll()

	store := loader.NewStore(afs.New())
	inst, err := store.LoadInstance(ctx, *solveInstance)
	if err != nil {
		return err
	}
	initial, err := store.LoadAssignment(ctx, *solveInitial, inst)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"processes": inst.NumProcesses(),
		"machines":  inst.NumMachines(),
		"services":  inst.NumServices(),
		"resources": inst.Resources,
	}).Info("Instance loaded")

	reporter := newReporter(cfg, store, scope)
	solver, err := newSolver(*solveAlgo, cfg, reporter, scope)
	if err != nil {
		return err
	}

	res, err := solver.Solve(ctx, initial)
	if errors.Is(err, procassign.ErrInfeasibleAssignment) {
		printViolations(err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.WithFields(log.Fields{
		"run_id":       res.RunID,
		"initial_cost": res.InitialCost,
		"cost":         res.Cost,
		"moves":        res.Moves,
		"improvements": res.Improvements,
		"stopped":      res.Stopped,
		"duration":     res.Duration.Round(time.Millisecond),
	}).Info("Search finished")

	if *solveResult != "" {
		if err := store.SaveAssignment(ctx, *solveResult, res.Assignment); err != nil {
			return err
		}
	}
	fmt.Printf("cost %d (initial %d)\n", res.Cost, res.InitialCost)
	return loader.DumpAssignment(os.Stdout, res.Assignment)
}

func newReporter(cfg *config.Config, store *loader.Store, scope tally.Scope) opt.Reporter {
	reporters := report.Multi{
		&report.LogReporter{Logger: log.StandardLogger(), Verbose: cfg.Output.Verbose},
		report.NewMetricsReporter(scope),
	}
	if cfg.Output.Best != "" {
		reporters = append(reporters, &report.FileReporter{Store: store, URL: cfg.Output.Best})
	}
	return reporters
}

func newSolver(algo string, cfg *config.Config, reporter opt.Reporter, scope tally.Scope) (opt.Optimizer, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	logger := log.StandardLogger()
	search := metrics.NewSearch(scope.Tagged(map[string]string{"algo": algo}))

	switch algo {
	case bench.Anneal:
		s, err := anneal.New(cfg.Anneal, rng,
			anneal.WithReporter(reporter),
			anneal.WithLogger(logger),
			anneal.WithMetrics(search),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	case bench.Tabu:
		s, err := tabu.New(cfg.Tabu, rng,
			tabu.WithReporter(reporter),
			tabu.WithLogger(logger),
			tabu.WithMetrics(search),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := descent.New(cfg.Descent, rng,
		descent.WithReporter(reporter),
		descent.WithLogger(logger),
		descent.WithMetrics(search),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

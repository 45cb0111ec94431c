package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/viant/afs"

	"procAssign/internal/anneal"
	"procAssign/internal/bench"
	"procAssign/internal/config"
	"procAssign/internal/descent"
	"procAssign/internal/metrics"
	"procAssign/internal/tabu"
)

var (
	benchCmd = app.Command("bench", "сравнить алгоритмы на сгенерированных экземплярах")

	benchCases = benchCmd.Flag("cases", "конфигурации: процессы x машины (через запятую) (bench.cases)").String()
	benchAlgos = benchCmd.Flag("algos", "список алгоритмов: descent, anneal, tabu (через запятую) (bench.algorithms)").String()
	benchRuns  = benchCmd.Flag("runs", "количество запусков каждого алгоритма (bench.runs)").Int()
	benchOut   = benchCmd.Flag("out", "URL выходного CSV-файла (bench.out)").String()
	benchQuiet = benchCmd.Flag("quiet", "не выводить журнал солверов").Default("true").Bool()
)

func runBench(ctx context.Context, cfg *config.Config) error {
	if *benchCases != "" {
		cfg.Bench.Cases = *benchCases
	}
	if *benchAlgos != "" {
		cfg.Bench.Algorithms = bench.SplitCSV(*benchAlgos)
	}
	if *benchRuns != 0 {
		cfg.Bench.Runs = *benchRuns
	}
	if *benchOut != "" {
		cfg.Bench.Out = *benchOut
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scope, closeAll := initObservability(cfg)
	defer closeAll()

	cases, err := bench.ParseCases(cfg.Bench.Cases, cfg.Bench.InstanceSeed)
	if err != nil {
		return err
	}

	// Журнал солверов отдельно от журнала команды
	solverLog := log.New()
	solverLog.SetLevel(log.GetLevel())
	if *benchQuiet {
		solverLog.Out = io.Discard
	}

	search := func(algo string) *metrics.Search {
		return metrics.NewSearch(scope.Tagged(map[string]string{"algo": algo}))
	}
	opts := bench.Options{
		Descent: []descent.Option{descent.WithLogger(solverLog), descent.WithMetrics(search(bench.Descent))},
		Anneal:  []anneal.Option{anneal.WithLogger(solverLog), anneal.WithMetrics(search(bench.Anneal))},
		Tabu:    []tabu.Option{tabu.WithLogger(solverLog), tabu.WithMetrics(search(bench.Tabu))},
	}
	algorithms := bench.Algorithms(cfg.Bench.Algorithms, cfg.Descent, cfg.Anneal, cfg.Tabu, opts)

	runner := bench.Runner{
		Runs:          cfg.Bench.Runs,
		BaseSeed:      cfg.Bench.Seed,
		PerRunTimeout: cfg.Bench.PerRunTimeout,
		Generator: bench.Generator{
			Resources:           cfg.Bench.Resources,
			Locations:           cfg.Bench.Locations,
			ProcessesPerService: cfg.Bench.ProcessesPerService,
			MaxRequirement:      cfg.Bench.MaxRequirement,
		},
		Logger: log.StandardLogger(),
	}
	caseTimer := scope.Timer("bench_case_duration")

	var records []bench.Record
	for _, c := range cases {
		for _, a := range algorithms {
			fmt.Printf("Запущен алгоритм %s; %d процессов %d машин (общее кол-во запусков=%d)...\n", a.Name, c.Processes, c.Machines, runner.Runs)

			sw := caseTimer.Start()
			rec, err := runner.RunCase(ctx, c, a)
			sw.Stop()
			if err != nil {
				return err
			}
			records = append(records, rec)

			fmt.Printf("  Стоимость: начальная=%d лучшая=%d средняя=%.2f медиана=%.2f стандартное отклонение=%.2f | Время: среднее=%.2fms стандартное отклонение=%.2fms\n",
				rec.InitialCost, rec.CostBest, rec.CostMean, rec.CostMedian, rec.CostStd,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(ctx, afs.New(), cfg.Bench.Out, records); err != nil {
		return err
	}
	fmt.Println("Saved:", cfg.Bench.Out)
	return nil
}

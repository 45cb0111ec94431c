package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"procAssign/internal/opt"
	"procAssign/internal/procassign"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

type Case struct {
	Processes    int
	Machines     int
	InstanceSeed int64
}

type Record struct {
	Algo      string
	Processes int
	Machines  int
	Runs      int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	InitialCost int
	CostBest    int
	CostMean    float64
	CostMedian  float64
	CostStd     float64

	MovesMean        float64
	ImprovementsMean float64
}

// Generator задаёт параметры случайных экземпляров, общие для всех конфигураций.
type Generator struct {
	Resources           int
	Locations           int
	ProcessesPerService int
	MaxRequirement      int
}

func (g Generator) Spec(c Case) procassign.RandomSpec {
	perService := g.ProcessesPerService
	if perService <= 0 || perService > c.Machines {
		perService = c.Machines
	}
	return procassign.RandomSpec{
		Resources:      g.Resources,
		Machines:       c.Machines,
		Locations:      g.Locations,
		Services:       (c.Processes + perService - 1) / perService,
		Processes:      c.Processes,
		MaxRequirement: g.MaxRequirement,
	}
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	Generator     Generator
	Logger        log.FieldLogger
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	instRng := randForSeed(c.InstanceSeed)
	inst, initial := procassign.RandomInstance(r.Generator.Spec(c), instRng)

	costs := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	moves := make([]int, 0, r.Runs)
	improvements := make([]int, 0, r.Runs)
	initialCost := procassign.GlobalCost(initial, initial)

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, initial)
		dur := time.Since(start)
		cancel()

		// Таймаут запуска не ошибка: результат - лучшее найденное к этому моменту
		if err != nil && !(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		best, err := procassign.NewAssignment(inst, res.Assignment)
		if err != nil {
			return Record{}, fmt.Errorf("run %d: invalid assignment: %w", i, err)
		}
		if err := procassign.CheckAssignment(best); err != nil {
			return Record{}, fmt.Errorf("run %d: infeasible assignment: %w", i, err)
		}
		if cost := procassign.GlobalCost(best, initial); cost != res.Cost {
			return Record{}, fmt.Errorf("run %d: reported cost %d, recomputed %d", i, res.Cost, cost)
		}

		costs = append(costs, res.Cost)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		moves = append(moves, res.Moves)
		improvements = append(improvements, res.Improvements)

		if r.Logger != nil {
			r.Logger.WithFields(log.Fields{
				"algo":    algo.Name,
				"run":     i,
				"seed":    runSeed,
				"cost":    res.Cost,
				"stopped": res.Stopped,
			}).Debug("Запуск завершён")
		}
	}

	costStats := SummarizeInts(costs)
	tStats := Summarize(timesMs)

	return Record{
		Algo:      algo.Name,
		Processes: c.Processes,
		Machines:  c.Machines,
		Runs:      r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		InitialCost: initialCost,
		CostBest:    int(costStats.Best),
		CostMean:    costStats.Mean,
		CostMedian:  costStats.Median,
		CostStd:     costStats.Std,

		MovesMean:        SummarizeInts(moves).Mean,
		ImprovementsMean: SummarizeInts(improvements).Mean,
	}, nil
}

var csvHeader = []string{
	"algo", "processes", "machines", "runs",
	"time_best_ms", "time_mean_ms", "time_std_ms",
	"initial_cost", "cost_best", "cost_mean", "cost_median", "cost_std",
	"moves_mean", "improvements_mean",
}

func EncodeCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Processes),
			itoa(r.Machines),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			itoa(r.InitialCost),
			itoa(r.CostBest),
			ftoa(r.CostMean),
			ftoa(r.CostMedian),
			ftoa(r.CostStd),

			ftoa(r.MovesMean),
			ftoa(r.ImprovementsMean),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV сохраняет записи по URL; каталоги создаются хранилищем.
func WriteCSV(ctx context.Context, fs afs.Service, URL string, records []Record) error {
	data, err := EncodeCSV(records)
	if err != nil {
		return err
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to write %s", URL)
	}
	return nil
}

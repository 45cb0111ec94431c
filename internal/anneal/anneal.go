package anneal

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"

	"procAssign/internal/metrics"
	"procAssign/internal/opt"
	"procAssign/internal/procassign"
)

// Solver - структура реализации алгоритма имитации отжига
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	reporter opt.Reporter
	logger   log.FieldLogger
	metrics  *metrics.Search
}

type Option func(*Solver)

func WithReporter(r opt.Reporter) Option {
	return func(s *Solver) { s.reporter = r }
}

func WithLogger(l log.FieldLogger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithMetrics(m *metrics.Search) Option {
	return func(s *Solver) { s.metrics = m }
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	s := &Solver{
		Cfg:     cfg,
		Rng:     rng,
		logger:  log.StandardLogger(),
		metrics: metrics.NewSearch(tally.NoopScope),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Solve - реализация эвристики. Соседнее решение - перемещение случайного
// процесса на случайную машину; недопустимые соседи пропускаются.
func (s *Solver) Solve(ctx context.Context, initial *procassign.Assignment) (opt.Result, error) {
	start := time.Now()

	if initial == nil {
		return opt.Result{}, fmt.Errorf("начальное назначение не задано (nil)")
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	if err := procassign.CheckAssignment(initial); err != nil {
		return opt.Result{}, err
	}

	inst := initial.Instance()
	n := inst.NumProcesses()

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerProcess * n
	}

	// Точная модель: сумма приращений совпадает с глобальной стоимостью
	cm := procassign.ExactCostModel()

	baseline := initial.Clone()
	curr := initial.Clone()
	best := initial.Clone()

	currCost := procassign.GlobalCost(curr, baseline)
	initialCost := currCost
	bestCost := currCost

	id := uuid.NewString()
	logger := s.logger.WithField("run_id", id)
	s.metrics.Runs.Inc(1)

	evals, moves, improvements := 0, 0, 0
	T := s.Cfg.InitialTemp
	stopped := opt.StopMaxIterations

	result := func(iter int, err error) (opt.Result, error) {
		return opt.Result{
			RunID:        id,
			Assignment:   best.Machines(),
			Cost:         bestCost,
			InitialCost:  initialCost,
			Evaluations:  evals,
			Iterations:   iter,
			Moves:        moves,
			Improvements: improvements,
			Duration:     time.Since(start),
			Stopped:      stopped,
			Meta: map[string]any{
				"initial_temp": s.Cfg.InitialTemp,
				"final_temp":   s.Cfg.FinalTemp,
				"alpha":        s.Cfg.Alpha,
				"T":            T,
			},
		}, err
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		if T <= s.Cfg.FinalTemp {
			stopped = opt.StopCooled
			break
		}
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			stopped = opt.StopContext
			return result(iter, err)
		}

		p := s.Rng.Intn(n)
		m := s.Rng.Intn(inst.NumMachines())
		if m != curr.Machine(p) && procassign.Feasible(curr, p, m) {
			delta := cm.MoveCost(curr, baseline, p, m)
			evals++

			accept := delta <= 0
			if !accept {
				// Критерий Метрополиса:
				// допускает принятие ухудшающих решений
				accept = s.Rng.Float64() < math.Exp(-float64(delta)/T)
			}
			if accept {
				curr.Move(p, m)
				currCost += delta
				moves++
				s.metrics.Moves.Inc(1)

				// Обновление глобально лучшего решения
				if currCost < bestCost {
					bestCost = currCost
					best.CopyFrom(curr)
					improvements++
					s.metrics.Improvements.Inc(1)
					s.metrics.BestCost.Update(float64(bestCost))
					s.report(ctx, logger, opt.Improvement{
						RunID:      id,
						Iteration:  iter,
						Cost:       bestCost,
						Assignment: best.Machines(),
					})
				}
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha
	}

	s.metrics.Evaluations.Inc(int64(evals))
	logger.WithFields(log.Fields{
		"cost":    bestCost,
		"moves":   moves,
		"stopped": stopped,
	}).Info("Отжиг завершён")
	return result(iter, nil)
}

func (s *Solver) report(ctx context.Context, logger log.FieldLogger, imp opt.Improvement) {
	logger.WithField("cost", imp.Cost).Debug("Новый минимум")
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(ctx, imp); err != nil {
		s.metrics.ReportFailures.Inc(1)
		logger.WithError(err).Warn("Не удалось передать новый минимум")
	}
}

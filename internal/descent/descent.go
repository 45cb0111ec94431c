package descent

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"procAssign/internal/metrics"
	"procAssign/internal/opt"
	"procAssign/internal/procassign"
	"procAssign/internal/tracing"
)

// Solver - наискорейший спуск с рандомизированными перезапусками.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	reporter opt.Reporter
	logger   log.FieldLogger
	metrics  *metrics.Search
	tracer   trace.Tracer
}

type Option func(*Solver)

// WithReporter задаёт получателя новых лучших назначений.
func WithReporter(r opt.Reporter) Option {
	return func(s *Solver) { s.reporter = r }
}

func WithLogger(l log.FieldLogger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithMetrics(m *metrics.Search) Option {
	return func(s *Solver) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Solver) { s.tracer = t }
}

// New возвращает новый солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
		tracer:  tracing.Tracer(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// run - состояние одного запуска поиска.
type run struct {
	id       string
	start    time.Time
	logger   log.FieldLogger
	curr     *procassign.Assignment
	baseline *procassign.Assignment
	best     *procassign.Assignment

	// order - процессы по возрастанию стоимости перемещения (при равенстве по индексу).
	order []int

	initialCost  int
	bestCost     int
	delta        int
	sweeps       int
	moves        int
	evals        int
	improvements int
	stale        int
}

type candidate struct {
	machine int
	cost    int
}

// Solve - основной цикл: проход спуска, затем возмущение, и так до исчерпания ограничений.
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
	// Поиск стартует только из допустимого состояния
	if err := procassign.CheckAssignment(initial); err != nil {
		return opt.Result{}, err
	}

	r := s.newRun(initial, start)

	ctx, span := s.tracer.Start(ctx, "descent.Solve")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", r.id),
		attribute.Int("initial_cost", r.initialCost),
	)

	s.metrics.Runs.Inc(1)
	s.metrics.BestCost.Update(float64(r.bestCost))
	r.logger.WithField("cost", r.initialCost).Info("Поиск запущен")

	var err error
	stopped := ""
	for stopped == "" {
		if stopped = s.exhausted(r); stopped != "" {
			break
		}
		applied := r.moves
		if err = s.sweep(ctx, r); err != nil {
			stopped = opt.StopContext
			break
		}
		if stopped = s.exhausted(r); stopped != "" {
			break
		}
		if err = s.perturb(ctx, r); err != nil {
			stopped = opt.StopContext
			break
		}
		// Ни спуск, ни возмущение не сдвинули ни одного процесса
		if r.moves == applied {
			stopped = opt.StopStale
		}
	}

	span.SetAttributes(attribute.Int("best_cost", r.bestCost), attribute.String("stopped", stopped))
	r.logger.WithFields(log.Fields{
		"cost":    r.bestCost,
		"sweeps":  r.sweeps,
		"moves":   r.moves,
		"stopped": stopped,
	}).Info("Поиск завершён")

	return opt.Result{
		RunID:        r.id,
		Assignment:   r.best.Machines(),
		Cost:         r.bestCost,
		InitialCost:  r.initialCost,
		Evaluations:  r.evals,
		Iterations:   r.sweeps,
		Moves:        r.moves,
		Improvements: r.improvements,
		Duration:     time.Since(start),
		Stopped:      stopped,
		Meta: map[string]any{
			"accumulated_delta":   r.delta,
			"stale_sweeps":        r.stale,
			"perturbation_factor": s.Cfg.PerturbationFactor,
			"workers":             s.Cfg.Workers,
			"moving_cost":         string(s.Cfg.Cost.Moving),
			"load":                string(s.Cfg.Cost.Load),
		},
	}, err
}

func (s *Solver) newRun(initial *procassign.Assignment, start time.Time) *run {
	inst := initial.Instance()
	r := &run{
		id:       uuid.NewString(),
		start:    start,
		curr:     initial.Clone(),
		baseline: initial.Clone(),
		best:     initial.Clone(),
		order:    make([]int, inst.NumProcesses()),
	}
	for p := range r.order {
		r.order[p] = p
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		return inst.Processes[r.order[i]].MovingCost < inst.Processes[r.order[j]].MovingCost
	})
	r.initialCost = procassign.GlobalCost(r.curr, r.baseline)
	r.bestCost = r.initialCost
	r.logger = s.logger.WithFields(log.Fields{
		"run_id":    r.id,
		"processes": inst.NumProcesses(),
		"machines":  inst.NumMachines(),
	})
	return r
}

// exhausted возвращает причину остановки или пустую строку.
func (s *Solver) exhausted(r *run) string {
	switch {
	case s.Cfg.MaxSweeps > 0 && r.sweeps >= s.Cfg.MaxSweeps:
		return opt.StopMaxIterations
	case s.Cfg.MaxMoves > 0 && r.moves >= s.Cfg.MaxMoves:
		return opt.StopMaxMoves
	case s.Cfg.MaxDuration > 0 && time.Since(r.start) >= s.Cfg.MaxDuration:
		return opt.StopMaxDuration
	case s.Cfg.MaxStaleSweeps > 0 && r.stale >= s.Cfg.MaxStaleSweeps:
		return opt.StopStale
	}
	return ""
}

// sweep - один проход спуска. Каждый процесс выбирается не более одного раза
// (блок-лист), порядок - по возрастанию стоимости перемещения.
func (s *Solver) sweep(ctx context.Context, r *run) error {
	ctx, span := s.tracer.Start(ctx, "descent.sweep")
	defer span.End()
	sw := s.metrics.SweepDuration.Start()
	defer sw.Stop()

	r.sweeps++
	s.metrics.Sweeps.Inc(1)

	improved := false
	applied := 0
	for _, p := range r.order {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Cfg.MaxMoves > 0 && r.moves >= s.Cfg.MaxMoves {
			break
		}
		if s.Cfg.MaxDuration > 0 && time.Since(r.start) >= s.Cfg.MaxDuration {
			break
		}

		c, evals := s.bestCandidate(r, p)
		r.evals += evals
		s.metrics.Evaluations.Inc(int64(evals))
		if c.machine < 0 {
			// Локальный минимум по выбранному процессу
			if s.Cfg.StopOnEmptyCandidate {
				break
			}
			continue
		}

		r.curr.Move(p, c.machine)
		r.moves++
		r.delta += c.cost
		applied++
		s.metrics.Moves.Inc(1)

		if s.improve(ctx, r) {
			improved = true
		}
	}

	if improved {
		r.stale = 0
	} else {
		r.stale++
	}
	span.SetAttributes(
		attribute.Int("sweep", r.sweeps),
		attribute.Int("applied", applied),
		attribute.Int("best_cost", r.bestCost),
	)
	r.logger.WithFields(log.Fields{
		"sweep":     r.sweeps,
		"applied":   applied,
		"best_cost": r.bestCost,
	}).Debug("Проход завершён")
	return nil
}

// improve сверяет текущую глобальную стоимость с лучшей и при улучшении
// запоминает назначение и уведомляет получателя.
func (s *Solver) improve(ctx context.Context, r *run) bool {
	cost := procassign.GlobalCost(r.curr, r.baseline)
	if cost >= r.bestCost {
		return false
	}
	r.bestCost = cost
	r.best.CopyFrom(r.curr)
	r.improvements++
	s.metrics.Improvements.Inc(1)
	s.metrics.BestCost.Update(float64(cost))
	r.logger.WithFields(log.Fields{
		"cost":  cost,
		"sweep": r.sweeps,
	}).Debug("Новый минимум")

	if s.reporter == nil {
		return true
	}
	imp := opt.Improvement{
		RunID:      r.id,
		Iteration:  r.sweeps,
		Cost:       cost,
		Assignment: r.best.Machines(),
	}
	if err := s.reporter.Report(ctx, imp); err != nil {
		s.metrics.ReportFailures.Inc(1)
		r.logger.WithError(err).Warn("Не удалось передать новый минимум")
	}
	return true
}

// bestCandidate перебирает все машины для процесса p и возвращает ход с
// наименьшей отрицательной стоимостью (при равенстве - машину с меньшим индексом).
func (s *Solver) bestCandidate(r *run, p int) (candidate, int) {
	machines := r.curr.Instance().NumMachines()
	if s.Cfg.Workers <= 1 || machines < 2 {
		return s.scan(r, p, 0, machines)
	}
	return s.scanParallel(r, p, machines)
}

func (s *Solver) scan(r *run, p, from, to int) (candidate, int) {
	best := candidate{machine: -1}
	evals := 0
	current := r.curr.Machine(p)
	for m := from; m < to; m++ {
		if m == current || !procassign.Feasible(r.curr, p, m) {
			continue
		}
		cost := s.Cfg.Cost.MoveCost(r.curr, r.baseline, p, m)
		evals++
		if cost < 0 && (best.machine < 0 || cost < best.cost) {
			best = candidate{machine: m, cost: cost}
		}
	}
	return best, evals
}

func (s *Solver) perturb(ctx context.Context, r *run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	quota := s.Cfg.PerturbationFactor * r.curr.Instance().NumProcesses()
	if s.Cfg.MaxMoves > 0 && quota > s.Cfg.MaxMoves-r.moves {
		quota = s.Cfg.MaxMoves - r.moves
	}
	if quota <= 0 {
		return nil
	}
	pt, err := Perturb(ctx, s.Rng, r.curr, r.baseline, s.Cfg.Cost, quota, quota*s.Cfg.PerturbationAttempts)
	r.moves += len(pt.Moves)
	r.delta += pt.Delta
	s.metrics.PerturbationMoves.Inc(int64(len(pt.Moves)))
	r.logger.WithFields(log.Fields{
		"moves":    len(pt.Moves),
		"attempts": pt.Attempts,
		"delta":    pt.Delta,
	}).Debug("Возмущение применено")
	return err
}

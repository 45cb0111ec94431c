package tabu

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

// Solver - табу-поиск по перемещениям процессов.
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

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

type move struct {
	process int
	from    int
	to      int
	cost    int
}

// Solve - основной цикл алгоритма
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
	machines := inst.NumMachines()

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerProcess * n
	}

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

	// Табу-список - кольцевой буфер с мапой
	// Ёмкость выбирается с запасом относительно длины табу
	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	evals, moves, improvements := 0, 0, 0
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
				"tabu_tenure":        s.Cfg.TabuTenure,
				"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
				"neighbors_per_iter": s.Cfg.NeighborsPerIter,
			},
		}, err
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			stopped = opt.StopContext
			return result(iter, err)
		}

		// Лучший допустимый ход и запасной (лучший без учёта табу),
		// используется если все допустимые ходы табуированы
		chosen := move{process: -1, cost: math.MaxInt}
		fallback := move{process: -1, cost: math.MaxInt}

		// Итерация по случайно сгенерированным соседям
		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			p := s.Rng.Intn(n)
			to := s.Rng.Intn(machines)
			from := curr.Machine(p)
			if to == from || !procassign.Feasible(curr, p, to) {
				continue
			}
			cost := cm.MoveCost(curr, baseline, p, to)
			evals++

			if cost < fallback.cost {
				fallback = move{process: p, from: from, to: to, cost: cost}
			}

			// Табуированный ход пропускается,
			// если не выполняется критерий аспирации
			if tabu.IsTabu(moveKey(p, to), iter) && currCost+cost >= bestCost {
				continue
			}
			if cost < chosen.cost {
				chosen = move{process: p, from: from, to: to, cost: cost}
			}
		}
		if chosen.process < 0 {
			chosen = fallback
		}

		// Нет допустимых ходов - завершаем поиск
		if chosen.process < 0 {
			stopped = opt.StopStale
			break
		}

		curr.Move(chosen.process, chosen.to)
		currCost += chosen.cost
		moves++
		s.metrics.Moves.Inc(1)

		// Возврат процесса на прежнюю машину запрещён на срок табу
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosen.process, chosen.from), iter+tenure)

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

	s.metrics.Evaluations.Inc(int64(evals))
	logger.WithFields(log.Fields{
		"cost":    bestCost,
		"moves":   moves,
		"stopped": stopped,
	}).Info("Табу-поиск завершён")
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

// tabuList - структура табу-списка.
// Реализована как кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64       // кольцевой буфер ключей
	exp []int          // соответствующие сроки истечения
	i   int            // текущая позиция в кольце
	n   int            // заполненность кольца
}

func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

// IsTabu проверяет, является ли ход табуированным на текущей итерации.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add добавляет новый табу-ход с указанием итерации истечения.
func (t *tabuList) Add(k uint64, expiry int) {
	// Вытеснение старейшего элемента кольца
	if t.n == len(t.key) {
		oldK, oldExp := t.key[t.i], t.exp[t.i]
		if curExp, ok := t.m[oldK]; ok && curExp == oldExp {
			delete(t.m, oldK)
		}
	} else {
		t.n++
	}

	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry

	t.i++
	if t.i >= len(t.key) {
		t.i = 0
	}
}

// moveKey - ключ "процесс на машину".
func moveKey(process, machine int) uint64 {
	return uint64(uint32(process))<<32 | uint64(uint32(machine))
}

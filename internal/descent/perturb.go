package descent

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"procAssign/internal/procassign"
)

// Move - применённое перемещение процесса.
type Move struct {
	Process int
	From    int
	To      int
	Cost    int
}

type Perturbation struct {
	Moves    []Move
	Delta    int
	Attempts int
}

// Perturb применяет quota случайных допустимых перемещений к назначению a:
// процесс и машина выбираются равномерно, перемещение применяется только если
// оно допустимо и меняет машину. Стоимость хода считается до его применения.
// Не более maxAttempts выборок. Отмена ctx проверяется перед каждой выборкой;
// уже применённые перемещения возвращаются вместе с ошибкой.
func Perturb(ctx context.Context, rng *rand.Rand, a, baseline *procassign.Assignment, cm procassign.CostModel, quota, maxAttempts int) (Perturbation, error) {
	inst := a.Instance()
	var out Perturbation
	for len(out.Moves) < quota && out.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Attempts++
		p := rng.Intn(inst.NumProcesses())
		m := rng.Intn(inst.NumMachines())
		from := a.Machine(p)
		if m == from || !procassign.Feasible(a, p, m) {
			continue
		}
		cost := cm.MoveCost(a, baseline, p, m)
		a.Move(p, m)
		out.Moves = append(out.Moves, Move{Process: p, From: from, To: m, Cost: cost})
		out.Delta += cost
	}
	return out, nil
}

// scanParallel делит машины между горутинами. Назначение на время оценки
// только читается; выбор лучшего кандидата совпадает с последовательным.
func (s *Solver) scanParallel(r *run, p, machines int) (candidate, int) {
	workers := s.Cfg.Workers
	if workers > machines {
		workers = machines
	}
	chunk := (machines + workers - 1) / workers
	found := make([]candidate, workers)
	evals := make([]int, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		from := w * chunk
		to := min(from+chunk, machines)
		g.Go(func() error {
			found[w], evals[w] = s.scan(r, p, from, to)
			return nil
		})
	}
	_ = g.Wait()

	best := candidate{machine: -1}
	total := 0
	for w := range found {
		total += evals[w]
		c := found[w]
		if c.machine >= 0 && (best.machine < 0 || c.cost < best.cost) {
			best = c
		}
	}
	return best, total
}

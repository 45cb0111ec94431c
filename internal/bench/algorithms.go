package bench

import (
	"math/rand"

	"procAssign/internal/anneal"
	"procAssign/internal/descent"
	"procAssign/internal/opt"
	"procAssign/internal/tabu"
)

const (
	Descent = "descent"
	Anneal  = "anneal"
	Tabu    = "tabu"
)

// Names - все доступные алгоритмы.
var Names = []string{Descent, Anneal, Tabu}

// Options - зависимости солверов (журнал, метрики, получатель улучшений).
type Options struct {
	Descent []descent.Option
	Anneal  []anneal.Option
	Tabu    []tabu.Option
}

// Фабрики. Конфигурации проверяются до запуска, поэтому ошибка New здесь -
// ошибка программы.

func NewDescentFactory(cfg descent.Config, opts ...descent.Option) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, err := descent.New(cfg, rand.New(rand.NewSource(seed)), opts...)
		if err != nil {
			panic(err)
		}
		return solver
	}
}

func NewAnnealFactory(cfg anneal.Config, opts ...anneal.Option) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, err := anneal.New(cfg, rand.New(rand.NewSource(seed)), opts...)
		if err != nil {
			panic(err)
		}
		return solver
	}
}

func NewTabuFactory(cfg tabu.Config, opts ...tabu.Option) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, err := tabu.New(cfg, rand.New(rand.NewSource(seed)), opts...)
		if err != nil {
			panic(err)
		}
		return solver
	}
}

// Algorithms возвращает выбранные алгоритмы в заданном порядке.
func Algorithms(names []string, descentCfg descent.Config, annealCfg anneal.Config, tabuCfg tabu.Config, opts Options) []Algorithm {
	out := make([]Algorithm, 0, len(names))
	for _, name := range names {
		switch name {
		case Descent:
			out = append(out, Algorithm{Name: Descent, Factory: NewDescentFactory(descentCfg, opts.Descent...)})
		case Anneal:
			out = append(out, Algorithm{Name: Anneal, Factory: NewAnnealFactory(annealCfg, opts.Anneal...)})
		case Tabu:
			out = append(out, Algorithm{Name: Tabu, Factory: NewTabuFactory(tabuCfg, opts.Tabu...)})
		}
	}
	return out
}

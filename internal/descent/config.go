package descent

import (
	"fmt"
	"time"

	"procAssign/internal/procassign"
)

type Config struct {
	// Ограничения поиска: срабатывает первое достигнутое.
	// Нулевое значение отключает ограничение.
	MaxSweeps      int           `yaml:"max_sweeps"`
	MaxMoves       int           `yaml:"max_moves"`
	MaxDuration    time.Duration `yaml:"max_duration"`
	MaxStaleSweeps int           `yaml:"max_stale_sweeps"`

	// Количество случайных перемещений после прохода = PerturbationFactor × число процессов.
	PerturbationFactor int `yaml:"perturbation_factor"`
	// Предел попыток на одно случайное перемещение.
	PerturbationAttempts int `yaml:"perturbation_attempts"`

	// Завершать проход, если у выбранного процесса нет улучшающего хода.
	StopOnEmptyCandidate bool `yaml:"stop_on_empty_candidate"`

	// Число горутин для оценки машин-кандидатов (1 - последовательно).
	Workers int `yaml:"workers"`

	Cost procassign.CostModel `yaml:"cost"`
}

func DefaultConfig() Config {
	return Config{
		MaxSweeps:      0,
		MaxMoves:       0,
		MaxDuration:    0,
		MaxStaleSweeps: 50,

		PerturbationFactor:   2,
		PerturbationAttempts: 100,

		StopOnEmptyCandidate: true,
		Workers:              1,

		Cost: procassign.DefaultCostModel(),
	}
}

func (c Config) Validate() error {
	if c.MaxSweeps <= 0 && c.MaxMoves <= 0 && c.MaxDuration <= 0 && c.MaxStaleSweeps <= 0 {
		return fmt.Errorf(
			"должно быть задано хотя бы одно ограничение: MaxSweeps, MaxMoves, MaxDuration или MaxStaleSweeps",
		)
	}
	if c.MaxSweeps < 0 || c.MaxMoves < 0 || c.MaxDuration < 0 || c.MaxStaleSweeps < 0 {
		return fmt.Errorf("ограничения поиска должны быть >= 0")
	}
	if c.PerturbationFactor < 0 {
		return fmt.Errorf(
			"PerturbationFactor должно быть >= 0 (получено %d)",
			c.PerturbationFactor,
		)
	}
	if c.PerturbationAttempts <= 0 {
		return fmt.Errorf(
			"PerturbationAttempts должно быть > 0 (получено %d)",
			c.PerturbationAttempts,
		)
	}
	if c.Workers <= 0 {
		return fmt.Errorf(
			"Workers должно быть > 0 (получено %d)",
			c.Workers,
		)
	}
	if err := c.Cost.Validate(); err != nil {
		return fmt.Errorf("модель стоимости: %w", err)
	}
	return nil
}

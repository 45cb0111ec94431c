package bench

import (
	"fmt"
	"slices"
	"time"
)

type Config struct {
	// Cases - конфигурации "процессы x машины" через запятую.
	Cases      string   `yaml:"cases" validate:"nonzero"`
	Algorithms []string `yaml:"algorithms" validate:"min=1"`
	Runs       int      `yaml:"runs" validate:"min=1"`

	Seed         int64 `yaml:"seed"`
	InstanceSeed int64 `yaml:"instance_seed"`
	// 0 - без ограничения
	PerRunTimeout time.Duration `yaml:"per_run_timeout"`

	// Параметры генерации экземпляров
	Resources           int `yaml:"resources" validate:"min=1,max=10"`
	Locations           int `yaml:"locations" validate:"min=1"`
	ProcessesPerService int `yaml:"processes_per_service" validate:"min=1"`
	MaxRequirement      int `yaml:"max_requirement" validate:"min=1"`

	// Out - URL выходного CSV-файла (file://, mem://, ...)
	Out string `yaml:"out" validate:"nonzero"`
}

func DefaultConfig() Config {
	return Config{
		Cases:      "40x10,200x30,600x60",
		Algorithms: []string{Descent, Anneal, Tabu},
		Runs:       10,

		Seed:         1000,
		InstanceSeed: 777,

		Resources:           2,
		Locations:           5,
		ProcessesPerService: 3,
		MaxRequirement:      20,

		Out: "artifacts/results.csv",
	}
}

func (c Config) Validate() error {
	if _, err := ParseCases(c.Cases, c.InstanceSeed); err != nil {
		return err
	}
	if c.Runs <= 0 {
		return fmt.Errorf("Runs должно быть > 0 (получено %d)", c.Runs)
	}
	if c.PerRunTimeout < 0 {
		return fmt.Errorf("PerRunTimeout должно быть >= 0 (получено %s)", c.PerRunTimeout)
	}
	for _, a := range c.Algorithms {
		if !slices.Contains(Names, a) {
			return fmt.Errorf("алгоритм %q не предоставлен в программе; доступные: %v", a, Names)
		}
	}
	return nil
}

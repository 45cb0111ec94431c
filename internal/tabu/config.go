package tabu

import "fmt"

type Config struct {
	Iterations           int `yaml:"iterations"`
	IterationsPerProcess int `yaml:"iterations_per_process"`

	// Срок запрета обратного хода: TabuTenure + случайное [0..TabuTenureRand]
	TabuTenure     int `yaml:"tabu_tenure"`
	TabuTenureRand int `yaml:"tabu_tenure_rand"`

	NeighborsPerIter int `yaml:"neighbors_per_iter"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:           0,
		IterationsPerProcess: 20,

		TabuTenure:     7,
		TabuTenureRand: 3,

		NeighborsPerIter: 60,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerProcess <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerProcess > 0",
		)
	}
	if c.TabuTenure <= 0 {
		return fmt.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return fmt.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.NeighborsPerIter <= 0 {
		return fmt.Errorf(
			"NeighborsPerIter должно быть > 0 (получено %d)",
			c.NeighborsPerIter,
		)
	}
	return nil
}

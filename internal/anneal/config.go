package anneal

import "fmt"

type Config struct {
	Iterations           int `yaml:"iterations"`
	IterationsPerProcess int `yaml:"iterations_per_process"`

	InitialTemp float64 `yaml:"initial_temp"`
	FinalTemp   float64 `yaml:"final_temp"`
	Alpha       float64 `yaml:"alpha"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:           0,
		IterationsPerProcess: 500,

		InitialTemp: 50.0,
		FinalTemp:   0.05,
		Alpha:       0.999,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerProcess <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerProcess > 0",
		)
	}
	if c.InitialTemp <= 0 {
		return fmt.Errorf(
			"InitialTemp должно быть > 0 (получено %f)",
			c.InitialTemp,
		)
	}
	if c.FinalTemp <= 0 {
		return fmt.Errorf(
			"FinalTemp должно быть > 0 (получено %f)",
			c.FinalTemp,
		)
	}
	if c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf(
			"FinalTemp должно быть < InitialTemp (получено %f >= %f)",
			c.FinalTemp,
			c.InitialTemp,
		)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf(
			"alpha должно лежать в интервале (0,1) (получено %f)",
			c.Alpha,
		)
	}
	return nil
}

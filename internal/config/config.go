// Package config загружает YAML-конфигурацию: файлы читаются по порядку и
// накладываются на значения по умолчанию.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"

	"procAssign/internal/anneal"
	"procAssign/internal/bench"
	"procAssign/internal/descent"
	"procAssign/internal/metrics"
	"procAssign/internal/tabu"
	"procAssign/internal/tracing"
)

type Config struct {
	Seed    int64          `yaml:"seed"`
	Descent descent.Config `yaml:"descent"`
	Anneal  anneal.Config  `yaml:"anneal"`
	Tabu    tabu.Config    `yaml:"tabu"`
	Metrics metrics.Config `yaml:"metrics"`
	Tracing tracing.Config `yaml:"tracing"`
	Output  OutputConfig   `yaml:"output"`
	Bench   bench.Config   `yaml:"bench"`
}

type OutputConfig struct {
	// Best - URL, куда после каждого улучшения записывается лучшее назначение;
	// "{run}" заменяется идентификатором запуска. Пусто - не записывать.
	Best string `yaml:"best"`
	// Verbose - выводить назначение целиком в журнал.
	Verbose bool `yaml:"verbose"`
}

func Default() Config {
	return Config{
		Seed:    1,
		Descent: descent.DefaultConfig(),
		Anneal:  anneal.DefaultConfig(),
		Tabu:    tabu.DefaultConfig(),
		Metrics: metrics.Config{
			Prometheus: &metrics.PrometheusConfig{Listen: ":9090"},
		},
		Bench: bench.DefaultConfig(),
	}
}

// ValidationError - ошибка проверки тегов validate.
type ValidationError struct {
	errorMap validator.ErrorMap
}

// ErrForField возвращает ошибку проверки указанного поля.
func (e ValidationError) ErrForField(name string) error {
	return e.errorMap[name]
}

func (e ValidationError) Error() string {
	var w bytes.Buffer
	fields := make([]string, 0, len(e.errorMap))
	for f := range e.errorMap {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	fmt.Fprintf(&w, "validation failed\n")
	for _, f := range fields {
		fmt.Fprintf(&w, "   %s: %v\n", f, e.errorMap[f])
	}
	return w.String()
}

// Parse накладывает файлы configFiles по порядку на cfg и проверяет результат.
func Parse(cfg *Config, configFiles ...string) error {
	for _, fname := range configFiles {
		data, err := os.ReadFile(fname)
		if err != nil {
			return err
		}
		if err := Decode(cfg, data); err != nil {
			return errors.Wrap(err, fname)
		}
	}
	return cfg.Validate()
}

// Decode накладывает один YAML-документ на cfg без проверки.
func Decode(cfg *Config, data []byte) error {
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate проверяет теги validate, затем каждую секцию.
func (c *Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		if m, ok := err.(validator.ErrorMap); ok {
			return ValidationError{errorMap: m}
		}
		return err
	}
	if err := c.Descent.Validate(); err != nil {
		return errors.Wrap(err, "descent")
	}
	if err := c.Anneal.Validate(); err != nil {
		return errors.Wrap(err, "anneal")
	}
	if err := c.Tabu.Validate(); err != nil {
		return errors.Wrap(err, "tabu")
	}
	if err := c.Bench.Validate(); err != nil {
		return errors.Wrap(err, "bench")
	}
	if p := c.Metrics.Prometheus; p != nil && p.Enable && p.Listen == "" {
		return fmt.Errorf("metrics.prometheus.listen не задан")
	}
	return nil
}

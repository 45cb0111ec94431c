package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	"gopkg.in/alecthomas/kingpin.v2"

	"procAssign/internal/config"
	"procAssign/internal/metrics"
	"procAssign/internal/tracing"
)

var (
	version string
	app     = kingpin.New("procassign", "Назначение процессов на машины: локальный поиск")

	debug = app.Flag(
		"debug", "подробный журнал").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	jsonLog = app.Flag(
		"json-log", "журнал в формате JSON").
		Default("false").
		Envar("JSON_LOG").
		Bool()

	cfgFiles = app.Flag(
		"config",
		"YAML-файлы конфигурации (можно указать несколько, накладываются по порядку)").
		Short('c').
		ExistingFiles()

	seed = app.Flag(
		"seed", "сид генератора случайных чисел (переопределяет seed)").
		Int64()
)

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *jsonLog {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch command {
	case solveCmd.FullCommand():
		err = runSolve(ctx, &cfg)
	case checkCmd.FullCommand():
		err = runCheck(ctx)
	case dumpCmd.FullCommand():
		err = runDump(ctx)
	case benchCmd.FullCommand():
		err = runBench(ctx, &cfg)
	}
	if err != nil {
		log.WithError(err).Fatal(command + " failed")
	}
}

func loadConfig() config.Config {
	cfg := config.Default()
	if len(*cfgFiles) > 0 {
		log.WithField("files", *cfgFiles).Debug("Loading config")
	}
	if err := config.Parse(&cfg, *cfgFiles...); err != nil {
		log.WithError(err).Fatal("Cannot parse yaml config")
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	return cfg
}

// initObservability поднимает метрики и трассировку; возвращаемая функция
// освобождает ресурсы.
func initObservability(cfg *config.Config) (tally.Scope, func()) {
	shutdown, err := tracing.Init(cfg.Tracing, app.Name, version)
	if err != nil {
		log.WithError(err).Fatal("Cannot init tracing")
	}
	scope, closer, mux := metrics.InitScope(&cfg.Metrics, app.Name, metrics.FlushInterval)

	var srv *http.Server
	if mux != nil {
		srv = &http.Server{Addr: cfg.Metrics.Prometheus.Listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	return scope, func() {
		if srv != nil {
			_ = srv.Close()
		}
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("Cannot close metrics scope")
		}
		if err := shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("Cannot shut down tracing")
		}
	}
}

package metrics

import (
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
)

// FlushInterval is the reporting interval of the root scope.
const FlushInterval = time.Second

type Config struct {
	Prometheus *PrometheusConfig `yaml:"prometheus"`
}

type PrometheusConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

// InitScope creates the root scope. When prometheus is enabled the returned
// mux serves /metrics; otherwise metrics go nowhere and the mux is nil.
func InitScope(cfg *Config, root string, interval time.Duration) (tally.Scope, io.Closer, *http.ServeMux) {
	if cfg == nil || cfg.Prometheus == nil || !cfg.Prometheus.Enable {
		log.Debug("No metrics backend configured, using a noop scope")
		scope, closer := tally.NewRootScope(tally.ScopeOptions{
			Prefix:   root,
			Reporter: tally.NullStatsReporter,
		}, interval)
		return scope, closer, nil
	}

	// tally panics if a prometheus name contains "-"
	root = strings.Replace(root, "-", "_", -1)
	reporter := promreporter.NewReporter(promreporter.Options{})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         root,
		CachedReporter: reporter,
		Separator:      promreporter.DefaultSeparator,
	}, interval)

	mux := http.NewServeMux()
	mux.Handle("/metrics", reporter.HTTPHandler())
	log.WithField("listen", cfg.Prometheus.Listen).Info("Prometheus metrics handler at /metrics")
	return scope, closer, mux
}

// Search holds the counters of one optimizer kind.
type Search struct {
	Runs              tally.Counter
	Sweeps            tally.Counter
	Moves             tally.Counter
	PerturbationMoves tally.Counter
	Evaluations       tally.Counter
	Improvements      tally.Counter
	ReportFailures    tally.Counter
	BestCost          tally.Gauge
	SweepDuration     tally.Timer
}

func NewSearch(scope tally.Scope) *Search {
	moveScope := scope.SubScope("move")
	return &Search{
		Runs:              scope.Counter("runs"),
		Sweeps:            scope.Counter("sweeps"),
		Moves:             moveScope.Tagged(map[string]string{"mode": "descent"}).Counter("applied"),
		PerturbationMoves: moveScope.Tagged(map[string]string{"mode": "perturbation"}).Counter("applied"),
		Evaluations:       moveScope.Counter("evaluations"),
		Improvements:      scope.Counter("improvements"),
		ReportFailures:    scope.Counter("report_failures"),
		BestCost:          scope.Gauge("best_cost"),
		SweepDuration:     scope.Timer("sweep_duration"),
	}
}

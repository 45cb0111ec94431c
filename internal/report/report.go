// Package report holds opt.Reporter implementations that receive every new
// best assignment found by a solver.
package report

import (
	"context"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	"go.uber.org/multierr"

	"procAssign/internal/loader"
	"procAssign/internal/opt"
)

// LogReporter logs each improvement.
type LogReporter struct {
	Logger log.FieldLogger
	// Verbose adds the full assignment to the log entry.
	Verbose bool
}

func (r *LogReporter) Report(_ context.Context, imp opt.Improvement) error {
	entry := r.Logger.WithFields(log.Fields{
		"run_id":    imp.RunID,
		"iteration": imp.Iteration,
		"cost":      imp.Cost,
	})
	if r.Verbose {
		entry = entry.WithField("assignment", string(loader.FormatAssignment(imp.Assignment)))
	}
	entry.Info("New best assignment")
	return nil
}

// FileReporter overwrites URL with the latest best assignment in the single
// line format. A "{run}" placeholder in URL is replaced by the run id.
type FileReporter struct {
	Store *loader.Store
	URL   string
}

func (r *FileReporter) Report(ctx context.Context, imp opt.Improvement) error {
	return r.Store.SaveAssignment(ctx, r.Target(imp.RunID), imp.Assignment)
}

func (r *FileReporter) Target(runID string) string {
	return strings.ReplaceAll(r.URL, "{run}", runID)
}

// MetricsReporter counts improvements and tracks the last reported cost.
type MetricsReporter struct {
	improvements tally.Counter
	cost         tally.Gauge
}

func NewMetricsReporter(scope tally.Scope) *MetricsReporter {
	s := scope.SubScope("reporter")
	return &MetricsReporter{
		improvements: s.Counter("improvements"),
		cost:         s.Gauge("cost"),
	}
}

func (r *MetricsReporter) Report(_ context.Context, imp opt.Improvement) error {
	r.improvements.Inc(1)
	r.cost.Update(float64(imp.Cost))
	return nil
}

// Multi forwards to every reporter, even after a failure, and returns the
// combined error.
type Multi []opt.Reporter

func (m Multi) Report(ctx context.Context, imp opt.Improvement) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.Report(ctx, imp))
	}
	return err
}

// Recorder keeps every improvement in memory.
type Recorder struct {
	mu   sync.Mutex
	imps []opt.Improvement
}

func (r *Recorder) Report(_ context.Context, imp opt.Improvement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	imp.Assignment = append([]int(nil), imp.Assignment...)
	r.imps = append(r.imps, imp)
	return nil
}

func (r *Recorder) Improvements() []opt.Improvement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]opt.Improvement(nil), r.imps...)
}

// Last returns the most recent improvement.
func (r *Recorder) Last() (opt.Improvement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.imps) == 0 {
		return opt.Improvement{}, false
	}
	return r.imps[len(r.imps)-1], true
}

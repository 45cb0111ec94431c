package opt

import (
	"context"
	"time"

	"procAssign/internal/procassign"
)

type Optimizer interface {
	Solve(ctx context.Context, initial *procassign.Assignment) (Result, error)
}

type Result struct {
	RunID string
	// Assignment is the best process to machine mapping found.
	Assignment   []int
	Cost         int
	InitialCost  int
	Evaluations  int
	Iterations   int
	Moves        int
	Improvements int
	Duration     time.Duration
	Stopped      string
	Meta         map[string]any
}

// Improvement is emitted every time a solver records a new best global cost.
type Improvement struct {
	RunID      string
	Iteration  int
	Cost       int
	Assignment []int
}

type Reporter interface {
	Report(ctx context.Context, imp Improvement) error
}

type ReporterFunc func(ctx context.Context, imp Improvement) error

func (f ReporterFunc) Report(ctx context.Context, imp Improvement) error {
	return f(ctx, imp)
}

// Stop reasons stored in Result.Stopped.
const (
	StopMaxIterations = "max_iterations"
	StopMaxMoves      = "max_moves"
	StopMaxDuration   = "max_duration"
	StopStale         = "stale"
	StopContext       = "context"
	StopCooled        = "cooled"
)

package tabu

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procAssign/internal/opt"
	"procAssign/internal/procassign"
)

func newSolver(t *testing.T, cfg Config, seed int64, opts ...Option) *Solver {
	logger := log.New()
	logger.Out = io.Discard
	opts = append([]Option{WithLogger(logger)}, opts...)
	s, err := New(cfg, rand.New(rand.NewSource(seed)), opts...)
	require.NoError(t, err)
	return s
}

func randomCase(seed int64) (*procassign.Instance, *procassign.Assignment) {
	return procassign.RandomInstance(procassign.RandomSpec{
		Resources:      2,
		Machines:       8,
		Locations:      3,
		Services:       6,
		Processes:      24,
		MaxRequirement: 6,
	}, rand.New(rand.NewSource(seed)))
}

func TestImprovementsAreFeasibleAndDecreasing(t *testing.T) {
	inst, a := randomCase(13)

	last := -1
	res, err := newSolver(t, DefaultConfig(), 2, WithReporter(opt.ReporterFunc(func(_ context.Context, imp opt.Improvement) error {
		best, err := procassign.NewAssignment(inst, imp.Assignment)
		require.NoError(t, err)
		require.NoError(t, procassign.CheckAssignment(best))
		assert.Equal(t, procassign.GlobalCost(best, a), imp.Cost)
		if last >= 0 {
			assert.Less(t, imp.Cost, last)
		}
		last = imp.Cost
		return nil
	}))).Solve(context.Background(), a)
	require.NoError(t, err)

	best, err := procassign.NewAssignment(inst, res.Assignment)
	require.NoError(t, err)
	assert.NoError(t, procassign.CheckAssignment(best))
	assert.Equal(t, procassign.GlobalCost(best, a), res.Cost)
	assert.LessOrEqual(t, res.Cost, res.InitialCost)
}

func TestDeterministicForSeed(t *testing.T) {
	_, a := randomCase(5)
	first, err := newSolver(t, DefaultConfig(), 8).Solve(context.Background(), a)
	require.NoError(t, err)
	second, err := newSolver(t, DefaultConfig(), 8).Solve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, first.Assignment, second.Assignment)
	assert.Equal(t, first.Evaluations, second.Evaluations)
}

func TestCancelledContext(t *testing.T) {
	_, a := randomCase(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newSolver(t, DefaultConfig(), 1).Solve(ctx, a)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, opt.StopContext, res.Stopped)
	assert.Equal(t, a.Machines(), res.Assignment)
}

func TestTabuList(t *testing.T) {
	l := newTabuList(8)
	l.Add(moveKey(1, 2), 5)
	assert.True(t, l.IsTabu(moveKey(1, 2), 4))
	assert.False(t, l.IsTabu(moveKey(1, 2), 5))
	assert.False(t, l.IsTabu(moveKey(2, 1), 0))

	// the oldest entry is evicted once the ring is full
	for i := 0; i < 8; i++ {
		l.Add(moveKey(10+i, 0), 100)
	}
	assert.False(t, l.IsTabu(moveKey(1, 2), 0))
	assert.True(t, l.IsTabu(moveKey(17, 0), 50))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.TabuTenure = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.NeighborsPerIter = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.IterationsPerProcess = 0
	assert.Error(t, cfg.Validate())
}

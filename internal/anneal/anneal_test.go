package anneal

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

func quietLogger() *log.Logger {
	l := log.New()
	l.Out = io.Discard
	return l
}

func newSolver(t *testing.T, cfg Config, seed int64, opts ...Option) *Solver {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := New(cfg, rand.New(rand.NewSource(seed)), opts...)
	require.NoError(t, err)
	return s
}

func twoMachineCase(t *testing.T) *procassign.Assignment {
	inst, err := procassign.NewInstance(1,
		[]procassign.Machine{
			{Location: 0, Capacity: []int{20}, SoftCapacity: []int{5}},
			{Location: 0, Capacity: []int{20}, SoftCapacity: []int{5}},
		},
		[]int{0, 0},
		[]procassign.Process{
			{Service: 0, Requirement: []int{4}, MovingCost: 2},
			{Service: 1, Requirement: []int{4}, MovingCost: 1},
		},
	)
	require.NoError(t, err)
	a, err := procassign.NewAssignment(inst, []int{0, 0})
	require.NoError(t, err)
	return a
}

func TestFindsOptimumOnSmallCase(t *testing.T) {
	a := twoMachineCase(t)
	cfg := DefaultConfig()
	cfg.Iterations = 20000
	cfg.Alpha = 0.995

	res, err := newSolver(t, cfg, 3).Solve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 3, res.InitialCost)
	assert.Equal(t, 1, res.Cost)
	assert.Equal(t, []int{0, 1}, res.Assignment)
	assert.Equal(t, opt.StopCooled, res.Stopped)
	assert.Equal(t, []int{0, 0}, a.Machines())
}

func TestImprovementsAreFeasibleAndDecreasing(t *testing.T) {
	inst, a := procassign.RandomInstance(procassign.RandomSpec{
		Resources:      2,
		Machines:       10,
		Locations:      3,
		Services:       8,
		Processes:      30,
		MaxRequirement: 6,
	}, rand.New(rand.NewSource(17)))

	cfg := DefaultConfig()
	cfg.IterationsPerProcess = 100

	last := -1
	res, err := newSolver(t, cfg, 9, WithReporter(opt.ReporterFunc(func(_ context.Context, imp opt.Improvement) error {
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
	assert.Equal(t, opt.StopMaxIterations, res.Stopped)
	assert.Equal(t, 3000, res.Iterations)
}

func TestDeterministicForSeed(t *testing.T) {
	_, a := procassign.RandomInstance(procassign.RandomSpec{
		Resources:      1,
		Machines:       6,
		Locations:      2,
		Services:       5,
		Processes:      15,
		MaxRequirement: 5,
	}, rand.New(rand.NewSource(1)))
	cfg := DefaultConfig()
	cfg.IterationsPerProcess = 50

	first, err := newSolver(t, cfg, 4).Solve(context.Background(), a)
	require.NoError(t, err)
	second, err := newSolver(t, cfg, 4).Solve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, first.Assignment, second.Assignment)
	assert.Equal(t, first.Moves, second.Moves)
}

func TestRejectsInfeasibleStart(t *testing.T) {
	inst, err := procassign.NewInstance(1,
		[]procassign.Machine{{Location: 0, Capacity: []int{5}, SoftCapacity: []int{5}}},
		[]int{0},
		[]procassign.Process{
			{Service: 0, Requirement: []int{4}, MovingCost: 1},
			{Service: 1, Requirement: []int{4}, MovingCost: 1},
		},
	)
	require.NoError(t, err)
	a, err := procassign.NewAssignment(inst, []int{0, 0})
	require.NoError(t, err)

	_, err = newSolver(t, DefaultConfig(), 1).Solve(context.Background(), a)
	assert.True(t, errors.Is(err, procassign.ErrInfeasibleAssignment))
}

func TestCancelledContext(t *testing.T) {
	a := twoMachineCase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newSolver(t, DefaultConfig(), 1).Solve(ctx, a)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, opt.StopContext, res.Stopped)
	assert.Equal(t, []int{0, 0}, res.Assignment)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.IterationsPerProcess = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FinalTemp = cfg.InitialTemp
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Alpha = 1
	assert.Error(t, cfg.Validate())
}

package procassign

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func machine(location int, hard, soft []int) Machine {
	return Machine{Location: location, Capacity: hard, SoftCapacity: soft}
}

func process(service, movingCost int, req ...int) Process {
	return Process{Service: service, Requirement: req, MovingCost: movingCost}
}

// overloadedInstance: 1 resource, two machines (10 hard / 5 soft), one
// service, two processes of 6 units both on machine 0.
func overloadedInstance(t *testing.T) (*Instance, *Assignment) {
	inst, err := NewInstance(1,
		[]Machine{machine(0, []int{10}, []int{5}), machine(1, []int{10}, []int{5})},
		[]int{1},
		[]Process{process(0, 1, 6), process(0, 1, 6)},
	)
	require.NoError(t, err)
	a, err := NewAssignment(inst, []int{0, 0})
	require.NoError(t, err)
	return inst, a
}

// spreadInstance: 2 resources, 3 machines, 2 services, 4 processes on
// distinct machines of each service.
func spreadInstance(t *testing.T) (*Instance, *Assignment) {
	inst, err := NewInstance(2,
		[]Machine{
			machine(0, []int{20, 20}, []int{10, 10}),
			machine(1, []int{20, 20}, []int{10, 10}),
			machine(2, []int{20, 20}, []int{10, 10}),
		},
		[]int{1, 1},
		[]Process{
			process(0, 3, 2, 2),
			process(0, 4, 3, 1),
			process(1, 5, 1, 3),
			process(1, 6, 2, 2),
		},
	)
	require.NoError(t, err)
	a, err := NewAssignment(inst, []int{0, 1, 1, 2})
	require.NoError(t, err)
	return inst, a
}

func TestInstanceValidate(t *testing.T) {
	testCases := []struct {
		description string
		resources   int
		machines    []Machine
		spread      []int
		processes   []Process
	}{
		{
			description: "too many resources",
			resources:   11,
			machines:    []Machine{machine(0, make([]int, 11), make([]int, 11))},
			spread:      []int{0},
			processes:   []Process{process(0, 0, make([]int, 11)...)},
		},
		{
			description: "no machines",
			resources:   1,
			spread:      []int{0},
			processes:   []Process{process(0, 0, 1)},
		},
		{
			description: "capacity vector too short",
			resources:   2,
			machines:    []Machine{machine(0, []int{1}, []int{1, 1})},
			spread:      []int{0},
			processes:   []Process{process(0, 0, 1, 1)},
		},
		{
			description: "service out of range",
			resources:   1,
			machines:    []Machine{machine(0, []int{1}, []int{1})},
			spread:      []int{0},
			processes:   []Process{process(1, 0, 1)},
		},
		{
			description: "spread above locations",
			resources:   1,
			machines:    []Machine{machine(0, []int{1}, []int{1})},
			spread:      []int{2},
			processes:   []Process{process(0, 0, 1)},
		},
		{
			description: "moving cost above limit",
			resources:   1,
			machines:    []Machine{machine(0, []int{1}, []int{1})},
			spread:      []int{0},
			processes:   []Process{process(0, MaxMovingCost+1, 1)},
		},
		{
			description: "location above machine count",
			resources:   1,
			machines:    []Machine{machine(2, []int{1}, []int{1})},
			spread:      []int{0},
			processes:   []Process{process(0, 0, 1)},
		},
	}
	for _, testCase := range testCases {
		_, err := NewInstance(testCase.resources, testCase.machines, testCase.spread, testCase.processes)
		assert.Error(t, err, testCase.description)
	}
}

func TestInstanceLocations(t *testing.T) {
	inst, err := NewInstance(1,
		[]Machine{machine(0, []int{1}, []int{1}), machine(2, []int{1}, []int{1})},
		[]int{0, 0},
		[]Process{process(1, 0, 1), process(0, 0, 1), process(1, 0, 1)},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Locations)
	assert.Equal(t, []int{0, 2}, inst.ServiceProcesses(1))
	assert.Equal(t, []int{1}, inst.ServiceProcesses(0))
}

func TestAssignmentLoads(t *testing.T) {
	_, a := spreadInstance(t)
	assert.Equal(t, []int{2, 2}, a.Loads(0))
	assert.Equal(t, []int{4, 4}, a.Loads(1))
	assert.Equal(t, 2, a.Occupants(1))

	c := a.Clone()
	c.Move(1, 2)
	assert.Equal(t, []int{1, 3}, c.Loads(1))
	assert.Equal(t, []int{5, 3}, c.Loads(2))
	assert.Equal(t, 2, c.Machine(1))

	// the original is untouched
	assert.Equal(t, 1, a.Machine(1))
	assert.Equal(t, []int{4, 4}, a.Loads(1))

	a.CopyFrom(c)
	assert.Equal(t, c.Machines(), a.Machines())
	assert.Equal(t, c.Loads(2), a.Loads(2))
}

func TestNewAssignmentRejectsBadMapping(t *testing.T) {
	inst, _ := spreadInstance(t)
	_, err := NewAssignment(inst, []int{0, 1, 2})
	assert.Error(t, err)
	_, err = NewAssignment(inst, []int{0, 1, 2, 3})
	assert.Error(t, err)
}

func TestInfeasibleInitialAssignment(t *testing.T) {
	_, a := overloadedInstance(t)
	err := CheckAssignment(a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasibleAssignment))

	var infeasible *InfeasibleError
	require.True(t, errors.As(err, &infeasible))
	placements := infeasible.Placements()
	require.Len(t, placements, 2)
	assert.Equal(t, ConstraintCapacity, placements[0].Constraint)
	assert.Equal(t, 0, placements[0].Machine)
}

func TestFeasibleExistingPlacement(t *testing.T) {
	inst, a := spreadInstance(t)
	require.NoError(t, CheckAssignment(a))
	for p := 0; p < inst.NumProcesses(); p++ {
		assert.True(t, Feasible(a, p, a.Machine(p)), "process %d", p)
	}
}

func TestViolationOrder(t *testing.T) {
	_, a := spreadInstance(t)
	// process 0 to machine 1 collides with process 1 of the same service
	assert.Equal(t, ConstraintConflict, Violation(a, 0, 1))
	assert.Equal(t, ConstraintNone, Violation(a, 0, 2))

	_, o := overloadedInstance(t)
	o.Move(1, 1)
	assert.Equal(t, ConstraintCapacity, Violation(o, 1, 0))
}

func TestSpreadConstraint(t *testing.T) {
	inst, err := NewInstance(1,
		[]Machine{
			machine(0, []int{10}, []int{10}),
			machine(0, []int{10}, []int{10}),
			machine(1, []int{10}, []int{10}),
		},
		[]int{2, 2},
		[]Process{process(0, 1, 1), process(0, 1, 1), process(1, 1, 1)},
	)
	require.NoError(t, err)
	a, err := NewAssignment(inst, []int{0, 2, 0})
	require.NoError(t, err)
	require.NoError(t, CheckAssignment(a))

	// moving process 1 to location 0 leaves service 0 on a single location
	assert.Equal(t, ConstraintSpread, Violation(a, 1, 1))
	// service 1 has a single process so its spread is not enforced
	assert.True(t, Feasible(a, 2, 1))
}

func TestMoveCostWithinSoftCapacity(t *testing.T) {
	inst, a := spreadInstance(t)
	baseline := a.Clone()
	cm := DefaultCostModel()
	for p := 0; p < inst.NumProcesses(); p++ {
		cost := inst.Processes[p].MovingCost
		assert.Equal(t, cost, cm.MoveCost(a, baseline, p, a.Machine(p)), "null move of %d", p)
	}
	// process 0 to machine 2: loads stay below soft capacity on both ends
	assert.Equal(t, 3, cm.MoveCost(a, baseline, 0, 2))

	// the legacy arithmetic credits the unused soft capacity of both ends
	assert.Equal(t, LoadOverflow, cm.Load)
	legacy := CostModel{Moving: MovingCostAlways, Load: LoadLegacy}
	assert.Equal(t, 3-(2+6)-(2+6), legacy.MoveCost(a, baseline, 0, 0))
}

func TestMoveCostOverflow(t *testing.T) {
	inst, err := NewInstance(1,
		[]Machine{machine(0, []int{20}, []int{5}), machine(0, []int{20}, []int{5})},
		[]int{0, 0},
		[]Process{process(0, 2, 4), process(1, 1, 4)},
	)
	require.NoError(t, err)
	a, err := NewAssignment(inst, []int{0, 0})
	require.NoError(t, err)
	baseline := a.Clone()

	// load 8 over soft 5 on machine 0: moving process 1 relieves 3 units and
	// adds none on the empty machine 1
	assert.Equal(t, 1-3, DefaultCostModel().MoveCost(a, baseline, 1, 1))
	assert.Equal(t, 3+0, GlobalCost(a, baseline))

	legacy := CostModel{Moving: MovingCostAlways, Load: LoadLegacy}
	// relief: 8-4 = 4 <= 5, so the full 4 is credited; penalty: 0+4-5 = -1
	assert.Equal(t, 1-4-1, legacy.MoveCost(a, baseline, 1, 1))
}

func TestMoveCostIdempotent(t *testing.T) {
	inst, a := RandomInstance(RandomSpec{Resources: 3, Machines: 8, Locations: 3, Services: 6, Processes: 20, MaxRequirement: 9}, rand.New(rand.NewSource(3)))
	baseline := a.Clone()
	cm := DefaultCostModel()
	for p := 0; p < inst.NumProcesses(); p++ {
		for m := 0; m < inst.NumMachines(); m++ {
			assert.Equal(t, Feasible(a, p, m), Feasible(a, p, m))
			assert.Equal(t, cm.MoveCost(a, baseline, p, m), cm.MoveCost(a, baseline, p, m))
		}
	}
	assert.Equal(t, baseline.Machines(), a.Machines())
}

func TestExactMoveCostMatchesGlobalCost(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	inst, a := RandomInstance(RandomSpec{Resources: 2, Machines: 10, Locations: 4, Services: 8, Processes: 30, MaxRequirement: 7}, rng)
	baseline := a.Clone()
	cm := ExactCostModel()

	applied := 0
	for i := 0; i < 2000 && applied < 200; i++ {
		p := rng.Intn(inst.NumProcesses())
		m := rng.Intn(inst.NumMachines())
		if !Feasible(a, p, m) {
			continue
		}
		before := GlobalCost(a, baseline)
		delta := cm.MoveCost(a, baseline, p, m)
		a.Move(p, m)
		require.Equal(t, GlobalCost(a, baseline)-before, delta, "move %d of process %d to %d", applied, p, m)
		require.NoError(t, CheckAssignment(a))
		applied++
	}
	assert.Greater(t, applied, 0)
}

func TestRandomInstanceIsFeasible(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		inst, a := RandomInstance(RandomSpec{Resources: 2, Machines: 6, Locations: 2, Services: 4, Processes: 18, MaxRequirement: 5}, rand.New(rand.NewSource(seed)))
		assert.NoError(t, CheckAssignment(a), "seed %d", seed)
		assert.Equal(t, 18, inst.NumProcesses())
		assert.Equal(t, 0, MovingCost(a, a))
	}
}

func TestCostModelValidate(t *testing.T) {
	assert.NoError(t, DefaultCostModel().Validate())
	assert.NoError(t, ExactCostModel().Validate())
	assert.Error(t, CostModel{Moving: "never", Load: LoadOverflow}.Validate())
	assert.Error(t, CostModel{Moving: MovingCostAlways}.Validate())
}

package procassign

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var ErrInfeasibleAssignment = errors.New("infeasible assignment")

// Constraint identifies the predicate that rejected a placement.
type Constraint int

const (
	ConstraintNone Constraint = iota
	ConstraintCapacity
	ConstraintConflict
	ConstraintSpread
)

func (c Constraint) String() string {
	switch c {
	case ConstraintNone:
		return "none"
	case ConstraintCapacity:
		return "capacity"
	case ConstraintConflict:
		return "conflict"
	case ConstraintSpread:
		return "spread"
	}
	return fmt.Sprintf("constraint(%d)", int(c))
}

// Violation reports the first constraint broken by placing p on target while
// every other process keeps its machine. It does not modify a.
func Violation(a *Assignment, p, target int) Constraint {
	if !fitsCapacity(a, p, target) {
		return ConstraintCapacity
	}
	if hasConflict(a, p, target) {
		return ConstraintConflict
	}
	if !keepsSpread(a, p, target) {
		return ConstraintSpread
	}
	return ConstraintNone
}

func Feasible(a *Assignment, p, target int) bool {
	return Violation(a, p, target) == ConstraintNone
}

func fitsCapacity(a *Assignment, p, target int) bool {
	inst := a.inst
	req := inst.Processes[p].Requirement
	capacity := inst.Machines[target].Capacity
	self := a.machine[p] == target
	for r, v := range req {
		load := a.Load(target, r)
		if !self {
			load += v
		}
		if load > capacity[r] {
			return false
		}
	}
	return true
}

func hasConflict(a *Assignment, p, target int) bool {
	for _, q := range a.inst.ServiceProcesses(a.inst.Processes[p].Service) {
		if q != p && a.machine[q] == target {
			return true
		}
	}
	return false
}

func keepsSpread(a *Assignment, p, target int) bool {
	inst := a.inst
	service := inst.Processes[p].Service
	spread := inst.MinSpread[service]
	members := inst.ServiceProcesses(service)
	if spread <= 1 || len(members) < 2 {
		return true
	}
	seen := map[int]struct{}{inst.Machines[target].Location: {}}
	for _, q := range members {
		if q == p {
			continue
		}
		seen[inst.Machines[a.machine[q]].Location] = struct{}{}
		if len(seen) >= spread {
			return true
		}
	}
	return len(seen) >= spread
}

// PlacementError describes a process whose current machine breaks a constraint.
type PlacementError struct {
	Process    int
	Machine    int
	Constraint Constraint
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("process %d on machine %d violates %s constraint", e.Process, e.Machine, e.Constraint)
}

// InfeasibleError aggregates every PlacementError of an assignment.
type InfeasibleError struct {
	Violations error
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInfeasibleAssignment, e.Violations)
}

func (e *InfeasibleError) Unwrap() []error {
	return []error{ErrInfeasibleAssignment, e.Violations}
}

// Placements lists the individual violations.
func (e *InfeasibleError) Placements() []*PlacementError {
	var out []*PlacementError
	for _, err := range multierr.Errors(e.Violations) {
		if pe, ok := err.(*PlacementError); ok {
			out = append(out, pe)
		}
	}
	return out
}

// CheckAssignment verifies that every process satisfies all constraints on
// its current machine.
func CheckAssignment(a *Assignment) error {
	var violations error
	for p, m := range a.machine {
		if c := Violation(a, p, m); c != ConstraintNone {
			violations = multierr.Append(violations, &PlacementError{Process: p, Machine: m, Constraint: c})
		}
	}
	if violations == nil {
		return nil
	}
	return &InfeasibleError{Violations: violations}
}

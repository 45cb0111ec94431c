package procassign

import "fmt"

// MovingCostPolicy decides how MoveCost charges the moving cost of a process.
type MovingCostPolicy string

const (
	// MovingCostAlways charges the moving cost for every evaluated move.
	MovingCostAlways MovingCostPolicy = "always"
	// MovingCostBaseline charges it when the process leaves its baseline
	// machine and refunds it when the process returns there.
	MovingCostBaseline MovingCostPolicy = "baseline"
)

// LoadPolicy decides how MoveCost accounts for soft capacity overload.
type LoadPolicy string

const (
	// LoadOverflow charges the change of max(0, load-soft) on both machines.
	LoadOverflow LoadPolicy = "overflow"
	// LoadLegacy keeps the historical relief/penalty arithmetic, which credits
	// the full requirement on the source and may credit the destination when
	// it stays below soft capacity.
	LoadLegacy LoadPolicy = "legacy"
)

type CostModel struct {
	Moving MovingCostPolicy `yaml:"moving_cost"`
	Load   LoadPolicy       `yaml:"load"`
}

// DefaultCostModel charges the exact overflow change instead of the legacy
// relief/penalty arithmetic (LoadLegacy).
func DefaultCostModel() CostModel {
	return CostModel{Moving: MovingCostAlways, Load: LoadOverflow}
}

// ExactCostModel makes MoveCost equal to the GlobalCost difference of the move.
func ExactCostModel() CostModel {
	return CostModel{Moving: MovingCostBaseline, Load: LoadOverflow}
}

func (cm CostModel) Validate() error {
	switch cm.Moving {
	case MovingCostAlways, MovingCostBaseline:
	default:
		return fmt.Errorf("unknown moving cost policy %q", cm.Moving)
	}
	switch cm.Load {
	case LoadOverflow, LoadLegacy:
	default:
		return fmt.Errorf("unknown load policy %q", cm.Load)
	}
	return nil
}

// MoveCost returns the cost delta of moving p from its current machine to
// target. Neither assignment is modified.
func (cm CostModel) MoveCost(a, baseline *Assignment, p, target int) int {
	inst := a.inst
	proc := inst.Processes[p]
	source := a.machine[p]

	total := cm.movingTerm(a, baseline, p, target)

	softSource := inst.Machines[source].SoftCapacity
	softTarget := inst.Machines[target].SoftCapacity
	for r, req := range proc.Requirement {
		oldLoad := a.Load(source, r)
		newLoad := a.Load(target, r)
		switch cm.Load {
		case LoadLegacy:
			if oldLoad-req > softSource[r] {
				total -= oldLoad - softSource[r]
			} else {
				total -= req
			}
			if newLoad > softTarget[r] {
				total += req
			} else {
				total += newLoad + req - softTarget[r]
			}
		default:
			total -= overflow(oldLoad, softSource[r]) - overflow(oldLoad-req, softSource[r])
			if target == source {
				newLoad -= req
			}
			total += overflow(newLoad+req, softTarget[r]) - overflow(newLoad, softTarget[r])
		}
	}
	return total
}

func (cm CostModel) movingTerm(a, baseline *Assignment, p, target int) int {
	cost := a.inst.Processes[p].MovingCost
	if cm.Moving != MovingCostBaseline {
		return cost
	}
	home := baseline.machine[p]
	current := a.machine[p]
	switch {
	case current == home && target != home:
		return cost
	case current != home && target == home:
		return -cost
	}
	return 0
}

// GlobalCost is the moving cost of every process away from its baseline
// machine plus the soft capacity overload of every machine.
func GlobalCost(a, baseline *Assignment) int {
	return MovingCost(a, baseline) + LoadCost(a)
}

func MovingCost(a, baseline *Assignment) int {
	total := 0
	for p, m := range a.machine {
		if m != baseline.machine[p] {
			total += a.inst.Processes[p].MovingCost
		}
	}
	return total
}

func LoadCost(a *Assignment) int {
	total := 0
	for m, machine := range a.inst.Machines {
		for r, soft := range machine.SoftCapacity {
			total += overflow(a.Load(m, r), soft)
		}
	}
	return total
}

func overflow(load, soft int) int {
	if load > soft {
		return load - soft
	}
	return 0
}

package procassign

import "fmt"

// Assignment maps every process to a machine and keeps the per-machine
// resource load in sync with that mapping.
type Assignment struct {
	inst    *Instance
	machine []int
	// load is indexed by machine*Resources+resource.
	load  []int
	count []int
}

func NewAssignment(inst *Instance, machineOf []int) (*Assignment, error) {
	if inst == nil {
		return nil, fmt.Errorf("instance is nil")
	}
	if err := ValidateMachines(machineOf, inst); err != nil {
		return nil, err
	}
	a := &Assignment{
		inst:    inst,
		machine: make([]int, len(machineOf)),
		load:    make([]int, inst.NumMachines()*inst.Resources),
		count:   make([]int, inst.NumMachines()),
	}
	copy(a.machine, machineOf)
	for p, m := range a.machine {
		a.add(p, m)
	}
	return a, nil
}

func ValidateMachines(machineOf []int, inst *Instance) error {
	if len(machineOf) != inst.NumProcesses() {
		return fmt.Errorf("assignment length must be %d (got %d)", inst.NumProcesses(), len(machineOf))
	}
	for p, m := range machineOf {
		if m < 0 || m >= inst.NumMachines() {
			return fmt.Errorf("process %d: machine %d out of range [0,%d)", p, m, inst.NumMachines())
		}
	}
	return nil
}

func (a *Assignment) Instance() *Instance { return a.inst }

func (a *Assignment) Machine(p int) int { return a.machine[p] }

// Machines returns a copy of the process to machine mapping.
func (a *Assignment) Machines() []int {
	out := make([]int, len(a.machine))
	copy(out, a.machine)
	return out
}

func (a *Assignment) Load(m, r int) int {
	return a.load[m*a.inst.Resources+r]
}

func (a *Assignment) Loads(m int) []int {
	out := make([]int, a.inst.Resources)
	copy(out, a.load[m*a.inst.Resources:(m+1)*a.inst.Resources])
	return out
}

// Occupants returns the number of processes on machine m.
func (a *Assignment) Occupants(m int) int { return a.count[m] }

// Move places p on machine m. Feasibility is the caller's concern.
func (a *Assignment) Move(p, m int) {
	from := a.machine[p]
	if from == m {
		return
	}
	a.remove(p, from)
	a.add(p, m)
	a.machine[p] = m
}

func (a *Assignment) Clone() *Assignment {
	c := &Assignment{
		inst:    a.inst,
		machine: make([]int, len(a.machine)),
		load:    make([]int, len(a.load)),
		count:   make([]int, len(a.count)),
	}
	c.CopyFrom(a)
	return c
}

// CopyFrom overwrites a with the contents of src. Both must share an instance.
func (a *Assignment) CopyFrom(src *Assignment) {
	copy(a.machine, src.machine)
	copy(a.load, src.load)
	copy(a.count, src.count)
}

func (a *Assignment) add(p, m int) {
	req := a.inst.Processes[p].Requirement
	base := m * a.inst.Resources
	for r, v := range req {
		a.load[base+r] += v
	}
	a.count[m]++
}

func (a *Assignment) remove(p, m int) {
	req := a.inst.Processes[p].Requirement
	base := m * a.inst.Resources
	for r, v := range req {
		a.load[base+r] -= v
	}
	a.count[m]--
}

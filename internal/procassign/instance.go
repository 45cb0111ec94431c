package procassign

import (
	"errors"
	"fmt"
)

const (
	MaxResources  = 10
	MaxMachines   = 500
	MaxServices   = 2000
	MaxProcesses  = 2000
	MaxMovingCost = 1000
)

type Machine struct {
	Location int
	// Capacity and SoftCapacity hold one value per resource.
	Capacity     []int
	SoftCapacity []int
}

type Process struct {
	Service     int
	Requirement []int
	MovingCost  int
}

// Instance is read-only once NewInstance returns it.
type Instance struct {
	Resources int
	Locations int
	Machines  []Machine
	// MinSpread is indexed by service.
	MinSpread []int
	Processes []Process

	serviceProcesses [][]int
}

func NewInstance(resources int, machines []Machine, minSpread []int, processes []Process) (*Instance, error) {
	inst := &Instance{
		Resources: resources,
		Machines:  machines,
		MinSpread: minSpread,
		Processes: processes,
	}
	for _, m := range machines {
		if m.Location+1 > inst.Locations {
			inst.Locations = m.Location + 1
		}
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	inst.serviceProcesses = make([][]int, len(minSpread))
	for p, proc := range processes {
		inst.serviceProcesses[proc.Service] = append(inst.serviceProcesses[proc.Service], p)
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.Resources < 1 || inst.Resources > MaxResources {
		return fmt.Errorf("resources must be in [1,%d] (got %d)", MaxResources, inst.Resources)
	}
	if n := len(inst.Machines); n < 1 || n > MaxMachines {
		return fmt.Errorf("machines must be in [1,%d] (got %d)", MaxMachines, n)
	}
	if n := len(inst.MinSpread); n < 1 || n > MaxServices {
		return fmt.Errorf("services must be in [1,%d] (got %d)", MaxServices, n)
	}
	if n := len(inst.Processes); n < 1 || n > MaxProcesses {
		return fmt.Errorf("processes must be in [1,%d] (got %d)", MaxProcesses, n)
	}
	for i, m := range inst.Machines {
		if m.Location < 0 || m.Location > len(inst.Machines) {
			return fmt.Errorf("machine %d: location must be in [0,%d] (got %d)", i, len(inst.Machines), m.Location)
		}
		if err := checkVector(m.Capacity, inst.Resources); err != nil {
			return fmt.Errorf("machine %d capacity: %w", i, err)
		}
		if err := checkVector(m.SoftCapacity, inst.Resources); err != nil {
			return fmt.Errorf("machine %d soft capacity: %w", i, err)
		}
	}
	for s, spread := range inst.MinSpread {
		if spread < 0 || spread > inst.Locations {
			return fmt.Errorf("service %d: min spread must be in [0,%d] (got %d)", s, inst.Locations, spread)
		}
	}
	for i, p := range inst.Processes {
		if p.Service < 0 || p.Service >= len(inst.MinSpread) {
			return fmt.Errorf("process %d: service must be in [0,%d) (got %d)", i, len(inst.MinSpread), p.Service)
		}
		if err := checkVector(p.Requirement, inst.Resources); err != nil {
			return fmt.Errorf("process %d requirement: %w", i, err)
		}
		if p.MovingCost < 0 || p.MovingCost > MaxMovingCost {
			return fmt.Errorf("process %d: moving cost must be in [0,%d] (got %d)", i, MaxMovingCost, p.MovingCost)
		}
	}
	return nil
}

func checkVector(v []int, resources int) error {
	if len(v) != resources {
		return fmt.Errorf("length must be %d (got %d)", resources, len(v))
	}
	for r, x := range v {
		if x < 0 {
			return fmt.Errorf("resource %d must be >= 0 (got %d)", r, x)
		}
	}
	return nil
}

func (inst *Instance) NumMachines() int  { return len(inst.Machines) }
func (inst *Instance) NumServices() int  { return len(inst.MinSpread) }
func (inst *Instance) NumProcesses() int { return len(inst.Processes) }

// ServiceProcesses returns the processes of service s in index order.
// The returned slice is shared and must not be modified.
func (inst *Instance) ServiceProcesses(s int) []int {
	return inst.serviceProcesses[s]
}

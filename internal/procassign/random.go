package procassign

import "math/rand"

type RandomSpec struct {
	Resources int
	Machines  int
	Locations int
	Services  int
	Processes int
	// MaxRequirement bounds each process requirement, drawn from [1,MaxRequirement].
	MaxRequirement int
}

// RandomInstance generates an instance together with a feasible initial
// assignment. Processes of one service start on distinct machines, hard
// capacities cover the initial load and soft capacities sit below it so the
// instance has overload to remove.
func RandomInstance(spec RandomSpec, rng *rand.Rand) (*Instance, *Assignment) {
	if rng == nil {
		panic("random generator is nil")
	}
	if spec.Locations <= 0 || spec.Locations > spec.Machines {
		spec.Locations = spec.Machines
	}
	if spec.MaxRequirement <= 0 {
		spec.MaxRequirement = 1
	}
	perService := (spec.Processes + spec.Services - 1) / spec.Services
	if perService > spec.Machines {
		panic("too many processes per service for the number of machines")
	}

	machineOf := make([]int, spec.Processes)
	processes := make([]Process, spec.Processes)
	offset := make([]int, spec.Services)
	for s := range offset {
		offset[s] = rng.Intn(spec.Machines)
	}
	load := make([][]int, spec.Machines)
	for m := range load {
		load[m] = make([]int, spec.Resources)
	}
	for p := range processes {
		s := p % spec.Services
		req := make([]int, spec.Resources)
		for r := range req {
			req[r] = 1 + rng.Intn(spec.MaxRequirement)
		}
		processes[p] = Process{
			Service:     s,
			Requirement: req,
			MovingCost:  rng.Intn(MaxMovingCost/10 + 1),
		}
		m := (offset[s] + p/spec.Services) % spec.Machines
		machineOf[p] = m
		for r, v := range req {
			load[m][r] += v
		}
	}

	machines := make([]Machine, spec.Machines)
	for m := range machines {
		hard := make([]int, spec.Resources)
		soft := make([]int, spec.Resources)
		for r := range hard {
			hard[r] = load[m][r] + spec.MaxRequirement + rng.Intn(2*spec.MaxRequirement+1)
			soft[r] = load[m][r] * (50 + rng.Intn(50)) / 100
		}
		machines[m] = Machine{Location: m % spec.Locations, Capacity: hard, SoftCapacity: soft}
	}

	minSpread := make([]int, spec.Services)
	for s := range minSpread {
		locations := map[int]struct{}{}
		for p := s; p < spec.Processes; p += spec.Services {
			locations[machines[machineOf[p]].Location] = struct{}{}
		}
		minSpread[s] = rng.Intn(len(locations) + 1)
	}

	inst, err := NewInstance(spec.Resources, machines, minSpread, processes)
	if err != nil {
		panic(err)
	}
	a, err := NewAssignment(inst, machineOf)
	if err != nil {
		panic(err)
	}
	return inst, a
}

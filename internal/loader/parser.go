package loader

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/viant/parsly"

	"procAssign/internal/procassign"
)

var (
	ErrMalformedInstance   = errors.New("malformed instance")
	ErrMalformedAssignment = errors.New("malformed assignment")
)

// records reads whitespace separated integer records, one per line.
// Empty lines are skipped.
type records struct {
	cursor *parsly.Cursor
	line   int
}

func newRecords(name string, input []byte) *records {
	return &records{cursor: parsly.NewCursor(name, input, 0)}
}

// next returns the integers of the next non-empty line.
func (r *records) next() ([]int, error) {
	var values []int
	cursor := r.cursor
	for {
		if !cursor.HasMore() {
			if len(values) == 0 {
				return nil, errors.Errorf("line %d: unexpected end of input", r.line+1)
			}
			r.line++
			return values, nil
		}
		matched := cursor.MatchAfterOptional(blankToken, integerToken, newlineToken)
		switch matched.Code {
		case integerCode:
			text := matched.Text(cursor)
			v, err := strconv.Atoi(text)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", r.line+1)
			}
			values = append(values, v)
		case newlineCode:
			r.line++
			if len(values) > 0 {
				return values, nil
			}
		case parsly.EOF:
			if len(values) == 0 {
				return nil, errors.Errorf("line %d: unexpected end of input", r.line+1)
			}
			r.line++
			return values, nil
		default:
			return nil, errors.Wrapf(cursor.NewError(integerToken), "line %d", r.line+1)
		}
	}
}

// fixed reads the next record and checks it carries exactly n values.
func (r *records) fixed(n int) ([]int, error) {
	values, err := r.next()
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, errors.Errorf("line %d: wrong number of values (expected %d, found %d)", r.line, n, len(values))
	}
	return values, nil
}

// count reads a single value record bounded by [1, limit].
func (r *records) count(what string, limit int) (int, error) {
	values, err := r.fixed(1)
	if err != nil {
		return 0, err
	}
	if n := values[0]; n < 1 || n > limit {
		return 0, errors.Errorf("line %d: number of %s is not within limits [1,%d] (got %d)", r.line, what, limit, n)
	}
	return values[0], nil
}

// ParseInstance decodes the line oriented instance format:
//
//	numResources
//	numMachines
//	location hard[numResources] soft[numResources]   (per machine)
//	numServices
//	minSpread                                        (per service)
//	numProcesses
//	service requirement[numResources] movingCost     (per process)
func ParseInstance(data []byte) (*procassign.Instance, error) {
	inst, err := parseInstance(data)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedInstance, "%v", err)
	}
	return inst, nil
}

func parseInstance(data []byte) (*procassign.Instance, error) {
	r := newRecords("instance", data)

	resources, err := r.count("resources", procassign.MaxResources)
	if err != nil {
		return nil, err
	}
	numMachines, err := r.count("machines", procassign.MaxMachines)
	if err != nil {
		return nil, err
	}

	locations := 0
	machines := make([]procassign.Machine, numMachines)
	for m := range machines {
		values, err := r.fixed(1 + 2*resources)
		if err != nil {
			return nil, err
		}
		loc := values[0]
		if loc < 0 || loc > numMachines {
			return nil, errors.Errorf("line %d: invalid machine location %d", r.line, loc)
		}
		if loc+1 > locations {
			locations = loc + 1
		}
		machines[m] = procassign.Machine{
			Location:     loc,
			Capacity:     values[1 : 1+resources],
			SoftCapacity: values[1+resources:],
		}
	}

	numServices, err := r.count("services", procassign.MaxServices)
	if err != nil {
		return nil, err
	}
	spread := make([]int, numServices)
	for s := range spread {
		values, err := r.fixed(1)
		if err != nil {
			return nil, err
		}
		if values[0] < 0 || values[0] > locations {
			return nil, errors.Errorf("line %d: invalid service spread value %d", r.line, values[0])
		}
		spread[s] = values[0]
	}

	numProcesses, err := r.count("processes", procassign.MaxProcesses)
	if err != nil {
		return nil, err
	}
	processes := make([]procassign.Process, numProcesses)
	for p := range processes {
		values, err := r.fixed(2 + resources)
		if err != nil {
			return nil, err
		}
		service := values[0]
		if service < 0 || service >= numServices {
			return nil, errors.Errorf("line %d: invalid service value for process %d: %d", r.line, p, service)
		}
		cost := values[1+resources]
		if cost < 0 || cost > procassign.MaxMovingCost {
			return nil, errors.Errorf("line %d: moving cost %d is not within limits", r.line, cost)
		}
		processes[p] = procassign.Process{
			Service:     service,
			Requirement: values[1 : 1+resources],
			MovingCost:  cost,
		}
	}

	return procassign.NewInstance(resources, machines, spread, processes)
}

// ParseAssignment decodes a single line of machine ids, one per process.
func ParseAssignment(data []byte, inst *procassign.Instance) (*procassign.Assignment, error) {
	r := newRecords("assignment", data)
	values, err := r.next()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedAssignment, "%v", err)
	}
	if len(values) != inst.NumProcesses() {
		return nil, errors.Wrapf(ErrMalformedAssignment,
			"wrong number of assigned processes (expected %d, found %d)", inst.NumProcesses(), len(values))
	}
	a, err := procassign.NewAssignment(inst, values)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedAssignment, "%v", err)
	}
	return a, nil
}

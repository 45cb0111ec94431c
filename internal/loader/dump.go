package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"procAssign/internal/procassign"
)

// FormatAssignment renders machine ids on one line separated by single spaces.
func FormatAssignment(machines []int) []byte {
	buf := make([]byte, 0, 4*len(machines)+1)
	for p, m := range machines {
		if p > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(m), 10)
	}
	return append(buf, '\n')
}

// DumpInstance writes a human readable report of inst.
func DumpInstance(w io.Writer, inst *procassign.Instance) error {
	b := bufio.NewWriter(w)

	fmt.Fprint(b, "Problem instance:\n\n")
	fmt.Fprintf(b, "  Resources: %4d\n", inst.Resources)
	fmt.Fprintf(b, "  Machines: %5d\n", inst.NumMachines())
	fmt.Fprintf(b, "  Processes: %4d\n", inst.NumProcesses())
	fmt.Fprintf(b, "  Services: %5d\n", inst.NumServices())
	fmt.Fprintf(b, "  Locations: %4d\n", inst.Locations)

	fmt.Fprint(b, "\n  Machine Capacities (hard/soft):\n\n")
	for m, machine := range inst.Machines {
		fmt.Fprintf(b, "    m: %d\n      ", m)
		for r := range machine.Capacity {
			fmt.Fprintf(b, "%10s", fmt.Sprintf("%d/%d", machine.Capacity[r], machine.SoftCapacity[r]))
		}
		fmt.Fprintln(b)
	}

	fmt.Fprint(b, "\n  Machine Locations:\n\n")
	for m, machine := range inst.Machines {
		fmt.Fprintf(b, "    m: %d\n        %4d\n", m, machine.Location)
	}

	fmt.Fprint(b, "\n  Minimum Service Spreads:\n\n")
	for s, spread := range inst.MinSpread {
		fmt.Fprintf(b, "    s: %d\n        %4d\n", s, spread)
	}

	fmt.Fprint(b, "\n  Process Requirements:\n\n")
	for p, process := range inst.Processes {
		fmt.Fprintf(b, "    p: %d\n      ", p)
		for _, req := range process.Requirement {
			fmt.Fprintf(b, "%6d", req)
		}
		fmt.Fprintln(b)
	}

	fmt.Fprint(b, "\n  Process Services:\n\n")
	for p, process := range inst.Processes {
		fmt.Fprintf(b, "    p: %d\n        %4d\n", p, process.Service)
	}

	fmt.Fprint(b, "\n  Process Moving Costs:\n\n")
	for p, process := range inst.Processes {
		fmt.Fprintf(b, "    p: %d\n        %4d\n", p, process.MovingCost)
	}
	fmt.Fprintln(b)

	return b.Flush()
}

// DumpAssignment writes one "process -> machine" line per process.
func DumpAssignment(w io.Writer, machines []int) error {
	b := bufio.NewWriter(w)
	fmt.Fprint(b, "Assignment (process -> machine):\n\n")
	for p, m := range machines {
		fmt.Fprintf(b, "  %4d -> %d\n", p, m)
	}
	fmt.Fprintln(b)
	return b.Flush()
}

package loader

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"procAssign/internal/procassign"
)

const sampleInstance = `2
3
0 10 10 8 8
1 10 10 8 8
2 10 10 8 8
2
2
1
4
0 3 2 5
0 2 2 7
1 4 1 3
1 1 1 2
`

func TestParseInstance(t *testing.T) {
	inst, err := ParseInstance([]byte(sampleInstance))
	require.NoError(t, err)

	assert.Equal(t, 2, inst.Resources)
	assert.Equal(t, 3, inst.NumMachines())
	assert.Equal(t, 3, inst.Locations)
	assert.Equal(t, []int{2, 1}, inst.MinSpread)
	assert.Equal(t, procassign.Machine{Location: 1, Capacity: []int{10, 10}, SoftCapacity: []int{8, 8}}, inst.Machines[1])
	assert.Equal(t, procassign.Process{Service: 1, Requirement: []int{4, 1}, MovingCost: 3}, inst.Processes[2])
	assert.Equal(t, []int{0, 1}, inst.ServiceProcesses(0))
}

func TestParseInstanceLayout(t *testing.T) {
	crlf := strings.ReplaceAll(sampleInstance, "\n", "\r\n")
	padded := "\n  " + strings.ReplaceAll(sampleInstance, " ", " \t ") + "\n\n"
	noFinalNewline := strings.TrimSuffix(sampleInstance, "\n")

	for name, input := range map[string]string{
		"crlf":             crlf,
		"extra blanks":     padded,
		"no final newline": noFinalNewline,
	} {
		t.Run(name, func(t *testing.T) {
			inst, err := ParseInstance([]byte(input))
			require.NoError(t, err)
			assert.Equal(t, 4, inst.NumProcesses())
			assert.Equal(t, 2, inst.Processes[3].MovingCost)
		})
	}
}

func TestParseInstanceMalformed(t *testing.T) {
	replaceLine := func(n int, line string) string {
		lines := strings.Split(sampleInstance, "\n")
		lines[n] = line
		return strings.Join(lines, "\n")
	}

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no resources", replaceLine(0, "0")},
		{"too many resources", replaceLine(0, "11")},
		{"too many machines", replaceLine(1, "501")},
		{"two values on count line", replaceLine(1, "3 3")},
		{"short machine record", replaceLine(2, "0 10 10 8")},
		{"long machine record", replaceLine(2, "0 10 10 8 8 1")},
		{"not an integer", replaceLine(2, "0 10 ten 8 8")},
		{"integer with suffix", replaceLine(2, "0 10 10x 8 8")},
		{"location out of range", replaceLine(2, "4 10 10 8 8")},
		{"negative capacity", replaceLine(2, "0 -1 10 8 8")},
		{"spread above locations", replaceLine(6, "4")},
		{"no services", replaceLine(5, "0")},
		{"service out of range", replaceLine(9, "2 3 2 5")},
		{"moving cost out of range", replaceLine(9, "0 3 2 1001")},
		{"negative requirement", replaceLine(9, "0 -3 2 5")},
		{"truncated", strings.Join(strings.Split(sampleInstance, "\n")[:11], "\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInstance([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInstance), err.Error())
			assert.Equal(t, ErrMalformedInstance, errors.Cause(err))
		})
	}
}

func TestParseAssignment(t *testing.T) {
	inst, err := ParseInstance([]byte(sampleInstance))
	require.NoError(t, err)

	a, err := ParseAssignment([]byte("0 1 0 2\n"), inst)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 2}, a.Machines())
	assert.NoError(t, procassign.CheckAssignment(a))

	for name, input := range map[string]string{
		"empty":        "",
		"too few":      "0 1 0",
		"too many":     "0 1 0 2 1",
		"out of range": "0 1 0 3",
		"negative":     "0 -1 0 2",
		"garbage":      "0 1 zero 2",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAssignment([]byte(input), inst)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedAssignment), err.Error())
		})
	}
}

func TestFormatAssignment(t *testing.T) {
	assert.Equal(t, "0 1 0 2\n", string(FormatAssignment([]int{0, 1, 0, 2})))
	assert.Equal(t, "7\n", string(FormatAssignment([]int{7})))
}

func TestDumpAssignment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DumpAssignment(&buf, []int{2, 0}))
	assert.Equal(t, "Assignment (process -> machine):\n\n     0 -> 2\n     1 -> 0\n\n", buf.String())
}

func TestDumpInstance(t *testing.T) {
	inst, err := ParseInstance([]byte(sampleInstance))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DumpInstance(&buf, inst))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Problem instance:\n\n  Resources:    2\n  Machines:     3\n"))
	assert.Contains(t, out, "  Locations:    3\n")
	pad := func(n int) string { return strings.Repeat(" ", n) }
	assert.Contains(t, out, "    m: 0\n"+pad(12)+"10/8"+pad(6)+"10/8\n")
	assert.Contains(t, out, "  Minimum Service Spreads:\n\n    s: 0\n"+pad(11)+"2\n")
	assert.Contains(t, out, "    p: 2\n"+pad(11)+"4"+pad(5)+"1\n")
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	store := NewStore(fs)

	instanceURL := "mem://localhost/procassign/instance.txt"
	require.NoError(t, fs.Upload(ctx, instanceURL, file.DefaultFileOsMode, strings.NewReader(sampleInstance)))

	inst, err := store.LoadInstance(ctx, instanceURL)
	require.NoError(t, err)
	assert.Equal(t, 4, inst.NumProcesses())

	for _, URL := range []string{
		"mem://localhost/procassign/best.txt",
		"file://" + filepath.Join(t.TempDir(), "best.txt"),
	} {
		require.NoError(t, store.SaveAssignment(ctx, URL, []int{2, 1, 0, 0}))
		a, err := store.LoadAssignment(ctx, URL, inst)
		require.NoError(t, err, URL)
		assert.Equal(t, []int{2, 1, 0, 0}, a.Machines())
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	store := NewStore(fs)

	_, err := store.LoadInstance(ctx, "mem://localhost/procassign/missing.txt")
	assert.Error(t, err)

	badURL := "mem://localhost/procassign/bad.txt"
	require.NoError(t, fs.Upload(ctx, badURL, file.DefaultFileOsMode, strings.NewReader("1\n")))
	_, err = store.LoadInstance(ctx, badURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInstance))
	assert.Contains(t, err.Error(), badURL)
}

package bench

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"procAssign/internal/procassign"
)

// ParseCases разбирает список вида "40x10,200x30". Сид экземпляра
// фиксирован для конфигурации и зависит от её позиции и размеров.
func ParseCases(s string, baseInstanceSeed int64) ([]Case, error) {
	parts := SplitCSV(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("не задано ни одной конфигурации, пример: 200x30")
	}
	cases := make([]Case, 0, len(parts))

	for i, p := range parts {
		pm := strings.Split(p, "x")
		if len(pm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 200x30", p)
		}
		processes, err := atoiStrict(pm[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества процессов: %w", p, err)
		}
		machines, err := atoiStrict(pm[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if processes <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество процессов и машин должно быть > 0", p)
		}
		if processes > procassign.MaxProcesses || machines > procassign.MaxMachines {
			return nil, fmt.Errorf("пара %q: допускается не более %d процессов и %d машин", p, procassign.MaxProcesses, procassign.MaxMachines)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(processes)*100 + int64(machines)

		cases = append(cases, Case{
			Processes:    processes,
			Machines:     machines,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}

func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

package bench

import (
	"math"
	"sort"
)

// Stats - сводка по серии запусков. Std - выборочное отклонение (n-1).
type Stats struct {
	N      int
	Best   float64
	Worst  float64
	Mean   float64
	Median float64
	Std    float64
}

func Summarize(values []float64) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.Best = sorted[0]
	s.Worst = sorted[s.N-1]
	if s.N%2 == 1 {
		s.Median = sorted[s.N/2]
	} else {
		s.Median = (sorted[s.N/2-1] + sorted[s.N/2]) / 2
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	s.Mean = sum / float64(s.N)

	if s.N >= 2 {
		variance := 0.0
		for _, v := range values {
			d := v - s.Mean
			variance += d * d
		}
		s.Std = math.Sqrt(variance / float64(s.N-1))
	}
	return s
}

func SummarizeInts(values []int) Stats {
	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = float64(v)
	}
	return Summarize(fs)
}

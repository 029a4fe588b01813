package telemetry

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary 活跃粒子数的分布统计
type Summary struct {
	Frames int
	Mean   float64
	StdDev float64
	Min    float64
	P50    float64
	P95    float64
	Max    float64
}

// Summarize computes the distribution of samples. Zero samples yield the
// zero Summary; one sample has zero standard deviation.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	s := Summary{
		Frames: len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P50:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	if len(sorted) == 1 {
		s.Mean = sorted[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	return s
}

// String formats the summary for log output.
func (s Summary) String() string {
	return fmt.Sprintf("frames=%d mean=%.1f sd=%.1f min=%.0f p50=%.0f p95=%.0f max=%.0f",
		s.Frames, s.Mean, s.StdDev, s.Min, s.P50, s.P95, s.Max)
}

package report

import (
	"math"
	"sort"

	"structuralign/pkg/model"
)

// AxisStatistics is the statistical distribution of one axis's aligned
// coordinate values, grounded on analysis/statistics.py:
// compute_axis_statistics. Std is the population standard deviation
// (ddof=0): we are summarizing the full population of coordinates in this
// run, not a sample drawn from a larger one.
type AxisStatistics struct {
	Axis        model.Axis
	Mean        float64
	Median      float64
	Std         float64
	Min         float64
	Max         float64
	Q1          float64
	Q3          float64
	UniqueCount int
	TotalCount  int
}

// ComputeAxisStatistics summarizes a slice of coordinate values for one
// axis. Returns the zero value (TotalCount 0) for an empty input.
func ComputeAxisStatistics(axis model.Axis, values []float64) AxisStatistics {
	if len(values) == 0 {
		return AxisStatistics{Axis: axis}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return AxisStatistics{
		Axis:   axis,
		Mean:   mean(sorted),
		Median: percentile(sorted, 50),
		Std:    populationStd(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     percentile(sorted, 25),
		Q3:     percentile(sorted, 75),
		// unique_count is a centimeter-level summary, independent of
		// the pipeline's own rounding_precision.
		UniqueCount: countUnique(sorted, 0.01),
		TotalCount:  len(sorted),
	}
}

// DisplacementStats is the P50/P95/P99/max distribution of vertex
// displacement magnitudes named in spec.md §6.
type DisplacementStats struct {
	P50, P95, P99, Max float64
}

// ComputeDisplacementStats summarizes a slice of displacement magnitudes.
func ComputeDisplacementStats(displacements []float64) DisplacementStats {
	if len(displacements) == 0 {
		return DisplacementStats{}
	}
	sorted := append([]float64(nil), displacements...)
	sort.Float64s(sorted)
	return DisplacementStats{
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
		Max: sorted[len(sorted)-1],
	}
}

func mean(sorted []float64) float64 {
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

func populationStd(sorted []float64) float64 {
	m := mean(sorted)
	var sumSq float64
	for _, v := range sorted {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(sorted)))
}

// percentile implements numpy's default linear-interpolation method over
// an already-sorted slice, matching compute_axis_statistics's use of
// np.percentile/np.median.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func countUnique(sorted []float64, roundTo float64) int {
	seen := make(map[float64]struct{}, len(sorted))
	for _, v := range sorted {
		seen[math.Round(v/roundTo)*roundTo] = struct{}{}
	}
	return len(seen)
}

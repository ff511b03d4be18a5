package report

import (
	"math"
	"testing"

	"structuralign/pkg/model"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestComputeAxisStatistics_Basic(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	stats := ComputeAxisStatistics(model.AxisX, values)

	if stats.TotalCount != 5 {
		t.Errorf("got TotalCount %d, want 5", stats.TotalCount)
	}
	if !approxEqual(stats.Mean, 3.0, 1e-9) {
		t.Errorf("got Mean %v, want 3.0", stats.Mean)
	}
	if !approxEqual(stats.Median, 3.0, 1e-9) {
		t.Errorf("got Median %v, want 3.0", stats.Median)
	}
	if stats.Min != 1 || stats.Max != 5 {
		t.Errorf("got Min/Max %v/%v, want 1/5", stats.Min, stats.Max)
	}
}

func TestComputeAxisStatistics_Empty(t *testing.T) {
	stats := ComputeAxisStatistics(model.AxisY, nil)
	if stats.TotalCount != 0 {
		t.Errorf("got TotalCount %d, want 0", stats.TotalCount)
	}
}

func TestComputeAxisStatistics_UniqueCountDedupesSubCentimeter(t *testing.T) {
	values := []float64{1.001, 1.002, 2.0}
	stats := ComputeAxisStatistics(model.AxisX, values)
	if stats.UniqueCount != 2 {
		t.Errorf("got UniqueCount %d, want 2 (sub-cm noise collapsed)", stats.UniqueCount)
	}
}

func TestComputeDisplacementStats_Percentiles(t *testing.T) {
	displacements := make([]float64, 100)
	for i := range displacements {
		displacements[i] = float64(i + 1) // 1..100
	}
	stats := ComputeDisplacementStats(displacements)

	if stats.Max != 100 {
		t.Errorf("got Max %v, want 100", stats.Max)
	}
	if stats.P50 < 49 || stats.P50 > 51 {
		t.Errorf("got P50 %v, want ~50", stats.P50)
	}
	if stats.P99 < 98 {
		t.Errorf("got P99 %v, want close to 99", stats.P99)
	}
}

func TestComputeDisplacementStats_Empty(t *testing.T) {
	stats := ComputeDisplacementStats(nil)
	if stats != (DisplacementStats{}) {
		t.Errorf("expected zero value for empty input, got %+v", stats)
	}
}

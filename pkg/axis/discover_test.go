package axis

import (
	"context"
	"testing"

	"structuralign/pkg/config"
	"structuralign/pkg/model"
)

func vertex(id, idx int, x, y, z float64) model.Vertex {
	return model.Vertex{ElementID: id, VertexIndex: idx, X: x, Y: y, Z: z}
}

// TestDiscover_SingleColumnAligned mirrors spec scenario 1: a column
// witnessed on four floors at a near-constant (X, Y). Rounded to 5 mm, the
// X values fall into two buckets 5 mm apart (-39.775 and -39.770, two
// floors each), which cluster_radius does not merge and which only the
// min_floors-1 fallback admits. Y rounds to one 22.500 line on all four
// floors.
func TestDiscover_SingleColumnAligned(t *testing.T) {
	vertices := []model.Vertex{
		vertex(1, 0, -39.775, 22.500, -4.44),
		vertex(1, 1, -39.770, 22.502, -1.56),
		vertex(1, 2, -39.772, 22.500, 2.12),
		vertex(1, 3, -39.773, 22.501, 5.48),
	}
	cfg := config.Default()
	cfg.MinFloors = 3

	x, y, err := Discover(context.Background(), vertices, cfg)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(x) != 2 {
		t.Fatalf("len(x) = %d, want 2", len(x))
	}
	for i, a := range x {
		if a.FloorCount != 2 || !a.Fallback {
			t.Errorf("x[%d] = %+v, want FloorCount 2 admitted by fallback", i, a)
		}
	}
	if len(y) != 1 {
		t.Fatalf("len(y) = %d, want 1", len(y))
	}
	if y[0].FloorCount != 4 {
		t.Errorf("y[0].FloorCount = %d, want 4", y[0].FloorCount)
	}
}

// TestDiscover_EmptyInput checks the documented failure mode: an empty
// vertex set yields empty output, not an error.
func TestDiscover_EmptyInput(t *testing.T) {
	x, y, err := Discover(context.Background(), nil, config.Default())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(x) != 0 || len(y) != 0 {
		t.Errorf("Discover(nil) = (%v, %v), want (nil, nil)", x, y)
	}
}

// TestDiscover_BelowMinFloorsFallsBack checks the min_floors-1 fallback:
// a position witnessed on one fewer floor than min_floors should still
// surface, tagged Fallback, when nothing clears the primary threshold.
func TestDiscover_BelowMinFloorsFallsBack(t *testing.T) {
	vertices := []model.Vertex{
		vertex(1, 0, 10.000, 0, -4.44),
		vertex(1, 1, 10.000, 0, -1.56),
	}
	cfg := config.Default()
	cfg.MinFloors = 3

	x, _, err := Discover(context.Background(), vertices, cfg)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(x) != 1 {
		t.Fatalf("len(x) = %d, want 1", len(x))
	}
	if !x[0].Fallback {
		t.Errorf("x[0].Fallback = false, want true")
	}
	if x[0].FloorCount != 2 {
		t.Errorf("x[0].FloorCount = %d, want 2", x[0].FloorCount)
	}
}

// TestDiscover_ClosePositionsNotMerged guards the selection-over-clustering
// design note: two axes separated by more than cluster_radius must stay
// distinct even though both clear min_floors.
func TestDiscover_ClosePositionsNotMerged(t *testing.T) {
	var vertices []model.Vertex
	zs := []float64{-4.44, -1.56, 2.12}
	id := 1
	for _, z := range zs {
		vertices = append(vertices, vertex(id, 0, 0.000, 0, z))
		id++
	}
	for _, z := range zs {
		vertices = append(vertices, vertex(id, 0, 0.075, 0, z))
		id++
	}
	cfg := config.Default()
	cfg.MinFloors = 3

	x, _, err := Discover(context.Background(), vertices, cfg)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(x) != 2 {
		t.Fatalf("len(x) = %d, want 2 (75mm apart, > cluster_radius)", len(x))
	}
}

// TestDiscover_AscendingOrder checks the output-ordering contract.
func TestDiscover_AscendingOrder(t *testing.T) {
	var vertices []model.Vertex
	positions := []float64{5.0, -3.0, 1.0}
	id := 1
	for _, pos := range positions {
		for _, z := range []float64{-4.44, -1.56, 2.12} {
			vertices = append(vertices, vertex(id, 0, pos, 0, z))
		}
		id++
	}
	cfg := config.Default()
	cfg.MinFloors = 3

	x, _, err := Discover(context.Background(), vertices, cfg)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	for i := 1; i < len(x); i++ {
		if x[i].Position <= x[i-1].Position {
			t.Errorf("x[%d].Position = %v not > x[%d].Position = %v", i, x[i].Position, i-1, x[i-1].Position)
		}
	}
}

// TestDiscover_NoAxesFoundError checks the recoverable-turned-fatal
// NoAxesFound path: vertices present, but none reach min_floors-1 either.
func TestDiscover_NoAxesFoundError(t *testing.T) {
	vertices := []model.Vertex{
		vertex(1, 0, 1.0, 1.0, -4.44),
	}
	cfg := config.Default()
	cfg.MinFloors = 3

	_, _, err := Discover(context.Background(), vertices, cfg)
	if err == nil {
		t.Fatalf("Discover() error = nil, want NoAxesFound")
	}
}

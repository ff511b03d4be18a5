package endpoint

import (
	"testing"

	"structuralign/pkg/model"
)

func TestResolve_Column(t *testing.T) {
	vs := []model.Vertex{
		{X: -39.775, Y: 22.500},
		{X: -39.770, Y: 22.502},
		{X: -39.772, Y: 22.500},
		{X: -39.773, Y: 22.501},
	}
	ep := Resolve(model.KindColumn, vs, 0.002)
	if len(ep.X) != 1 || len(ep.Y) != 1 {
		t.Fatalf("Resolve(COLUMN) = %+v, want 1 endpoint per axis", ep)
	}
}

// TestResolve_SpanningWall mirrors spec scenario 2: a wall spanning ~5.2m
// in X and 0.12m in Y must resolve to 2 X endpoints, 1 Y endpoint.
func TestResolve_SpanningWall(t *testing.T) {
	vs := []model.Vertex{
		{X: -55.900, Y: 12.30},
		{X: -55.905, Y: 12.31},
		{X: -55.895, Y: 12.29},
		{X: -55.902, Y: 12.30},
		{X: -50.700, Y: 12.30},
		{X: -50.705, Y: 12.31},
		{X: -50.695, Y: 12.29},
		{X: -50.702, Y: 12.30},
	}
	ep := Resolve(model.KindWall, vs, 0.002)
	if len(ep.X) != 2 {
		t.Fatalf("len(ep.X) = %d, want 2", len(ep.X))
	}
	if len(ep.Y) != 1 {
		t.Fatalf("len(ep.Y) = %d, want 1", len(ep.Y))
	}
}

func TestResolve_WallOrientationFlips(t *testing.T) {
	// Y-spanning wall: large Δy, small Δx.
	vs := []model.Vertex{
		{X: 10.00, Y: 0.0},
		{X: 10.01, Y: 0.0},
		{X: 10.00, Y: 5.0},
		{X: 10.01, Y: 5.0},
	}
	ep := Resolve(model.KindWall, vs, 0.002)
	if len(ep.Y) != 2 {
		t.Fatalf("len(ep.Y) = %d, want 2", len(ep.Y))
	}
	if len(ep.X) != 1 {
		t.Fatalf("len(ep.X) = %d, want 1", len(ep.X))
	}
}

func TestAssignVertex_NearestEndpoint(t *testing.T) {
	endpoints := []float64{-55.850, -50.700}
	if got := AssignVertex(-55.900, endpoints); got != 0 {
		t.Errorf("AssignVertex(-55.900) = %d, want 0", got)
	}
	if got := AssignVertex(-50.710, endpoints); got != 1 {
		t.Errorf("AssignVertex(-50.710) = %d, want 1", got)
	}
}

func TestAssignVertex_SingleEndpoint(t *testing.T) {
	if got := AssignVertex(42.0, []float64{7.0}); got != 0 {
		t.Errorf("AssignVertex with one endpoint = %d, want 0", got)
	}
}

package snap

import (
	"testing"

	"structuralign/pkg/config"
	"structuralign/pkg/endpoint"
	"structuralign/pkg/model"
)

func axisLine(axis model.Axis, pos float64, floors, verts int) model.AxisLine {
	return model.AxisLine{Axis: axis, Position: pos, FloorCount: floors, VertexCount: verts}
}

// TestElement_SingleColumnAligned mirrors spec scenario 1.
func TestElement_SingleColumnAligned(t *testing.T) {
	vs := []model.Vertex{
		{ElementID: 1, VertexIndex: 0, X: -39.775, Y: 22.500, Z: -4.44},
		{ElementID: 1, VertexIndex: 1, X: -39.770, Y: 22.502, Z: -1.56},
		{ElementID: 1, VertexIndex: 2, X: -39.772, Y: 22.500, Z: 2.12},
		{ElementID: 1, VertexIndex: 3, X: -39.773, Y: 22.501, Z: 5.48},
	}
	xLines := []model.AxisLine{axisLine(model.AxisX, -39.700, 6, 100)}
	yLines := []model.AxisLine{axisLine(model.AxisY, 22.500, 8, 100)}
	cfg := config.Default()

	eps := endpoint.Resolve(model.KindColumn, vs, cfg.ClusterRadius)
	aligned := Element(vs, eps, xLines, yLines, cfg)

	for _, av := range aligned {
		if av.AlignedX != -39.700 {
			t.Errorf("AlignedX = %v, want -39.700", av.AlignedX)
		}
		if av.AlignedY != 22.500 {
			t.Errorf("AlignedY = %v, want 22.500", av.AlignedY)
		}
		if av.AlignedZ != av.OriginalZ {
			t.Errorf("AlignedZ = %v, want %v (Z must never move)", av.AlignedZ, av.OriginalZ)
		}
	}
}

// TestElement_SpanningWall mirrors spec scenario 2.
func TestElement_SpanningWall(t *testing.T) {
	var vs []model.Vertex
	id := 0
	add := func(x, y, z float64) {
		vs = append(vs, model.Vertex{ElementID: 1, VertexIndex: id, X: x, Y: y, Z: z})
		id++
	}
	for _, z := range []float64{-4.44, 2.12} {
		add(-55.900, 12.30, z)
		add(-55.902, 12.31, z)
		add(-50.700, 12.30, z)
		add(-50.702, 12.31, z)
	}
	xLines := []model.AxisLine{
		axisLine(model.AxisX, -55.850, 6, 50),
		axisLine(model.AxisX, -50.700, 6, 50),
	}
	yLines := []model.AxisLine{axisLine(model.AxisY, 12.300, 6, 50)}
	cfg := config.Default()

	eps := endpoint.Resolve(model.KindWall, vs, cfg.ClusterRadius)
	aligned := Element(vs, eps, xLines, yLines, cfg)

	for _, av := range aligned {
		if av.OriginalX < -53 {
			if av.AlignedX != -55.850 {
				t.Errorf("near-left vertex AlignedX = %v, want -55.850", av.AlignedX)
			}
		} else {
			if av.AlignedX != -50.700 {
				t.Errorf("near-right vertex AlignedX = %v, want -50.700", av.AlignedX)
			}
		}
		if av.AlignedY != 12.300 {
			t.Errorf("AlignedY = %v, want 12.300", av.AlignedY)
		}
	}
}

// TestElement_OutlierSnap mirrors spec scenario 3.
func TestElement_OutlierSnap(t *testing.T) {
	vs := []model.Vertex{{ElementID: 1, VertexIndex: 0, X: 0, Y: 30.900, Z: -4.44}}
	yLines := []model.AxisLine{axisLine(model.AxisY, 27.213, 6, 50)}
	cfg := config.Default()
	cfg.MaxSnapDistance = 0.75
	cfg.OutlierSnapDistance = 4.0

	eps := endpoint.Resolve(model.KindColumn, vs, cfg.ClusterRadius)
	aligned := Element(vs, eps, nil, yLines, cfg)

	if !aligned[0].SnappedY() {
		t.Fatalf("expected vertex to snap via outlier path")
	}
	// The snapped value 27.213 is then rounded to rounding_precision (5 mm).
	if aligned[0].AlignedY != 27.215 {
		t.Errorf("AlignedY = %v, want 27.215", aligned[0].AlignedY)
	}
}

// TestElement_Unsnappable mirrors spec scenario 4.
func TestElement_Unsnappable(t *testing.T) {
	vs := []model.Vertex{{ElementID: 1, VertexIndex: 0, X: 0, Y: 100.0, Z: -4.44}}
	yLines := []model.AxisLine{axisLine(model.AxisY, 27.213, 6, 50)}
	cfg := config.Default()

	eps := endpoint.Resolve(model.KindColumn, vs, cfg.ClusterRadius)
	aligned := Element(vs, eps, nil, yLines, cfg)

	if aligned[0].SnappedY() {
		t.Fatalf("expected vertex to remain unsnapped")
	}
	if aligned[0].AlignedY != 100.0 {
		t.Errorf("AlignedY = %v, want 100.0 (unchanged)", aligned[0].AlignedY)
	}
}

// TestNearestAxisLine_BoundaryAtMaxSnapDistance checks the closed
// interval at the upper bound of max_snap_distance.
func TestNearestAxisLine_BoundaryAtMaxSnapDistance(t *testing.T) {
	lines := []model.AxisLine{axisLine(model.AxisX, 1.0, 3, 10)}
	idx, ok := NearestAxisLine(1.75, lines, 0.75)
	if !ok || idx != 0 {
		t.Fatalf("NearestAxisLine at exact boundary = (%d, %v), want (0, true)", idx, ok)
	}
}

// TestNearestAxisLine_TieBreakFloorCount checks the documented tie-break:
// two equidistant axis lines resolve to the one with higher floor_count.
func TestNearestAxisLine_TieBreakFloorCount(t *testing.T) {
	lines := []model.AxisLine{
		axisLine(model.AxisX, 0.0, 3, 10),
		axisLine(model.AxisX, 2.0, 6, 10),
	}
	idx, ok := NearestAxisLine(1.0, lines, 5.0)
	if !ok {
		t.Fatalf("expected a match")
	}
	if lines[idx].FloorCount != 6 {
		t.Errorf("chosen axis FloorCount = %d, want 6 (higher floor_count wins tie)", lines[idx].FloorCount)
	}
}

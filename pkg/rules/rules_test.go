package rules

import (
	"testing"

	"structuralign/pkg/config"
	"structuralign/pkg/model"
)

func alignedSlab(id int, z float64, xs, ys [4]float64) AlignedElement {
	el := model.Element{ID: id, Name: "slab", Kind: model.KindSlab, GeometryKind: model.GeometryBrep}
	aligned := make([]model.AlignedVertex, 4)
	for i := range aligned {
		aligned[i] = model.AlignedVertex{ElementID: id, VertexIndex: i, AlignedX: xs[i], AlignedY: ys[i], AlignedZ: z, OriginalZ: z}
	}
	return AlignedElement{Element: el, Aligned: aligned}
}

// TestRun_SlabRemovalAndRoofPreservation mirrors spec scenario 5.
func TestRun_SlabRemovalAndRoofPreservation(t *testing.T) {
	cfg := config.Default()
	cfg.RoofZThreshold = 30.0

	low := alignedSlab(1, 2.12, [4]float64{0, 5, 5, 0}, [4]float64{0, 0, 5, 5})
	roof := alignedSlab(2, 32.36, [4]float64{0, 5, 5, 0}, [4]float64{0, 0, 5, 5})

	res := Run([]AlignedElement{low, roof}, nil, nil, cfg)

	var removedLow, removedRoof bool
	for _, e := range res.Edits {
		if e.Op == model.EditRemove && e.RemoveElementID == 1 {
			removedLow = true
		}
		if e.Op == model.EditRemove && e.RemoveElementID == 2 {
			removedRoof = true
		}
	}
	if !removedLow {
		t.Errorf("expected low slab (z=2.12) to be removed")
	}
	if removedRoof {
		t.Errorf("roof slab (z=32.36) must be preserved, not removed")
	}
}

// TestRun_SlabConsolidationEmitsReplacement checks that a removed slab's
// footprint is consolidated into at least one new Slab.
func TestRun_SlabConsolidationEmitsReplacement(t *testing.T) {
	cfg := config.Default()
	low := alignedSlab(1, 2.12, [4]float64{0, 5, 5, 0}, [4]float64{0, 0, 5, 5})

	res := Run([]AlignedElement{low}, nil, nil, cfg)

	var gotConsolidated bool
	for _, e := range res.Edits {
		if e.Op == model.EditAdd && e.AddKind == model.KindSlab && e.Rule == 4 {
			gotConsolidated = true
		}
	}
	if !gotConsolidated {
		t.Errorf("expected a Rule 4 consolidated slab to be emitted")
	}
}

// TestRun_SupportPlacementNearColumn checks Rule 6 emits a support where
// a column sits near a grid intersection, and none elsewhere.
func TestRun_SupportPlacementNearColumn(t *testing.T) {
	cfg := config.Default()
	cfg.SupportFloorZLevels = []float64{-4.44}
	cfg.ProximityTolerance = 0.5

	col := AlignedElement{
		Element: model.Element{ID: 1, Kind: model.KindColumn},
		Aligned: []model.AlignedVertex{{ElementID: 1, AlignedX: 10.0, AlignedY: 20.0, AlignedZ: -4.44}},
	}
	xLines := []model.AxisLine{{Axis: model.AxisX, Position: 10.0}, {Axis: model.AxisX, Position: 100.0}}
	yLines := []model.AxisLine{{Axis: model.AxisY, Position: 20.0}, {Axis: model.AxisY, Position: 200.0}}

	res := Run([]AlignedElement{col}, xLines, yLines, cfg)

	var supports int
	for _, e := range res.Edits {
		if e.Op == model.EditAdd && e.AddKind == model.KindSupport && e.AddGeometryKind == model.GeometryPoint {
			supports++
		}
	}
	if supports != 1 {
		t.Errorf("got %d point supports, want 1 (only near the column)", supports)
	}
}

// TestRun_CenterlineFollowsSupport checks Rule 7 emits one centerline
// per point support.
func TestRun_CenterlineFollowsSupport(t *testing.T) {
	cfg := config.Default()
	cfg.SupportFloorZLevels = []float64{-4.44}
	cfg.ProximityTolerance = 0.5

	col := AlignedElement{
		Element: model.Element{ID: 1, Kind: model.KindColumn},
		Aligned: []model.AlignedVertex{{ElementID: 1, AlignedX: 10.0, AlignedY: 20.0, AlignedZ: -4.44}},
	}
	xLines := []model.AxisLine{{Axis: model.AxisX, Position: 10.0}}
	yLines := []model.AxisLine{{Axis: model.AxisY, Position: 20.0}}

	res := Run([]AlignedElement{col}, xLines, yLines, cfg)

	var centerlines int
	for _, e := range res.Edits {
		if e.Op == model.EditAdd && e.Rule == 7 {
			centerlines++
		}
	}
	if centerlines == 0 {
		t.Errorf("expected at least one Rule 7 centerline emission")
	}
}

// TestRun_GridLinesPerYAxis checks one grid curve is emitted per Y axis
// line, spanning the full X extent.
func TestRun_GridLinesPerYAxis(t *testing.T) {
	cfg := config.Default()
	el := AlignedElement{
		Element: model.Element{ID: 1, Kind: model.KindColumn},
		Aligned: []model.AlignedVertex{
			{ElementID: 1, AlignedX: -10, AlignedY: 0},
			{ElementID: 1, AlignedX: 10, AlignedY: 0},
		},
	}
	yLines := []model.AxisLine{{Position: 0}, {Position: 5}}

	res := Run([]AlignedElement{el}, nil, yLines, cfg)

	var grid int
	for _, e := range res.Edits {
		if e.Rule == 8 {
			grid++
		}
	}
	if grid != 2 {
		t.Errorf("got %d grid lines, want 2 (one per Y axis line)", grid)
	}
}

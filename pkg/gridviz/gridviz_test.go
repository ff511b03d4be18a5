package gridviz

import (
	"strings"
	"testing"

	"structuralign/pkg/model"
)

func TestToDOT_IncludesAxisLinesAndElements(t *testing.T) {
	xLines := []model.AxisLine{{Axis: model.AxisX, Position: -39.775, FloorCount: 4}}
	yLines := []model.AxisLine{{Axis: model.AxisY, Position: 22.5, FloorCount: 4, Fallback: true}}
	elements := []model.Element{
		{
			ID:   1,
			Name: "COL-1",
			Kind: model.KindColumn,
			Vertices: []model.Vertex{
				{ElementID: 1, VertexIndex: 0, X: -39.775, Y: 22.5, Z: 0},
			},
		},
	}

	dot := ToDOT(xLines, yLines, elements)

	if !strings.Contains(dot, "layout=neato") {
		t.Error("DOT output should request the neato layout engine")
	}
	if !strings.Contains(dot, "X=-39.775") {
		t.Error("DOT output missing X axis line label")
	}
	if !strings.Contains(dot, "Y=22.500") {
		t.Error("DOT output missing Y axis line label")
	}
	if !strings.Contains(dot, "dashed") {
		t.Error("fallback axis line should render dashed")
	}
	if !strings.Contains(dot, "COL-1") {
		t.Error("DOT output missing element label")
	}
}

func TestToDOT_EmptyInput(t *testing.T) {
	dot := ToDOT(nil, nil, nil)
	if !strings.Contains(dot, "graph grid {") {
		t.Error("empty input should still produce a valid graph header")
	}
}

func TestBounds_EmptyFallsBackToUnitBox(t *testing.T) {
	minX, maxX, minY, maxY := bounds(nil, nil, nil)
	if maxX <= minX || maxY <= minY {
		t.Errorf("expected a non-degenerate fallback box, got (%v,%v)-(%v,%v)", minX, minY, maxX, maxY)
	}
}

package rules

import (
	"structuralign/pkg/model"
)

// emitGridLines draws one unnamed horizontal curve per Y axis line,
// spanning the building's full aligned X extent, on a distinguished
// "grid" logical layer — a non-structural visual reference only.
func emitGridLines(elements []AlignedElement, yLines []model.AxisLine) []model.ObjectEdit {
	xMin, xMax, ok := xExtent(elements)
	if !ok {
		return nil
	}

	var edits []model.ObjectEdit
	for _, ay := range yLines {
		edits = append(edits, model.ObjectEdit{
			Op:              model.EditAdd,
			AddKind:         model.KindBeam,
			AddGeometryKind: model.GeometryPolyCurve,
			AddName:         "",
			AddVertices: []model.Vertex{
				{VertexIndex: 0, X: xMin, Y: ay.Position, Z: 0},
				{VertexIndex: 1, X: xMax, Y: ay.Position, Z: 0},
			},
			AddLayerHint: "grid",
			// Grid lines are not one of the seven numbered rules; Rule 8
			// is a sentinel keeping them last in emission order.
			Rule: 8,
		})
	}
	return edits
}

func xExtent(elements []AlignedElement) (xMin, xMax float64, ok bool) {
	first := true
	for _, ae := range elements {
		for _, av := range ae.Aligned {
			if first {
				xMin, xMax = av.AlignedX, av.AlignedX
				first = false
				continue
			}
			xMin = min(xMin, av.AlignedX)
			xMax = max(xMax, av.AlignedX)
		}
	}
	return xMin, xMax, !first
}

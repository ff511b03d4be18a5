package rules

import (
	"fmt"

	"structuralign/pkg/model"
)

// emitCenterlines is Rule 7: for every point SUPPORT emitted by Rule 6,
// emit a vertical centerline spanning from the support's Z to the next
// floor level above it. The curve kind is a purely presentational choice
// preserved for byte-compatibility with the reference output (spec.md
// §9) and carries no structural meaning.
func emitCenterlines(supportAdds []model.ObjectEdit, ladder model.FloorLadder) []model.ObjectEdit {
	var edits []model.ObjectEdit
	nextID := 1
	for _, s := range supportAdds {
		if s.AddGeometryKind != model.GeometryPoint || len(s.AddVertices) != 1 {
			continue // line-curve edge supports have no single centerline origin
		}
		v := s.AddVertices[0]
		zTop, ok := ladder.NextAbove(v.Z, 0.01)
		if !ok {
			continue
		}

		edits = append(edits, model.ObjectEdit{
			Op:              model.EditAdd,
			AddKind:         model.KindBeam,
			AddGeometryKind: centerlineGeometryKind(v.Z, zTop),
			AddName:         fmt.Sprintf("Filaire_%d", nextID),
			AddVertices: []model.Vertex{
				{VertexIndex: 0, X: v.X, Y: v.Y, Z: v.Z},
				{VertexIndex: 1, X: v.X, Y: v.Y, Z: zTop},
			},
			AddLayerHint: "centerlines",
			Rule:         7,
		})
		nextID++
	}
	return edits
}

// centerlineGeometryKind matches the reference output's presentational
// convention: short basement spans are LINE_CURVE, spans starting at
// the 2.12 floor are NURBS_CURVE, everything else is POLY_CURVE.
func centerlineGeometryKind(zBot, zTop float64) model.GeometryKind {
	const basementZ = -4.44
	const lowerFloorZ = 2.12
	height := zTop - zBot

	switch {
	case abs(zBot-basementZ) < 0.1 && height < 3.0:
		return model.GeometryLineCurve
	case abs(zBot-lowerFloorZ) < 0.1:
		return model.GeometryNurbsCurve
	default:
		return model.GeometryPolyCurve
	}
}

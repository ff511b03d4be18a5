package rules

import (
	"fmt"
	"sort"

	"structuralign/pkg/config"
	"structuralign/pkg/model"
)

// placeSupports is Rule 6: for each (x-axis-line, y-axis-line, z-level)
// in the support-floor set, emit a point SUPPORT wherever an aligned
// COLUMN centroid lies within proximityTolerance, deduplicating within
// dedupRadius; pre-existing SUPPORTs whose XY is not on a discovered
// axis position are removed as structurally retired. Also emits the
// small fixed set of line supports along the building's Y edges.
func placeSupports(elements []AlignedElement, xLines, yLines []model.AxisLine, cfg config.Config) ([]model.ObjectEdit, []model.ObjectEdit) {
	columns := columnCentroids(elements)

	var removals []model.ObjectEdit
	removals = append(removals, removeObsoleteSupports(elements, xLines, yLines, cfg.RoundingPrecision)...)

	var adds []model.ObjectEdit
	seen := make(map[[2]int]bool) // dedup key: rounded (x,y) at dedupRadius granularity

	xsSorted := append([]model.AxisLine(nil), xLines...)
	sort.Slice(xsSorted, func(i, j int) bool { return xsSorted[i].Position < xsSorted[j].Position })
	ysSorted := append([]model.AxisLine(nil), yLines...)
	sort.Slice(ysSorted, func(i, j int) bool { return ysSorted[i].Position < ysSorted[j].Position })

	nextID := 1
	for _, z := range sortedCopy(cfg.SupportFloorZLevels) {
		for _, ax := range xsSorted {
			for _, ay := range ysSorted {
				if !hasNearbyColumn(ax.Position, ay.Position, columns, cfg.ProximityTolerance) {
					continue
				}
				key := dedupKey(ax.Position, ay.Position, cfg.DedupRadius)
				if seen[key] {
					continue
				}
				seen[key] = true

				adds = append(adds, model.ObjectEdit{
					Op:              model.EditAdd,
					AddKind:         model.KindSupport,
					AddGeometryKind: model.GeometryPoint,
					AddName:         fmt.Sprintf("Appuis_%d", nextID),
					AddVertices:     []model.Vertex{{X: ax.Position, Y: ay.Position, Z: z}},
					AddLayerHint:    "supports",
					Rule:            6,
				})
				nextID++
			}
		}
	}

	adds = append(adds, lineEdgeSupports(xsSorted, edgeYPositions(elements), &nextID)...)

	return removals, adds
}

func sortedCopy(vs []float64) []float64 {
	out := append([]float64(nil), vs...)
	sort.Float64s(out)
	return out
}

type point2 struct{ x, y float64 }

func columnCentroids(elements []AlignedElement) []point2 {
	var columns []point2
	for _, ae := range elements {
		if ae.Element.Kind != model.KindColumn || len(ae.Aligned) == 0 {
			continue
		}
		var sumX, sumY float64
		for _, av := range ae.Aligned {
			sumX += av.AlignedX
			sumY += av.AlignedY
		}
		n := float64(len(ae.Aligned))
		columns = append(columns, point2{x: sumX / n, y: sumY / n})
	}
	return columns
}

func hasNearbyColumn(x, y float64, columns []point2, tolerance float64) bool {
	for _, c := range columns {
		if abs(c.x-x) <= tolerance && abs(c.y-y) <= tolerance {
			return true
		}
	}
	return false
}

func dedupKey(x, y, dedupRadius float64) [2]int {
	bucket := dedupRadius
	if bucket <= 0 {
		bucket = 1e-6
	}
	return [2]int{int(x / bucket), int(y / bucket)}
}

// removeObsoleteSupports removes pre-existing SUPPORT elements whose
// aligned XY position does not land on any discovered axis-line
// intersection — it has been structurally retired by axis discovery.
func removeObsoleteSupports(elements []AlignedElement, xLines, yLines []model.AxisLine, tol float64) []model.ObjectEdit {
	var edits []model.ObjectEdit
	supports := make([]AlignedElement, 0)
	for _, ae := range elements {
		if ae.Element.Kind == model.KindSupport {
			supports = append(supports, ae)
		}
	}
	sort.Slice(supports, func(i, j int) bool { return supports[i].Element.ID < supports[j].Element.ID })

	for _, ae := range supports {
		if len(ae.Aligned) == 0 {
			continue
		}
		av := ae.Aligned[0]
		if onAxis(av.AlignedX, xLines, tol) && onAxis(av.AlignedY, yLines, tol) {
			continue
		}
		edits = append(edits, model.ObjectEdit{Op: model.EditRemove, RemoveElementID: ae.Element.ID, Rule: 6})
	}
	return edits
}

func onAxis(coord float64, lines []model.AxisLine, tol float64) bool {
	for _, l := range lines {
		if abs(l.Position-coord) <= tol {
			return true
		}
	}
	return false
}

// edgeYPositions returns the building's min/max Y extent across every
// aligned vertex, the two Y positions line supports run along.
func edgeYPositions(elements []AlignedElement) []float64 {
	first := true
	var yMin, yMax float64
	for _, ae := range elements {
		for _, av := range ae.Aligned {
			if first {
				yMin, yMax = av.AlignedY, av.AlignedY
				first = false
				continue
			}
			yMin = min(yMin, av.AlignedY)
			yMax = max(yMax, av.AlignedY)
		}
	}
	if first {
		return nil
	}
	return []float64{yMin, yMax}
}

// lineEdgeSupports places a short LineCurve support along each X axis
// line at each building edge Y position, at the lowest floor level.
func lineEdgeSupports(xLines []model.AxisLine, edgeYs []float64, nextID *int) []model.ObjectEdit {
	const zLevel = -4.44
	const lineLength = 1.0

	var edits []model.ObjectEdit
	for _, ax := range xLines {
		for _, y := range edgeYs {
			edits = append(edits, model.ObjectEdit{
				Op:              model.EditAdd,
				AddKind:         model.KindSupport,
				AddGeometryKind: model.GeometryLineCurve,
				AddName:         fmt.Sprintf("Appuis_%d", *nextID),
				AddVertices: []model.Vertex{
					{VertexIndex: 0, X: ax.Position, Y: y, Z: zLevel},
					{VertexIndex: 1, X: ax.Position, Y: y + lineLength, Z: zLevel},
				},
				AddLayerHint: "supports",
				Rule:         6,
			})
			*nextID++
		}
	}
	return edits
}

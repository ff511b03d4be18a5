// Package snap implements the two-tier nearest-axis-line lookup and the
// per-vertex assignment that turns an element's resolved endpoints into
// AlignedVertex records.
//
// The engine never touches Z: aligned.Z is always a direct copy of
// original.Z, per the Z-immutability invariant.
package snap

import (
	"math"
	"sort"

	"structuralign/pkg/config"
	"structuralign/pkg/endpoint"
	"structuralign/pkg/model"
)

// tieEps is the equidistance tolerance below which two candidate axis
// lines are broken by floor_count/vertex_count/position rather than raw
// distance.
const tieEps = 1e-9

// NearestAxisLine finds the index of the axis line nearest coord among
// lines (sorted ascending by Position) within maxDistance, using a
// binary search to locate the insertion point and comparing only the two
// neighboring candidates. Ties within 1e-9 m are broken by higher
// FloorCount, then higher VertexCount, then lower Position.
func NearestAxisLine(coord float64, lines []model.AxisLine, maxDistance float64) (int, bool) {
	if len(lines) == 0 {
		return -1, false
	}
	idx := sort.Search(len(lines), func(i int) bool { return lines[i].Position >= coord })

	var candidates []int
	if idx-1 >= 0 {
		candidates = append(candidates, idx-1)
	}
	if idx < len(lines) {
		candidates = append(candidates, idx)
	}

	best := -1
	bestDist := math.Inf(1)
	for _, i := range candidates {
		d := math.Abs(coord - lines[i].Position)
		if d > maxDistance {
			continue
		}
		switch {
		case best == -1:
			best, bestDist = i, d
		case d < bestDist-tieEps:
			best, bestDist = i, d
		case math.Abs(d-bestDist) <= tieEps && preferred(lines[i], lines[best]):
			best, bestDist = i, d
		}
	}
	return best, best != -1
}

// preferred reports whether a should be chosen over b when equidistant.
func preferred(a, b model.AxisLine) bool {
	if a.FloorCount != b.FloorCount {
		return a.FloorCount > b.FloorCount
	}
	if a.VertexCount != b.VertexCount {
		return a.VertexCount > b.VertexCount
	}
	return a.Position < b.Position
}

// endpointTarget is the resolved snap outcome for one element endpoint.
type endpointTarget struct {
	position  float64
	lineIdx   int // -1 if unsnapped
	escalated bool
}

// snapEndpoints tries the primary tolerance first, escalating to the
// wider outlier tolerance only when the primary search finds nothing.
func snapEndpoints(positions []float64, lines []model.AxisLine, cfg config.Config) []endpointTarget {
	targets := make([]endpointTarget, len(positions))
	for i, p := range positions {
		if idx, ok := NearestAxisLine(p, lines, cfg.MaxSnapDistance); ok {
			targets[i] = endpointTarget{position: p, lineIdx: idx}
			continue
		}
		if idx, ok := NearestAxisLine(p, lines, cfg.OutlierSnapDistance); ok {
			targets[i] = endpointTarget{position: p, lineIdx: idx, escalated: true}
			continue
		}
		targets[i] = endpointTarget{position: p, lineIdx: -1}
	}
	return targets
}

// Element produces an AlignedVertex for every vertex of a single
// element, given its resolved endpoints and the discovered axis lines.
func Element(vertices []model.Vertex, eps endpoint.Endpoints, xLines, yLines []model.AxisLine, cfg config.Config) []model.AlignedVertex {
	xTargets := snapEndpoints(eps.X, xLines, cfg)
	yTargets := snapEndpoints(eps.Y, yLines, cfg)

	out := make([]model.AlignedVertex, len(vertices))
	for i, v := range vertices {
		alignedX, xIdx := snapAxis(v.X, xTargets, eps.X, xLines, cfg.ClusterRadius)
		alignedY, yIdx := snapAxis(v.Y, yTargets, eps.Y, yLines, cfg.ClusterRadius)

		alignedX = roundTo(alignedX, cfg.RoundingPrecision)
		alignedY = roundTo(alignedY, cfg.RoundingPrecision)

		out[i] = model.AlignedVertex{
			ElementID:    v.ElementID,
			VertexIndex:  v.VertexIndex,
			OriginalX:    v.X,
			OriginalY:    v.Y,
			OriginalZ:    v.Z,
			AlignedX:     alignedX,
			AlignedY:     alignedY,
			AlignedZ:     v.Z,
			AxisLineX:    xIdx,
			AxisLineY:    yIdx,
			Displacement: displacement(v.X, v.Y, v.Z, alignedX, alignedY, v.Z),
		}
	}
	return out
}

// snapAxis resolves one vertex coordinate on one axis against its
// element's endpoint targets, returning the aligned coordinate and the
// index into lines of the chosen AxisLine (-1 if unsnapped).
func snapAxis(coord float64, targets []endpointTarget, endpointPositions []float64, lines []model.AxisLine, clusterRadius float64) (float64, int) {
	if len(targets) == 0 {
		return coord, -1
	}
	i := endpoint.AssignVertex(coord, endpointPositions)
	t := targets[i]
	if t.lineIdx == -1 {
		return coord, -1
	}
	return lines[t.lineIdx].Position, t.lineIdx
}

func displacement(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx, dy, dz := x2-x1, y2-y1, z2-z1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func roundTo(v, precision float64) float64 {
	if precision <= 0 {
		return v
	}
	return math.Round(v/precision) * precision
}

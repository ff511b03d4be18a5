package rules

import (
	"fmt"
	"sort"

	"structuralign/pkg/model"
)

// consolidateSlabs is Rule 4: for each floor level holding removed-slab
// footprints, compute 1-3 consolidated rectangles covering their union
// and emit one new planar Slab per cluster.
//
// Cluster count comes from spatial gaps between footprint centroids
// along whichever axis (X or Y) has the larger spread: gaps greater than
// consolidationGap split the group, capped at 3 clusters per floor
// (spec.md §9 leaves the exact zone shape an open question; the
// gap-threshold rule is the prescribed approximation).
func consolidateSlabs(footprints map[float64][]boundingRect, ladder model.FloorLadder, consolidationGap float64) ([]model.ObjectEdit, []Warning) {
	var edits []model.ObjectEdit
	var warnings []Warning

	floors := make([]float64, 0, len(footprints))
	for z := range footprints {
		floors = append(floors, z)
	}
	sort.Float64s(floors)

	topFloor := float64(0)
	if len(ladder) > 0 {
		topFloor = ladder[len(ladder)-1]
	}

	nextID := 1
	for _, z := range floors {
		if len(ladder) > 0 && z == topFloor {
			continue // the topmost floor is the preserved roof, not consolidated
		}
		rects := footprints[z]
		if len(rects) == 0 {
			warnings = append(warnings, Warning{Code: WarnSlabFootprintUnreconstructable, Message: fmt.Sprintf("floor z=%.2f: no footprints to consolidate", z)})
			continue
		}

		for _, cluster := range clusterRects(rects, consolidationGap) {
			rect := unionRect(cluster)
			name := fmt.Sprintf("Coque_%d", nextID)
			nextID++
			edits = append(edits, model.ObjectEdit{
				Op:              model.EditAdd,
				AddKind:         model.KindSlab,
				AddGeometryKind: model.GeometryBrep,
				AddName:         name,
				AddVertices:     rectVertices(rect),
				Rule:            4,
			})
		}
	}

	return edits, warnings
}

// clusterRects groups footprints by proximity of their centroids along
// the axis with the larger overall spread, splitting at the up-to-two
// largest gaps exceeding consolidationGap (bounding the result to at
// most 3 clusters).
func clusterRects(rects []boundingRect, consolidationGap float64) [][]boundingRect {
	if len(rects) <= 1 {
		return [][]boundingRect{rects}
	}

	xs := make([]float64, len(rects))
	ys := make([]float64, len(rects))
	for i, r := range rects {
		xs[i] = r.centroidX()
		ys[i] = r.centroidY()
	}
	useX := spreadOf(xs) >= spreadOf(ys)

	type indexed struct {
		rect boundingRect
		key  float64
	}
	items := make([]indexed, len(rects))
	for i, r := range rects {
		key := r.centroidY()
		if useX {
			key = r.centroidX()
		}
		items[i] = indexed{rect: r, key: key}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })

	type gap struct {
		afterIdx int
		size     float64
	}
	var gaps []gap
	for i := 1; i < len(items); i++ {
		g := items[i].key - items[i-1].key
		if g > consolidationGap {
			gaps = append(gaps, gap{afterIdx: i, size: g})
		}
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].size > gaps[j].size })
	if len(gaps) > 2 {
		gaps = gaps[:2] // at most 3 resulting clusters
	}

	splitAt := make(map[int]bool, len(gaps))
	for _, g := range gaps {
		splitAt[g.afterIdx] = true
	}

	var clusters [][]boundingRect
	start := 0
	for i := 1; i <= len(items); i++ {
		if i == len(items) || splitAt[i] {
			group := make([]boundingRect, 0, i-start)
			for _, it := range items[start:i] {
				group = append(group, it.rect)
			}
			clusters = append(clusters, group)
			start = i
		}
	}
	return clusters
}

func spreadOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return hi - lo
}

func unionRect(rects []boundingRect) boundingRect {
	r := rects[0]
	for _, other := range rects[1:] {
		r.xMin = min(r.xMin, other.xMin)
		r.xMax = max(r.xMax, other.xMax)
		r.yMin = min(r.yMin, other.yMin)
		r.yMax = max(r.yMax, other.yMax)
	}
	return r
}

// rectVertices returns the four corners of a rectangle as a closed
// planar loop, ordered counter-clockwise.
func rectVertices(r boundingRect) []model.Vertex {
	corners := [][2]float64{
		{r.xMin, r.yMin}, {r.xMax, r.yMin}, {r.xMax, r.yMax}, {r.xMin, r.yMax},
	}
	vertices := make([]model.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = model.Vertex{VertexIndex: i, X: c[0], Y: c[1], Z: r.z}
	}
	return vertices
}

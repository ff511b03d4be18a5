// Package endpoint derives, for each Element, the distinct X and Y
// "endpoint" positions that characterize its topology — one position for
// compact elements (columns, supports), two for elements that span a
// direction (walls, beams along their long axis).
//
// This is the fix for the failure mode of naive per-vertex nearest-axis
// snapping: a spanning wall's two ends must be free to target two
// different axis lines, so the unit of decision is lifted from vertex to
// endpoint before the Snap Engine ever runs.
package endpoint

import (
	"sort"

	"structuralign/pkg/model"
)

// Endpoints holds an element's resolved endpoint positions on each axis,
// each sorted ascending.
type Endpoints struct {
	X []float64
	Y []float64
}

// Resolve derives Endpoints for a single element's vertices according to
// its kind.
func Resolve(kind model.Kind, vertices []model.Vertex, clusterRadius float64) Endpoints {
	if len(vertices) == 0 {
		return Endpoints{}
	}

	xs := make([]float64, len(vertices))
	ys := make([]float64, len(vertices))
	for i, v := range vertices {
		xs[i] = v.X
		ys[i] = v.Y
	}

	switch kind {
	case model.KindColumn, model.KindSupport:
		return Endpoints{X: []float64{mean(xs)}, Y: []float64{mean(ys)}}
	case model.KindWall, model.KindBeam:
		return resolveSpanning(xs, ys, clusterRadius)
	case model.KindSlab:
		// Slabs are removed/consolidated by the object rules directly and
		// never reach the Snap Engine; a single mean endpoint is a safe
		// default if Resolve is ever called on one anyway.
		return Endpoints{X: []float64{mean(xs)}, Y: []float64{mean(ys)}}
	default:
		return Endpoints{X: []float64{mean(xs)}, Y: []float64{mean(ys)}}
	}
}

// resolveSpanning implements the shared WALL/BEAM rule: the axis with
// the larger coordinate range is the element's long dimension and gets
// two (min/max) clustered endpoints; the orthogonal axis gets one.
// When clustering the long axis yields more than two clusters, only the
// lowest and highest are kept. L-shaped elements are not detected: they
// resolve like any other spanning element, with a single endpoint on the
// shorter axis.
func resolveSpanning(xs, ys []float64, clusterRadius float64) Endpoints {
	dx := spread(xs)
	dy := spread(ys)

	if dx > dy {
		return Endpoints{X: outerClusters(xs, clusterRadius), Y: []float64{mean(ys)}}
	}
	return Endpoints{X: []float64{mean(xs)}, Y: outerClusters(ys, clusterRadius)}
}

// outerClusters clusters coords and keeps only the lowest and highest
// cluster.
func outerClusters(coords []float64, clusterRadius float64) []float64 {
	c := cluster(coords, clusterRadius)
	if len(c) > 2 {
		c = []float64{c[0], c[len(c)-1]}
	}
	return c
}

func spread(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// cluster merges coordinates within clusterRadius into chained groups —
// a value joins the current group if it is within clusterRadius of the
// PREVIOUS member (unlike axis discovery's fixed-window merge, this is
// deliberately chained: an element's own vertex cloud is small and dense
// enough that chaining on it is safe, whereas chaining across a whole
// building's vertex set is not). Returns the sorted mean of each group.
func cluster(coords []float64, clusterRadius float64) []float64 {
	if len(coords) == 0 {
		return nil
	}
	sorted := append([]float64(nil), coords...)
	sort.Float64s(sorted)

	var groups [][]float64
	groups = append(groups, []float64{sorted[0]})
	for _, c := range sorted[1:] {
		last := groups[len(groups)-1]
		if c-last[len(last)-1] <= clusterRadius {
			groups[len(groups)-1] = append(last, c)
		} else {
			groups = append(groups, []float64{c})
		}
	}

	endpoints := make([]float64, len(groups))
	for i, g := range groups {
		endpoints[i] = mean(g)
	}
	return endpoints
}

// AssignVertex returns the index into endpoints of the nearest one to
// coord, used to route a single vertex to its endpoint's snap target.
func AssignVertex(coord float64, endpoints []float64) int {
	if len(endpoints) <= 1 {
		return 0
	}
	best := 0
	bestDist := abs(coord - endpoints[0])
	for i := 1; i < len(endpoints); i++ {
		if d := abs(coord - endpoints[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Package axis discovers canonical X and Y axis-line positions from a
// vertex cloud.
//
// The approach is selection, not clustering: a true axis line is a
// position witnessed on enough distinct floors, so the algorithm rounds,
// groups, and counts rather than running a density-based clustering
// pass. This avoids merging two axes that happen to sit a few
// centimeters apart, the failure mode a DBSCAN-style approach would hit.
package axis

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"structuralign/pkg/config"
	"structuralign/pkg/errors"
	"structuralign/pkg/model"
)

// VertexPoint is the minimal per-vertex input Discover needs: a
// coordinate on one axis, plus the Z level it was witnessed at.
type VertexPoint struct {
	Coord float64
	Z     float64
}

// Discover runs axis discovery for both X and Y concurrently and returns
// the two AxisLine lists, each sorted ascending by position.
func Discover(ctx context.Context, vertices []model.Vertex, cfg config.Config) (x, y []model.AxisLine, err error) {
	ladder := cfg.Ladder()

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		x = discoverForAxis(model.AxisX, xPoints(vertices), cfg, ladder)
		return nil
	})
	g.Go(func() error {
		y = discoverForAxis(model.AxisY, yPoints(vertices), cfg, ladder)
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, nil, err
	}
	if len(vertices) > 0 && len(x) == 0 && len(y) == 0 {
		return nil, nil, errors.New(errors.ErrCodeNoAxesFound, "no axis line reached min_floors=%d (or its fallback) on either axis", cfg.MinFloors)
	}
	return x, y, nil
}

func xPoints(vertices []model.Vertex) []VertexPoint {
	pts := make([]VertexPoint, len(vertices))
	for i, v := range vertices {
		pts[i] = VertexPoint{Coord: v.X, Z: v.Z}
	}
	return pts
}

func yPoints(vertices []model.Vertex) []VertexPoint {
	pts := make([]VertexPoint, len(vertices))
	for i, v := range vertices {
		pts[i] = VertexPoint{Coord: v.Y, Z: v.Z}
	}
	return pts
}

// group is the accumulator for one rounded coordinate position prior to
// merge and floor-count filtering.
type group struct {
	pos   float64
	zSet  map[float64]struct{}
	count int
}

// discoverForAxis runs the full discovery pipeline for one axis: round,
// group, merge within cluster_radius, filter by min_floors, falling back
// to min_floors-1 if nothing survives.
func discoverForAxis(axis model.Axis, points []VertexPoint, cfg config.Config, ladder model.FloorLadder) []model.AxisLine {
	groups := roundAndGroup(points, cfg.RoundingPrecision, ladder, cfg.ZTolerance)
	merged := mergeNearby(groups, cfg.ClusterRadius)

	lines := filterByFloorCount(axis, merged, cfg.MinFloors, false)
	if len(lines) == 0 && cfg.MinFloors > 1 {
		lines = filterByFloorCount(axis, merged, cfg.MinFloors-1, true)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	return lines
}

// roundAndGroup rounds each point's coordinate to roundingPrecision and
// accumulates, per rounded position, the set of distinct floor levels
// witnessed (matched against the ladder within zTolerance) and the raw
// vertex count.
func roundAndGroup(points []VertexPoint, roundingPrecision float64, ladder model.FloorLadder, zTolerance float64) []*group {
	index := make(map[float64]*group)
	var order []float64

	for _, p := range points {
		rounded := roundTo(p.Coord, roundingPrecision)
		g, ok := index[rounded]
		if !ok {
			g = &group{pos: rounded, zSet: make(map[float64]struct{})}
			index[rounded] = g
			order = append(order, rounded)
		}
		g.count++
		if floor, matched := matchFloor(p.Z, ladder, zTolerance); matched {
			g.zSet[floor] = struct{}{}
		}
	}

	sort.Float64s(order)
	groups := make([]*group, len(order))
	for i, pos := range order {
		groups[i] = index[pos]
	}
	return groups
}

// matchFloor snaps z to the nearest ladder level within tolerance. If
// the ladder is empty, it falls back to rounding to the nearest 0.1 m so
// that distinct floors still group separately.
func matchFloor(z float64, ladder model.FloorLadder, tolerance float64) (float64, bool) {
	if len(ladder) == 0 {
		return math.Round(z*10) / 10, true
	}
	best := ladder[0]
	bestDist := math.Abs(z - best)
	for _, fz := range ladder[1:] {
		if d := math.Abs(z - fz); d < bestDist {
			best, bestDist = fz, d
		}
	}
	if bestDist <= tolerance {
		return best, true
	}
	return 0, false
}

// mergeNearby coalesces groups within clusterRadius of each other using
// fixed-window anchoring: a window is anchored to its first member's
// position, and every subsequent group within clusterRadius of THAT
// anchor joins it. This is deliberately not chained merging (which would
// let a run of points 1mm apart drift across meters) — the reference
// dataset's false-axis case this guards against is adjacent parallel
// walls a few cm apart.
//
// The merged candidate's position is the vertex-weighted mean of its
// members; its floor set is the union of members' floor sets.
func mergeNearby(groups []*group, clusterRadius float64) []*group {
	if len(groups) == 0 {
		return nil
	}

	var merged []*group
	anchor := groups[0].pos
	weightedSum := groups[0].pos * float64(groups[0].count)
	totalCount := groups[0].count
	zSet := cloneZSet(groups[0].zSet)

	flush := func() {
		pos := anchor
		if totalCount > 0 {
			pos = weightedSum / float64(totalCount)
		}
		merged = append(merged, &group{pos: pos, zSet: zSet, count: totalCount})
	}

	for _, g := range groups[1:] {
		if g.pos-anchor <= clusterRadius {
			weightedSum += g.pos * float64(g.count)
			totalCount += g.count
			for z := range g.zSet {
				zSet[z] = struct{}{}
			}
			continue
		}
		flush()
		anchor = g.pos
		weightedSum = g.pos * float64(g.count)
		totalCount = g.count
		zSet = cloneZSet(g.zSet)
	}
	flush()
	return merged
}

func cloneZSet(src map[float64]struct{}) map[float64]struct{} {
	dst := make(map[float64]struct{}, len(src))
	for z := range src {
		dst[z] = struct{}{}
	}
	return dst
}

// filterByFloorCount keeps merged groups whose floor count is at least
// minFloors, tagging the survivors as fallback when requested. Ties on
// floor_count are broken by (-vertex_count, position) for deterministic
// selection, per spec's tie-break rule — the final ascending-position
// sort happens in the caller.
func filterByFloorCount(axis model.Axis, groups []*group, minFloors int, fallback bool) []model.AxisLine {
	var candidates []model.AxisLine
	for _, g := range groups {
		if len(g.zSet) >= minFloors {
			candidates = append(candidates, model.AxisLine{
				Axis:        axis,
				Position:    g.pos,
				FloorCount:  len(g.zSet),
				VertexCount: g.count,
				Fallback:    fallback,
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].FloorCount != candidates[j].FloorCount {
			return candidates[i].FloorCount > candidates[j].FloorCount
		}
		if candidates[i].VertexCount != candidates[j].VertexCount {
			return candidates[i].VertexCount > candidates[j].VertexCount
		}
		return candidates[i].Position < candidates[j].Position
	})
	return candidates
}

func roundTo(v, precision float64) float64 {
	if precision <= 0 {
		return v
	}
	return math.Round(v/precision) * precision
}

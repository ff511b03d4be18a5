package rules

import (
	"fmt"
	"sort"

	"structuralign/pkg/model"
)

const minWallThickness = 0.15

// wallExtent is a removed wall's planar footprint, captured before
// removal so replacement segments can be emitted per floor span.
type wallExtent struct {
	name               string
	orientationX       bool // true: spans X, constant Y; false: spans Y, constant X
	coordMin, coordMax float64
	crossCoord         float64
	zMin, zMax         float64
	thickness          float64
}

// simplifyWalls is Rule 5: remove every WALL that is multi-face (per
// its ingested FaceCount) or thinner than thinWallThreshold, then emit
// one single-face replacement rectangle per floor span the wall
// intersects, using its aligned (X, Y) extents.
func simplifyWalls(elements []AlignedElement, ladder model.FloorLadder, thinWallThreshold float64) ([]model.ObjectEdit, []model.ObjectEdit) {
	walls := make([]AlignedElement, 0)
	for _, ae := range elements {
		if ae.Element.Kind == model.KindWall {
			walls = append(walls, ae)
		}
	}
	sort.Slice(walls, func(i, j int) bool { return walls[i].Element.ID < walls[j].Element.ID })

	var removals []model.ObjectEdit
	var adds []model.ObjectEdit

	for _, ae := range walls {
		if len(ae.Aligned) == 0 {
			continue
		}
		extent := extractWallExtent(ae)
		multiFace := ae.Element.GeometryKind == model.GeometryBrep && ae.Element.FaceCount >= 2
		thin := extent.thickness < thinWallThreshold
		if !multiFace && !thin {
			continue
		}

		removals = append(removals, model.ObjectEdit{Op: model.EditRemove, RemoveElementID: ae.Element.ID, Rule: 5})

		boundaries := floorBoundaries(extent.zMin, extent.zMax, ladder)
		for i := 0; i < len(boundaries)-1; i++ {
			zBot, zTop := boundaries[i], boundaries[i+1]
			if zTop-zBot < 0.1 {
				continue
			}
			name := extent.name
			if len(boundaries) > 2 {
				name = fmt.Sprintf("%s_%d", extent.name, i)
			}
			adds = append(adds, model.ObjectEdit{
				Op:              model.EditAdd,
				AddKind:         model.KindWall,
				AddGeometryKind: model.GeometryBrep,
				AddName:         name,
				AddVertices:     wallVertices(extent, zBot, zTop),
				Rule:            5,
			})
		}
	}

	return removals, adds
}

func extractWallExtent(ae AlignedElement) wallExtent {
	xs := make([]float64, len(ae.Aligned))
	ys := make([]float64, len(ae.Aligned))
	zs := make([]float64, len(ae.Aligned))
	for i, av := range ae.Aligned {
		xs[i], ys[i], zs[i] = av.AlignedX, av.AlignedY, av.AlignedZ
	}

	xRange := spreadOf(xs)
	yRange := spreadOf(ys)

	e := wallExtent{name: ae.Element.Name, zMin: minOf(zs), zMax: maxOf(zs)}
	if xRange > yRange {
		e.orientationX = true
		e.coordMin, e.coordMax = minOf(xs), maxOf(xs)
		e.crossCoord = (minOf(ys) + maxOf(ys)) / 2
		e.thickness = max(yRange, minWallThickness)
	} else {
		e.orientationX = false
		e.coordMin, e.coordMax = minOf(ys), maxOf(ys)
		e.crossCoord = (minOf(xs) + maxOf(xs)) / 2
		e.thickness = max(xRange, minWallThickness)
	}
	return e
}

// floorBoundaries returns the sorted floor-ladder levels strictly inside
// (zMin, zMax), bracketed by zMin and zMax themselves.
func floorBoundaries(zMin, zMax float64, ladder model.FloorLadder) []float64 {
	const tol = 0.1
	boundaries := []float64{zMin}
	for _, z := range ladder {
		if zMin+tol < z && z < zMax-tol {
			boundaries = append(boundaries, z)
		}
	}
	boundaries = append(boundaries, zMax)
	sort.Float64s(boundaries)
	return dedupeSorted(boundaries)
}

func dedupeSorted(vs []float64) []float64 {
	if len(vs) == 0 {
		return vs
	}
	out := vs[:1]
	for _, v := range vs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func wallVertices(e wallExtent, zBot, zTop float64) []model.Vertex {
	halfT := e.thickness / 2
	var corners [][3]float64
	if e.orientationX {
		corners = [][3]float64{
			{e.coordMin, e.crossCoord - halfT, zBot},
			{e.coordMax, e.crossCoord - halfT, zBot},
			{e.coordMax, e.crossCoord + halfT, zTop},
			{e.coordMin, e.crossCoord + halfT, zTop},
		}
	} else {
		corners = [][3]float64{
			{e.crossCoord - halfT, e.coordMin, zBot},
			{e.crossCoord - halfT, e.coordMax, zBot},
			{e.crossCoord + halfT, e.coordMax, zTop},
			{e.crossCoord + halfT, e.coordMin, zTop},
		}
	}
	vertices := make([]model.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = model.Vertex{VertexIndex: i, X: c[0], Y: c[1], Z: c[2]}
	}
	return vertices
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		m = min(m, v)
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		m = max(m, v)
	}
	return m
}

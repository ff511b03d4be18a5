// Package rules implements the Object Transform Engine: seven
// deterministic object-level rules applied in a fixed order because
// rule 4 consumes footprints captured during rule 3.
//
// Every rule is a pure function of its inputs; nothing here reads a
// clock or iterates an unordered container, per spec's determinism
// requirement.
package rules

import (
	"structuralign/pkg/config"
	"structuralign/pkg/model"
)

// AlignedElement pairs an ingested Element with the AlignedVertex
// records produced for it by the Snap Engine, in the same order as
// Element.Vertices.
type AlignedElement struct {
	Element model.Element
	Aligned []model.AlignedVertex
}

// Warning is a recoverable condition surfaced in the report rather than
// aborting the pipeline, per spec.md §7.
type Warning struct {
	Code    string
	Message string
}

const (
	WarnSlabFootprintUnreconstructable = "SLAB_FOOTPRINT_UNRECONSTRUCTABLE"
)

// Result is everything the Object Transform Engine produces: the
// ordered edit list and any accumulated warnings.
type Result struct {
	Edits    []model.ObjectEdit
	Warnings []Warning
}

// Run applies all seven rules in spec order and returns the combined,
// ordered edit list (first by rule number, then by the rule's own
// natural ordering of its source).
func Run(elements []AlignedElement, xLines, yLines []model.AxisLine, cfg config.Config) Result {
	ladder := cfg.Ladder()

	removed, footprints := removeSlabs(elements, cfg.RoofZThreshold, ladder)
	consolidated, warnings := consolidateSlabs(footprints, ladder, cfg.ConsolidationGap)

	simplifiedRemovals, simplifiedAdds := simplifyWalls(elements, ladder, cfg.ThinWallThreshold)

	supportRemovals, supportAdds := placeSupports(elements, xLines, yLines, cfg)
	centerlines := emitCenterlines(supportAdds, ladder)
	grid := emitGridLines(elements, yLines)

	var edits []model.ObjectEdit
	edits = append(edits, removed...)
	edits = append(edits, consolidated...)
	edits = append(edits, simplifiedRemovals...)
	edits = append(edits, simplifiedAdds...)
	edits = append(edits, supportRemovals...)
	edits = append(edits, supportAdds...)
	edits = append(edits, centerlines...)
	edits = append(edits, grid...)

	return Result{Edits: edits, Warnings: warnings}
}

// boundingRect is an axis-aligned XY footprint at a single Z.
type boundingRect struct {
	xMin, xMax, yMin, yMax, z float64
}

func (r boundingRect) centroidX() float64 { return (r.xMin + r.xMax) / 2 }
func (r boundingRect) centroidY() float64 { return (r.yMin + r.yMax) / 2 }

// matchFloor snaps z to the nearest floor ladder level within tol,
// falling back to z itself (rounded) when no ladder level is close
// enough — mirrors axis discovery's own floor-matching helper, kept as
// a separate copy here since object rules operate on already-aligned
// data with no dependency on the axis package.
func matchFloor(z float64, ladder model.FloorLadder, tol float64) float64 {
	if len(ladder) == 0 {
		return z
	}
	best := ladder[0]
	bestDist := abs(z - best)
	for _, fz := range ladder[1:] {
		if d := abs(z - fz); d < bestDist {
			best, bestDist = fz, d
		}
	}
	if bestDist <= tol {
		return best
	}
	return z
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}


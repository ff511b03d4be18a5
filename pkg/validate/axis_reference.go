package validate

import (
	"fmt"
	"sort"

	"structuralign/pkg/model"
)

// WarnReferenceMissingPosition is spec.md §7's warning code: an axis
// position present in the reference model is absent from the discovered
// set beyond tolerance.
const WarnReferenceMissingPosition = "REFERENCE_MISSING_POSITION"

// AxisRecall is the comparison of one axis's discovered lines against the
// reference model's own axis positions, grounded on
// axis_validator.py: validate_against_reference.
type AxisRecall struct {
	Axis            model.Axis
	DiscoveredCount int
	ReferenceCount  int
	Matched         int
	Recall          float64 // fraction of reference positions matched
	Precision       float64 // fraction of discovered positions matched

	UnmatchedReference  []float64
	UnmatchedDiscovered []float64
}

// CompareAxisToReference checks every reference position against the
// discovered AxisLine set (and vice versa) within tolerance, returning the
// recall/precision metrics the original tool logs per axis.
func CompareAxisToReference(axis model.Axis, discovered []model.AxisLine, referencePositions []float64, tolerance float64) AxisRecall {
	discPos := make([]float64, len(discovered))
	for i, a := range discovered {
		discPos[i] = a.Position
	}
	sort.Float64s(discPos)

	refPos := append([]float64(nil), referencePositions...)
	sort.Float64s(refPos)

	result := AxisRecall{
		Axis:            axis,
		DiscoveredCount: len(discPos),
		ReferenceCount:  len(refPos),
	}

	matchedRef := 0
	for _, p := range refPos {
		if hasMatch(p, discPos, tolerance) {
			matchedRef++
		} else {
			result.UnmatchedReference = append(result.UnmatchedReference, p)
		}
	}
	matchedDisc := 0
	for _, p := range discPos {
		if hasMatch(p, refPos, tolerance) {
			matchedDisc++
		} else {
			result.UnmatchedDiscovered = append(result.UnmatchedDiscovered, p)
		}
	}

	result.Matched = matchedRef
	if len(refPos) > 0 {
		result.Recall = float64(matchedRef) / float64(len(refPos))
	}
	if len(discPos) > 0 {
		result.Precision = float64(matchedDisc) / float64(len(discPos))
	}

	return result
}

// hasMatch reports whether pos lies within tolerance of any entry of a
// sorted candidate slice, via binary search to the nearest neighbor —
// mirroring pkg/snap.NearestAxisLine's search shape.
func hasMatch(pos float64, sortedCandidates []float64, tolerance float64) bool {
	i := sort.SearchFloat64s(sortedCandidates, pos)
	if i < len(sortedCandidates) && sortedCandidates[i]-pos <= tolerance {
		return true
	}
	if i > 0 && pos-sortedCandidates[i-1] <= tolerance {
		return true
	}
	return false
}

// ReferenceMissingWarnings converts every unmatched reference position into
// a REFERENCE_MISSING_POSITION warning, one per position, for the report.
func ReferenceMissingWarnings(recall AxisRecall) []Warning {
	warnings := make([]Warning, 0, len(recall.UnmatchedReference))
	for _, pos := range recall.UnmatchedReference {
		warnings = append(warnings, Warning{
			Code:    WarnReferenceMissingPosition,
			Message: fmt.Sprintf("reference %s=%.4f has no discovered axis line within tolerance", recall.Axis, pos),
		})
	}
	return warnings
}

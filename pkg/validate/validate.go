// Package validate runs the post-alignment assertions of spec.md §4.5:
// critical checks that, if violated, indicate an internal bug and abort
// the pipeline (errors.ErrCodeValidationFailed), plus warning-level
// aggregate checks that are recorded but never abort.
package validate

import (
	"fmt"

	"structuralign/pkg/config"
	"structuralign/pkg/errors"
	"structuralign/pkg/model"
)

// Check is a single named validation outcome, in the teacher's
// PASS/FAIL/WARNING reporting style.
type Check struct {
	Name   string
	Status string // "PASS", "FAIL", "WARNING"
	Detail string
}

// Warning is a non-fatal, machine-readable condition raised by an
// aggregate or reference check — accumulated in the report, never aborts
// the pipeline.
type Warning struct {
	Code    string
	Message string
}

// Result is the complete validation outcome.
type Result struct {
	Passed              bool
	Checks              []Check
	UnalignedVertexKeys []string // "elementID:vertexIndex" for the report
}

// Run executes every check against the aligned vertex stream produced
// by the Snap Engine, given the AxisLine lists it targeted and the
// original vertex count (for the count-preservation check).
func Run(aligned []model.AlignedVertex, xLines, yLines []model.AxisLine, originalCount int, cfg config.Config) (Result, error) {
	result := Result{Passed: true}

	if err := checkZInvariant(aligned, &result); err != nil {
		return result, err
	}
	if err := checkAxisDisplacement(aligned, xLines, yLines, cfg.RoundingPrecision, &result); err != nil {
		return result, err
	}
	checkVertexCountPreserved(aligned, originalCount, &result)
	checkAlignmentRate(aligned, cfg.MinAlignedFraction, &result)

	return result, nil
}

// checkZInvariant is critical: aligned.Z must equal original.Z
// bit-for-bit. Any violation implies an internal bug in the Snap
// Engine and aborts the pipeline.
func checkZInvariant(aligned []model.AlignedVertex, result *Result) error {
	for _, v := range aligned {
		if v.AlignedZ != v.OriginalZ {
			result.Passed = false
			result.Checks = append(result.Checks, Check{
				Name: "z_invariant", Status: "FAIL",
				Detail: fmt.Sprintf("element %d vertex %d: z moved from %v to %v", v.ElementID, v.VertexIndex, v.OriginalZ, v.AlignedZ),
			})
			return errors.New(errors.ErrCodeValidationFailed, "z coordinate modified for element %d vertex %d", v.ElementID, v.VertexIndex)
		}
	}
	result.Checks = append(result.Checks, Check{Name: "z_invariant", Status: "PASS"})
	return nil
}

// checkAxisDisplacement is critical: every snapped coordinate must sit
// within roundingPrecision of its assigned axis line's position.
func checkAxisDisplacement(aligned []model.AlignedVertex, xLines, yLines []model.AxisLine, roundingPrecision float64, result *Result) error {
	for _, v := range aligned {
		if v.SnappedX() {
			if d := abs(v.AlignedX - xLines[v.AxisLineX].Position); d > roundingPrecision {
				result.Passed = false
				result.Checks = append(result.Checks, Check{
					Name: "axis_displacement", Status: "FAIL",
					Detail: fmt.Sprintf("element %d vertex %d: X displacement %v exceeds rounding_precision %v", v.ElementID, v.VertexIndex, d, roundingPrecision),
				})
				return errors.New(errors.ErrCodeValidationFailed, "element %d vertex %d: X displacement exceeds rounding_precision", v.ElementID, v.VertexIndex)
			}
		}
		if v.SnappedY() {
			if d := abs(v.AlignedY - yLines[v.AxisLineY].Position); d > roundingPrecision {
				result.Passed = false
				result.Checks = append(result.Checks, Check{
					Name: "axis_displacement", Status: "FAIL",
					Detail: fmt.Sprintf("element %d vertex %d: Y displacement %v exceeds rounding_precision %v", v.ElementID, v.VertexIndex, d, roundingPrecision),
				})
				return errors.New(errors.ErrCodeValidationFailed, "element %d vertex %d: Y displacement exceeds rounding_precision", v.ElementID, v.VertexIndex)
			}
		}
	}
	result.Checks = append(result.Checks, Check{Name: "axis_displacement", Status: "PASS"})
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// checkVertexCountPreserved is critical: the Snap Engine must emit
// exactly one AlignedVertex per input Vertex.
func checkVertexCountPreserved(aligned []model.AlignedVertex, originalCount int, result *Result) {
	if len(aligned) != originalCount {
		result.Passed = false
		result.Checks = append(result.Checks, Check{
			Name: "vertex_count_preserved", Status: "FAIL",
			Detail: fmt.Sprintf("expected %d, got %d", originalCount, len(aligned)),
		})
		return
	}
	result.Checks = append(result.Checks, Check{Name: "vertex_count_preserved", Status: "PASS"})
}

// checkAlignmentRate is a warning-only aggregate check: the fraction of
// vertices with at least one axis assigned should be >= minAlignedFraction.
func checkAlignmentRate(aligned []model.AlignedVertex, minAlignedFraction float64, result *Result) {
	if len(aligned) == 0 {
		result.Checks = append(result.Checks, Check{Name: "alignment_rate", Status: "PASS", Detail: "no vertices"})
		return
	}

	alignedCount := 0
	for _, v := range aligned {
		if v.SnappedX() || v.SnappedY() {
			alignedCount++
		} else {
			result.UnalignedVertexKeys = append(result.UnalignedVertexKeys, fmt.Sprintf("%d:%d", v.ElementID, v.VertexIndex))
		}
	}
	rate := float64(alignedCount) / float64(len(aligned))

	status := "PASS"
	if rate < minAlignedFraction {
		status = "WARNING"
	}
	result.Checks = append(result.Checks, Check{
		Name: "alignment_rate", Status: status,
		Detail: fmt.Sprintf("%.1f%% aligned (threshold %.1f%%)", rate*100, minAlignedFraction*100),
	})
}

// Package report assembles the structured JSON document spec.md §6
// requires as a persisted artifact: axis counts, per-axis recall (when a
// reference model was supplied), displacement percentiles, per-rule
// addition/removal counts, and the unaligned vertex list.
package report

import (
	"encoding/json"
	"strconv"

	"structuralign/pkg/model"
	"structuralign/pkg/rules"
	"structuralign/pkg/validate"
)

// Warning is the report's own copy of the Code/Message shape shared by
// pkg/rules.Warning and pkg/validate.Warning, so this package doesn't need
// to import both just to re-expose their types.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RuleCounts is the addition/removal tally for a single object rule.
type RuleCounts struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Report is the complete structured document persisted alongside the
// aligned output model.
type Report struct {
	ElementCount     int `json:"element_count"`
	OriginalVertices int `json:"original_vertex_count"`

	AxisLineCountX int `json:"axis_line_count_x"`
	AxisLineCountY int `json:"axis_line_count_y"`

	AxisStatisticsX AxisStatistics `json:"axis_statistics_x"`
	AxisStatisticsY AxisStatistics `json:"axis_statistics_y"`

	Displacement DisplacementStats `json:"displacement"`

	RuleCounts map[int]RuleCounts `json:"rule_counts"`

	UnalignedVertices []string `json:"unaligned_vertices"`
	VertexUnsnappedX  int      `json:"vertex_unsnapped_x"`
	VertexUnsnappedY  int      `json:"vertex_unsnapped_y"`

	ValidationPassed bool             `json:"validation_passed"`
	ValidationChecks []validate.Check `json:"validation_checks"`

	Warnings []Warning `json:"warnings"`

	// Populated only when --reference-model was supplied.
	AxisRecallX *validate.AxisRecall          `json:"axis_recall_x,omitempty"`
	AxisRecallY *validate.AxisRecall          `json:"axis_recall_y,omitempty"`
	Reference   *validate.ReferenceComparison `json:"reference,omitempty"`
}

// Build assembles a Report from the outputs of every pipeline stage. It
// never reads a reference model — call AddReference afterward when
// --reference-model is supplied.
func Build(
	elements []model.Element,
	aligned []model.AlignedVertex,
	xLines, yLines []model.AxisLine,
	rulesResult rules.Result,
	validation validate.Result,
) Report {
	r := Report{
		ElementCount:      len(elements),
		OriginalVertices:  len(aligned),
		AxisLineCountX:    len(xLines),
		AxisLineCountY:    len(yLines),
		RuleCounts:        make(map[int]RuleCounts),
		UnalignedVertices: validation.UnalignedVertexKeys,
		ValidationPassed:  validation.Passed,
		ValidationChecks:  validation.Checks,
	}

	r.AxisStatisticsX = ComputeAxisStatistics(model.AxisX, alignedCoords(aligned, model.AxisX))
	r.AxisStatisticsY = ComputeAxisStatistics(model.AxisY, alignedCoords(aligned, model.AxisY))
	r.Displacement = ComputeDisplacementStats(displacements(aligned))

	for _, v := range aligned {
		if !v.SnappedX() {
			r.VertexUnsnappedX++
		}
		if !v.SnappedY() {
			r.VertexUnsnappedY++
		}
	}

	for _, e := range rulesResult.Edits {
		rc := r.RuleCounts[e.Rule]
		if e.Op == model.EditAdd {
			rc.Added++
		} else {
			rc.Removed++
		}
		r.RuleCounts[e.Rule] = rc
	}

	for _, w := range rulesResult.Warnings {
		r.Warnings = append(r.Warnings, Warning{Code: w.Code, Message: w.Message})
	}
	for _, c := range validation.Checks {
		if c.Status == "WARNING" {
			r.Warnings = append(r.Warnings, Warning{Code: c.Name, Message: c.Detail})
		}
	}
	if r.VertexUnsnappedX > 0 {
		r.Warnings = append(r.Warnings, Warning{
			Code:    errCodeVertexUnsnapped,
			Message: countMessage("X", r.VertexUnsnappedX),
		})
	}
	if r.VertexUnsnappedY > 0 {
		r.Warnings = append(r.Warnings, Warning{
			Code:    errCodeVertexUnsnapped,
			Message: countMessage("Y", r.VertexUnsnappedY),
		})
	}

	return r
}

// errCodeVertexUnsnapped is spec.md §7's recoverable code for an endpoint
// that fell outside outlier_snap_distance and kept its original coordinate.
const errCodeVertexUnsnapped = "VERTEX_UNSNAPPED"

func countMessage(axis string, count int) string {
	return axis + " axis: " + strconv.Itoa(count) + " vertices kept at their original coordinate (outside outlier_snap_distance)"
}

// AddReference folds in the optional reference-model comparisons
// (per-axis recall plus object-level drift) and appends their warnings.
func (r *Report) AddReference(axisRecallX, axisRecallY validate.AxisRecall, cmp validate.ReferenceComparison) {
	r.AxisRecallX = &axisRecallX
	r.AxisRecallY = &axisRecallY
	r.Reference = &cmp

	for _, w := range validate.ReferenceMissingWarnings(axisRecallX) {
		r.Warnings = append(r.Warnings, Warning{Code: w.Code, Message: w.Message})
	}
	for _, w := range validate.ReferenceMissingWarnings(axisRecallY) {
		r.Warnings = append(r.Warnings, Warning{Code: w.Code, Message: w.Message})
	}
	for _, w := range cmp.Warnings {
		r.Warnings = append(r.Warnings, Warning{Code: w.Code, Message: w.Message})
	}
}

// JSON renders the report as indented JSON, the persisted-artifact format
// spec.md §6 names.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func alignedCoords(aligned []model.AlignedVertex, axis model.Axis) []float64 {
	out := make([]float64, 0, len(aligned))
	for _, v := range aligned {
		if axis == model.AxisX {
			out = append(out, v.AlignedX)
		} else {
			out = append(out, v.AlignedY)
		}
	}
	return out
}

func displacements(aligned []model.AlignedVertex) []float64 {
	out := make([]float64, len(aligned))
	for i, v := range aligned {
		out[i] = v.Displacement
	}
	return out
}


package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"structuralign/pkg/axis"
	"structuralign/pkg/config"
	"structuralign/pkg/model"
	"structuralign/pkg/modelio"
	"structuralign/pkg/report"
	"structuralign/pkg/rules"
	"structuralign/pkg/validate"
)

// RunRules applies the Object Transform Engine to the snapped elements.
func RunRules(aligned []rules.AlignedElement, xLines, yLines []model.AxisLine, cfg config.Config) rules.Result {
	return rules.Run(aligned, xLines, yLines, cfg)
}

// RunValidate runs the post-alignment checks against the flattened
// aligned-vertex stream.
func RunValidate(aligned []model.AlignedVertex, xLines, yLines []model.AxisLine, originalCount int, cfg config.Config) (validate.Result, error) {
	return validate.Run(aligned, xLines, yLines, originalCount, cfg)
}

// BuildReport assembles the structured report from every stage's output.
func BuildReport(elements []model.Element, aligned []model.AlignedVertex, xLines, yLines []model.AxisLine, rulesResult rules.Result, validation validate.Result) report.Report {
	return report.Build(elements, aligned, xLines, yLines, rulesResult, validation)
}

// CompareReference runs the optional reference-model comparison: per-axis
// recall/precision against the reference's own discovered axis lines, and
// object-level vertex drift against the reference's own vertices.
//
// The reference's axis lines are discovered fresh from its own vertex
// cloud (rather than read from a precomputed field) so the comparison
// always reflects the same Axis Discovery algorithm under the same cfg,
// mirroring axis_validator.py's use of a freshly computed reference grid.
func CompareReference(ctx context.Context, elements []model.Element, aligned []model.AlignedVertex, xLines, yLines []model.AxisLine, reference []model.Element, cfg config.Config) (validate.AxisRecall, validate.AxisRecall, validate.ReferenceComparison, error) {
	refVertices := flattenVertices(reference)
	refX, refY, err := axis.Discover(ctx, refVertices, cfg)
	if err != nil {
		return validate.AxisRecall{}, validate.AxisRecall{}, validate.ReferenceComparison{}, fmt.Errorf("discover reference axes: %w", err)
	}

	recallX := validate.CompareAxisToReference(model.AxisX, xLines, positions(refX), cfg.ReferenceMatchRadius)
	recallY := validate.CompareAxisToReference(model.AxisY, yLines, positions(refY), cfg.ReferenceMatchRadius)

	output := buildOutputElements(elements, aligned)
	refElements := buildReferenceElements(reference)
	cmp := validate.CompareWithReference(output, refElements, cfg)

	return recallX, recallY, cmp, nil
}

func positions(lines []model.AxisLine) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = l.Position
	}
	return out
}

func buildOutputElements(elements []model.Element, aligned []model.AlignedVertex) []validate.OutputElement {
	alignedByKey := make(map[[2]int]model.AlignedVertex, len(aligned))
	for _, v := range aligned {
		alignedByKey[[2]int{v.ElementID, v.VertexIndex}] = v
	}

	out := make([]validate.OutputElement, len(elements))
	for i, e := range elements {
		vertices := make([]model.Vertex, len(e.Vertices))
		for j, v := range e.Vertices {
			av, ok := alignedByKey[[2]int{v.ElementID, v.VertexIndex}]
			if !ok {
				vertices[j] = v
				continue
			}
			vertices[j] = model.Vertex{
				ElementID:   av.ElementID,
				VertexIndex: av.VertexIndex,
				X:           av.AlignedX,
				Y:           av.AlignedY,
				Z:           av.AlignedZ,
			}
		}
		out[i] = validate.OutputElement{Name: e.Name, Kind: e.Kind, Vertices: vertices}
	}
	return out
}

func buildReferenceElements(reference []model.Element) []validate.ReferenceElement {
	out := make([]validate.ReferenceElement, len(reference))
	for i, e := range reference {
		out[i] = validate.ReferenceElement{Name: e.Name, Kind: e.Kind, Vertices: e.Vertices}
	}
	return out
}

// Materialize writes the aligned output to opts.OutputPath: an enriched
// copy of the input database for FormatDB, or a new model container for
// FormatModel.
func Materialize(opts Options, elements []model.Element, aligned []model.AlignedVertex) error {
	if !opts.ShouldMaterialize() {
		return nil
	}
	switch opts.OutputFormat {
	case FormatDB:
		return materializeDB(opts, aligned)
	case FormatModel:
		return materializeModel(opts, elements, aligned)
	default:
		return fmt.Errorf("materialize: invalid format: %q", opts.OutputFormat)
	}
}

func materializeDB(opts Options, aligned []model.AlignedVertex) error {
	inputVertices, err := modelio.LoadVertices(opts.InputPath)
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}

	alignedByKey := make(map[[2]int]model.AlignedVertex, len(aligned))
	for _, v := range aligned {
		alignedByKey[[2]int{v.ElementID, v.VertexIndex}] = v
	}

	rows := make([]modelio.AlignedDBRow, 0, len(inputVertices))
	for _, iv := range inputVertices {
		av, ok := alignedByKey[[2]int{iv.ElementID, iv.VertexIndex}]
		if !ok {
			continue
		}
		row := modelio.AlignedDBRow{
			ID:                iv.ID,
			X:                 av.AlignedX,
			Y:                 av.AlignedY,
			Z:                 av.AlignedZ,
			OriginalX:         av.OriginalX,
			OriginalY:         av.OriginalY,
			OriginalZ:         av.OriginalZ,
			AlignedAxis:       modelio.AxisLabel(av),
			DisplacementTotal: av.Displacement,
		}
		if av.SnappedX() {
			row.FilXID = strconv.Itoa(av.AxisLineX)
		}
		if av.SnappedY() {
			row.FilYID = strconv.Itoa(av.AxisLineY)
		}
		rows = append(rows, row)
	}

	if err := modelio.WriteAlignedDB(opts.InputPath, opts.OutputPath, rows); err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	return nil
}

func materializeModel(opts Options, elements []model.Element, aligned []model.AlignedVertex) error {
	alignedByKey := make(map[[2]int]model.AlignedVertex, len(aligned))
	for _, v := range aligned {
		alignedByKey[[2]int{v.ElementID, v.VertexIndex}] = v
	}

	out := make([]model.Element, len(elements))
	for i, e := range elements {
		vertices := make([]model.Vertex, len(e.Vertices))
		for j, v := range e.Vertices {
			av, ok := alignedByKey[[2]int{v.ElementID, v.VertexIndex}]
			if !ok {
				vertices[j] = v
				continue
			}
			vertices[j] = model.Vertex{
				ElementID:   av.ElementID,
				VertexIndex: av.VertexIndex,
				X:           av.AlignedX,
				Y:           av.AlignedY,
				Z:           av.AlignedZ,
			}
		}
		out[i] = model.Element{
			ID:           e.ID,
			Name:         e.Name,
			Kind:         e.Kind,
			GeometryKind: e.GeometryKind,
			FaceCount:    e.FaceCount,
			Vertices:     vertices,
		}
	}

	if err := modelio.Export(out, opts.OutputPath); err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	return nil
}

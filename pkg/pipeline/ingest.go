package pipeline

import (
	"fmt"

	"structuralign/pkg/model"
	"structuralign/pkg/modelio"
)

// Ingest loads the element list named by opts.InputPath, dispatching on
// opts.InputFormat.
func Ingest(opts Options) ([]model.Element, error) {
	return ingestPath(opts.InputPath, opts.InputFormat)
}

// IngestReference loads the reference model named by opts.ReferencePath,
// for drift comparison. Returns (nil, nil) if no reference was supplied.
func IngestReference(opts Options) ([]model.Element, error) {
	if !opts.HasReference() {
		return nil, nil
	}
	return ingestPath(opts.ReferencePath, opts.ReferenceFormat)
}

func ingestPath(path, format string) ([]model.Element, error) {
	switch format {
	case FormatDB:
		elements, err := modelio.LoadElements(path)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", path, err)
		}
		return elements, nil
	case FormatModel:
		elements, err := modelio.Import(path)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", path, err)
		}
		return elements, nil
	default:
		return nil, fmt.Errorf("ingest %s: %w", path, fmt.Errorf("invalid format: %q", format))
	}
}

// flattenVertices concatenates every element's vertices in ingestion
// order, the shape every downstream stage (Axis Discovery, endpoint
// resolution) consumes.
func flattenVertices(elements []model.Element) []model.Vertex {
	n := 0
	for _, e := range elements {
		n += len(e.Vertices)
	}
	vertices := make([]model.Vertex, 0, n)
	for _, e := range elements {
		vertices = append(vertices, e.Vertices...)
	}
	return vertices
}

// vertexCoords extracts the raw (x, y, z) triples HashVertexSet needs.
func vertexCoords(vertices []model.Vertex) [][3]float64 {
	coords := make([][3]float64, len(vertices))
	for i, v := range vertices {
		coords[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return coords
}

package pipeline

import (
	"context"

	"structuralign/pkg/axis"
	"structuralign/pkg/config"
	"structuralign/pkg/endpoint"
	"structuralign/pkg/model"
	"structuralign/pkg/rules"
	"structuralign/pkg/snap"
)

// DiscoverAxes runs Axis Discovery over the full vertex cloud. Kept as a
// thin wrapper so the Runner's cache lookup surrounds exactly this call.
func DiscoverAxes(ctx context.Context, vertices []model.Vertex, cfg config.Config) (x, y []model.AxisLine, err error) {
	return axis.Discover(ctx, vertices, cfg)
}

// SnapElements resolves endpoints and snaps every element's vertices
// onto the discovered axis lines, in ingestion order. Returns both the
// per-element pairing rules.Run needs and the flattened AlignedVertex
// stream validate.Run and report.Build need.
func SnapElements(elements []model.Element, xLines, yLines []model.AxisLine, cfg config.Config) ([]rules.AlignedElement, []model.AlignedVertex) {
	aligned := make([]rules.AlignedElement, len(elements))
	var flat []model.AlignedVertex

	for i, e := range elements {
		eps := endpoint.Resolve(e.Kind, e.Vertices, cfg.ClusterRadius)
		av := snap.Element(e.Vertices, eps, xLines, yLines, cfg)
		aligned[i] = rules.AlignedElement{Element: e, Aligned: av}
		flat = append(flat, av...)
	}

	return aligned, flat
}

// regroupByElement rebuilds the per-element AlignedElement pairing from a
// flattened AlignedVertex stream, used when the stream came back from
// cache and the rules.Run stage still needs it grouped by element.
func regroupByElement(elements []model.Element, flat []model.AlignedVertex) []rules.AlignedElement {
	byElement := make(map[int][]model.AlignedVertex, len(elements))
	for _, v := range flat {
		byElement[v.ElementID] = append(byElement[v.ElementID], v)
	}

	out := make([]rules.AlignedElement, len(elements))
	for i, e := range elements {
		out[i] = rules.AlignedElement{Element: e, Aligned: byElement[e.ID]}
	}
	return out
}

// Package gridviz renders the axis grid discovered by the alignment
// pipeline as a Graphviz diagram: X/Y axis lines as pinned straight edges
// and element footprints as pinned point nodes, laid out with the neato
// engine at true coordinates rather than Graphviz's own rank-based
// layout. This is a visual-debugging artifact, not a pipeline output.
package gridviz

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/goccy/go-graphviz"

	"structuralign/pkg/model"
)

// margin extends the drawn grid beyond the tightest axis/vertex bounding
// box so edge axis lines aren't flush with the canvas border.
const margin = 1.0

// ToDOT renders the discovered X/Y axis lines and the footprint (X/Y
// centroid) of every element as a neato-engine DOT graph. xLines and
// yLines may be empty; elements may be nil.
func ToDOT(xLines, yLines []model.AxisLine, elements []model.Element) string {
	minX, maxX, minY, maxY := bounds(xLines, yLines, elements)

	var buf bytes.Buffer
	buf.WriteString("graph grid {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=point, width=0.05];\n")
	buf.WriteString("  edge [color=\"#999999\"];\n\n")

	for i, line := range xLines {
		top := fmt.Sprintf("xt%d", i)
		bot := fmt.Sprintf("xb%d", i)
		fmt.Fprintf(&buf, "  %q [pos=\"%.4f,%.4f!\", label=\"\"];\n", top, line.Position, maxY)
		fmt.Fprintf(&buf, "  %q [pos=\"%.4f,%.4f!\", label=\"\"];\n", bot, line.Position, minY)
		fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=10, style=%s];\n",
			top, bot, fmt.Sprintf("X=%.3f", line.Position), lineStyle(line))
	}
	buf.WriteString("\n")

	for i, line := range yLines {
		left := fmt.Sprintf("yl%d", i)
		right := fmt.Sprintf("yr%d", i)
		fmt.Fprintf(&buf, "  %q [pos=\"%.4f,%.4f!\", label=\"\"];\n", left, minX, line.Position)
		fmt.Fprintf(&buf, "  %q [pos=\"%.4f,%.4f!\", label=\"\"];\n", right, maxX, line.Position)
		fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=10, style=%s];\n",
			left, right, fmt.Sprintf("Y=%.3f", line.Position), lineStyle(line))
	}
	buf.WriteString("\n")

	for i, e := range elements {
		cx, cy, ok := centroid(e)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q [pos=\"%.4f,%.4f!\", shape=box, width=0.15, height=0.15, style=filled, fillcolor=%q, label=%q, fontsize=9];\n",
			fmt.Sprintf("e%d", i), cx, cy, kindColor(e.Kind), e.Name)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func lineStyle(line model.AxisLine) string {
	if line.Fallback {
		return "dashed"
	}
	return "solid"
}

func kindColor(k model.Kind) string {
	switch k {
	case model.KindColumn:
		return "#4C78A8"
	case model.KindWall:
		return "#F58518"
	case model.KindSlab:
		return "#54A24B"
	case model.KindSupport:
		return "#E45756"
	case model.KindBeam:
		return "#B279A2"
	default:
		return "#999999"
	}
}

func centroid(e model.Element) (x, y float64, ok bool) {
	if len(e.Vertices) == 0 {
		return 0, 0, false
	}
	for _, v := range e.Vertices {
		x += v.X
		y += v.Y
	}
	n := float64(len(e.Vertices))
	return x / n, y / n, true
}

func bounds(xLines, yLines []model.AxisLine, elements []model.Element) (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)

	grow := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	for _, l := range xLines {
		grow(l.Position, l.Position)
	}
	for _, l := range yLines {
		grow(l.Position, l.Position)
	}
	for _, e := range elements {
		if cx, cy, ok := centroid(e); ok {
			grow(cx, cy)
		}
	}

	if math.IsInf(minX, 1) {
		return -margin, margin, -margin, margin
	}
	return minX - margin, maxX + margin, minY - margin, maxY + margin
}

// RenderSVG renders a DOT graph produced by [ToDOT] to SVG bytes.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("gridviz: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("gridviz: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("gridviz: render: %w", err)
	}
	return buf.Bytes(), nil
}

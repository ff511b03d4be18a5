package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"structuralign/pkg/config"
	"structuralign/pkg/gridviz"
	"structuralign/pkg/model"
	"structuralign/pkg/modelio"
	"structuralign/pkg/pipeline"
)

// gridCommand renders the discovered axis grid for visual debugging —
// not a pipeline output, just a diagnostic artifact.
func (c *CLI) gridCommand() *cobra.Command {
	var (
		inputModel string
		inputDB    string
		output     string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Render the discovered axis grid as a Graphviz diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputModel == "" && inputDB == "" {
				return fmt.Errorf("one of --input-model or --input-db is required")
			}

			var elements []model.Element
			var err error
			if inputModel != "" {
				elements, err = modelio.Import(inputModel)
			} else {
				elements, err = modelio.LoadElements(inputDB)
			}
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			var vertices []model.Vertex
			for _, e := range elements {
				vertices = append(vertices, e.Vertices...)
			}

			xLines, yLines, err := pipeline.DiscoverAxes(context.Background(), vertices, config.Default())
			if err != nil {
				return fmt.Errorf("discover axes: %w", err)
			}

			dot := gridviz.ToDOT(xLines, yLines, elements)

			switch strings.ToLower(format) {
			case "dot":
				return writeOutput(output, []byte(dot))
			case "svg", "":
				svg, err := gridviz.RenderSVG(dot)
				if err != nil {
					return fmt.Errorf("render: %w", err)
				}
				return writeOutput(output, svg)
			default:
				return fmt.Errorf("unsupported --format %q (want dot or svg)", format)
			}
		},
	}

	cmd.Flags().StringVar(&inputModel, "input-model", "", "input model container path")
	cmd.Flags().StringVar(&inputDB, "input-db", "", "input structural database path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "svg", "output format: dot or svg")

	return cmd
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

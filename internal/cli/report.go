package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reportCommand prints a previously persisted run's report.
func (c *CLI) reportCommand() *cobra.Command {
	var jsonOut string
	var limit int

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Print a past alignment run's report, or list recent runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newRunStore()
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			if len(args) == 0 {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list runs: %w", err)
				}
				if len(runs) == 0 {
					printInfo("no recorded runs")
					return nil
				}
				for _, run := range runs {
					printKeyValue(run.ID, fmt.Sprintf("%s  %s  elements=%d", run.StartedAt.Format("2006-01-02 15:04:05"), run.Status, run.Report.ElementCount))
				}
				return nil
			}

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get run %s: %w", args[0], err)
			}

			if jsonOut != "" {
				if err := writeJSONFile(jsonOut, run.Report); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				printFile(jsonOut)
				return nil
			}

			printKeyValue("input", run.InputPath)
			printKeyValue("started", run.StartedAt.Format("2006-01-02 15:04:05"))
			printKeyValue("duration", run.Duration.String())
			printKeyValue("elements", fmt.Sprintf("%d", run.Report.ElementCount))
			printKeyValue("axis lines (X/Y)", fmt.Sprintf("%d / %d", run.Report.AxisLineCountX, run.Report.AxisLineCountY))
			printKeyValue("validation", fmt.Sprintf("passed=%v", run.Report.ValidationPassed))
			if run.Report.Reference != nil {
				printKeyValue("reference match rate", fmt.Sprintf("%.1f%%", run.Report.Reference.OverallMatchRate))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonOut, "json", "", "write the full report as JSON to this path instead of printing a summary")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list when no run ID is given")

	return cmd
}

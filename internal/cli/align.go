package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"structuralign/pkg/config"
	"structuralign/pkg/errors"
	"structuralign/pkg/pipeline"
	"structuralign/pkg/runstore"
)

// alignOpts holds the --align flags, named after spec.md §6's CLI
// surface.
type alignOpts struct {
	inputModel          string
	inputDB             string
	output              string
	referenceModel      string
	maxSnapDistance     float64
	outlierSnapDistance float64
	minFloors           int
	roundingPrecision   float64
	logLevel            string
	noCache             bool
	refresh             bool
	reportPath          string
}

func (c *CLI) alignCommand() *cobra.Command {
	opts := alignOpts{}

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Discover the column grid and snap element endpoints onto it",
		Long: `align runs the full alignment pipeline: ingest a structural model or
database, discover canonical X/Y axis lines from its vertex cloud, snap
every element's endpoints onto them, apply the seven object-level
transform rules, and validate the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(cmd, c, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputModel, "input-model", "", "input model container path")
	cmd.Flags().StringVar(&opts.inputDB, "input-db", "", "input structural database path")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "aligned output path (same format family as the input)")
	cmd.Flags().StringVar(&opts.referenceModel, "reference-model", "", "reference model for drift comparison")
	cmd.Flags().Float64Var(&opts.maxSnapDistance, "max-snap-distance", 0, "override max_snap_distance (0 keeps the configured default)")
	cmd.Flags().Float64Var(&opts.outlierSnapDistance, "outlier-snap-distance", 0, "override outlier_snap_distance (0 keeps the configured default)")
	cmd.Flags().IntVar(&opts.minFloors, "min-floors", 0, "override min_floors (0 keeps the configured default)")
	cmd.Flags().Float64Var(&opts.roundingPrecision, "rounding-precision", 0, "override rounding_precision (0 keeps the configured default)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the axis/snap result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache for this run, still writing a fresh entry")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write the structured report as JSON to this path")

	return cmd
}

func runAlign(cmd *cobra.Command, c *CLI, opts *alignOpts) error {
	if opts.inputModel == "" && opts.inputDB == "" {
		return errors.New(errors.ErrCodeInvalidInput, "one of --input-model or --input-db is required")
	}
	if opts.inputModel != "" && opts.inputDB != "" {
		return errors.New(errors.ErrCodeInvalidInput, "--input-model and --input-db are mutually exclusive")
	}

	if err := applyLogLevel(c, opts.logLevel); err != nil {
		return err
	}

	pOpts := pipeline.Options{OutputPath: opts.output, Config: config.Default(), Refresh: opts.refresh}
	if opts.inputModel != "" {
		pOpts.InputPath, pOpts.InputFormat = opts.inputModel, pipeline.FormatModel
	} else {
		pOpts.InputPath, pOpts.InputFormat = opts.inputDB, pipeline.FormatDB
	}
	if opts.referenceModel != "" {
		pOpts.ReferencePath, pOpts.ReferenceFormat = opts.referenceModel, pipeline.FormatModel
	}
	applyOverrides(&pOpts.Config, opts)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer runner.Close()
	pOpts.Logger = c.Logger

	start := time.Now()
	var result *pipeline.Result
	execErr := withSpinner(cmd.Context(), "aligning elements", func() error {
		var runErr error
		result, runErr = runner.Execute(cmd.Context(), pOpts)
		return runErr
	})
	duration := time.Since(start)
	if execErr != nil {
		printError("alignment failed: %v", execErr)
		return execErr
	}

	printSummary(result, duration)

	if opts.reportPath != "" {
		if err := writeReportJSON(result, opts.reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		printFile(opts.reportPath)
	}
	if opts.output != "" {
		printFile(opts.output)
	}

	if err := recordRun(cmd, opts, pOpts, result, duration); err != nil {
		c.Logger.Warn("failed to persist run record", "error", err)
	}

	if !result.Validation.Passed {
		return errors.New(errors.ErrCodeValidationFailed, "post-alignment validation failed")
	}
	return nil
}

func applyOverrides(cfg *config.Config, opts *alignOpts) {
	if opts.maxSnapDistance > 0 {
		cfg.MaxSnapDistance = opts.maxSnapDistance
	}
	if opts.outlierSnapDistance > 0 {
		cfg.OutlierSnapDistance = opts.outlierSnapDistance
	}
	if opts.minFloors > 0 {
		cfg.MinFloors = opts.minFloors
	}
	if opts.roundingPrecision > 0 {
		cfg.RoundingPrecision = opts.roundingPrecision
	}
}

func applyLogLevel(c *CLI, level string) error {
	switch level {
	case "debug":
		c.SetLogLevel(log.DebugLevel)
	case "info", "":
		c.SetLogLevel(log.InfoLevel)
	case "warn", "warning":
		c.SetLogLevel(log.WarnLevel)
	case "error":
		c.SetLogLevel(log.ErrorLevel)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown --log-level %q", level)
	}
	return nil
}

func printSummary(result *pipeline.Result, duration time.Duration) {
	printInfo("alignment complete (%s)", duration.Round(time.Millisecond))
	printKeyValue("elements", fmt.Sprintf("%d", result.Stats.ElementCount))
	printKeyValue("axis lines (X/Y)", fmt.Sprintf("%d / %d", len(result.AxisLinesX), len(result.AxisLinesY)))
	printKeyValue("unsnapped (X/Y)", fmt.Sprintf("%d / %d", result.Report.VertexUnsnappedX, result.Report.VertexUnsnappedY))
	printKeyValue("edits (add/remove)", fmt.Sprintf("%d total", len(result.Rules.Edits)))
	if result.Validation.Passed {
		printSuccess("validation passed")
	} else {
		printError("validation failed")
		for _, check := range result.Validation.Checks {
			if check.Status == "FAIL" {
				printDetail("%s: %s", check.Name, check.Detail)
			}
		}
	}
	for _, w := range result.Rules.Warnings {
		printWarning("%s: %s", w.Code, w.Message)
	}
}

func writeReportJSON(result *pipeline.Result, path string) error {
	return writeJSONFile(path, result.Report)
}

func recordRun(cmd *cobra.Command, opts *alignOpts, pOpts pipeline.Options, result *pipeline.Result, duration time.Duration) error {
	id, err := runstore.NewID()
	if err != nil {
		return err
	}
	store, err := newRunStore()
	if err != nil {
		return err
	}
	defer store.Close()

	status := runstore.StatusCompleted
	if !result.Validation.Passed {
		status = runstore.StatusFailed
	}
	run := &runstore.Run{
		ID:        id,
		InputPath: pOpts.InputPath,
		Config:    pOpts.Config,
		StartedAt: time.Now().Add(-duration),
		Duration:  duration,
		Report:    result.Report,
		Status:    status,
	}
	return store.Save(cmd.Context(), run)
}

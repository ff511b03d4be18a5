// Package pipeline provides the core alignment pipeline for
// structuralign.
//
// This package implements the complete ingest → align → transform →
// validate → report flow that the CLI and the HTTP API both use. By
// centralizing this logic, we ensure consistent behavior across every
// entry point and avoid duplicating the cache-key and stage-timing
// bookkeeping in each caller.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Ingest: load elements from a structural database or model container
//  2. Axis Discovery: find canonical X/Y axis-line positions
//  3. Snap: resolve element endpoints and snap them onto the axis lines
//  4. Transform: apply the seven object-level rules, producing edits
//  5. Validate: run the post-alignment invariant and aggregate checks
//
// A Report is assembled from the last three stages' outputs, optionally
// folding in a reference-model comparison.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{InputPath: "building.db"}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.AxisLineCountX)
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"structuralign/pkg/cache"
	"structuralign/pkg/config"
	"structuralign/pkg/model"
	"structuralign/pkg/report"
	"structuralign/pkg/rules"
	"structuralign/pkg/validate"
)

// Format constants for the two ingestible/materializable shapes.
const (
	FormatDB    = "db"    // SQLite structural database (PRD schema)
	FormatModel = "model" // gob+gzip binary model container
)

// ValidFormats is the set of supported ingest/output formats.
var ValidFormats = map[string]bool{
	FormatDB:    true,
	FormatModel: true,
}

// ValidateFormat checks that a format is one Ingest/Materialize understands.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: db, model)", format)
	}
	return nil
}

// DetectFormat infers a format from a file extension: ".db"/".sqlite" is
// FormatDB, everything else (including ".model"/".bin") is FormatModel.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatDB
	default:
		return FormatModel
	}
}

// Options contains all configuration for the alignment pipeline. This
// struct supports JSON serialization for API requests.
type Options struct {
	// Ingest options
	InputPath   string `json:"input_path"`
	InputFormat string `json:"input_format,omitempty"`

	// Reference comparison (optional)
	ReferencePath   string `json:"reference_path,omitempty"`
	ReferenceFormat string `json:"reference_format,omitempty"`

	// Materialize options. OutputPath is empty when the caller only wants
	// the in-memory Result (e.g. the HTTP API).
	OutputPath   string `json:"output_path,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`

	// Tunables. A zero-value Config (RoundingPrecision == 0) is replaced
	// by config.Default() during ValidateAndSetDefaults.
	Config config.Config `json:"config"`

	// Refresh bypasses the Axis Discovery and Snap Engine caches.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Elements is the ingested element list, unchanged by alignment.
	Elements []model.Element

	// Aligned holds every vertex's snapped coordinates, in ingestion order.
	Aligned []model.AlignedVertex

	// AxisLinesX and AxisLinesY are the discovered canonical axis lines.
	AxisLinesX []model.AxisLine
	AxisLinesY []model.AxisLine

	// Rules is the Object Transform Engine's ordered edit list.
	Rules rules.Result

	// Validation is the post-alignment check outcome.
	Validation validate.Result

	// Report is the structured document assembled from the above.
	Report report.Report

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount int
	VertexCount  int

	IngestTime    time.Duration
	AxisTime      time.Duration
	SnapTime      time.Duration
	TransformTime time.Duration
	ValidateTime  time.Duration
}

// CacheInfo tracks cache hits for each memoizable pipeline stage.
type CacheInfo struct {
	AxisHit bool // Whether Axis Discovery's result came from cache
	SnapHit bool // Whether the Snap Engine's result came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent — calling it multiple
// times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForIngest(); err != nil {
		return err
	}
	o.SetReferenceDefaults()
	o.SetOutputDefaults()
	o.validated = true
	return nil
}

// ValidateForIngest checks required fields for the ingest stage and
// applies its defaults.
func (o *Options) ValidateForIngest() error {
	if o.InputPath == "" {
		return fmt.Errorf("input_path is required")
	}
	if o.InputFormat == "" {
		o.InputFormat = DetectFormat(o.InputPath)
	}
	if err := ValidateFormat(o.InputFormat); err != nil {
		return err
	}
	if o.Config.RoundingPrecision == 0 {
		o.Config = config.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetReferenceDefaults fills in ReferenceFormat from ReferencePath's
// extension when a reference model was supplied without an explicit
// format.
func (o *Options) SetReferenceDefaults() {
	if o.ReferencePath != "" && o.ReferenceFormat == "" {
		o.ReferenceFormat = DetectFormat(o.ReferencePath)
	}
}

// SetOutputDefaults fills in OutputFormat from OutputPath's extension
// when materialization was requested without an explicit format.
func (o *Options) SetOutputDefaults() {
	if o.OutputPath != "" && o.OutputFormat == "" {
		o.OutputFormat = DetectFormat(o.OutputPath)
	}
}

// HasReference reports whether a reference model was supplied for
// drift comparison.
func (o *Options) HasReference() bool {
	return o.ReferencePath != ""
}

// ShouldMaterialize reports whether the aligned output should be
// written to disk.
func (o *Options) ShouldMaterialize() bool {
	return o.OutputPath != ""
}

// AxisKeyOpts returns the cache key options for Axis Discovery.
func (o *Options) AxisKeyOpts() cache.AxisKeyOpts {
	return cache.AxisKeyOpts{
		RoundingPrecision: o.Config.RoundingPrecision,
		ClusterRadius:     o.Config.ClusterRadius,
		MinFloors:         o.Config.MinFloors,
	}
}

// SnapKeyOpts returns the cache key options for the Snap Engine.
func (o *Options) SnapKeyOpts() cache.SnapKeyOpts {
	return cache.SnapKeyOpts{
		MaxSnapDistance:     o.Config.MaxSnapDistance,
		OutlierSnapDistance: o.Config.OutlierSnapDistance,
	}
}

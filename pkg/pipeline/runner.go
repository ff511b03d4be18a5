package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"structuralign/pkg/cache"
	"structuralign/pkg/model"
	"structuralign/pkg/report"
	"structuralign/pkg/rules"
)

// Runner encapsulates pipeline execution with caching. Both the CLI and
// the HTTP API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger — it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete ingest → align → transform → validate
// pipeline with caching, and materializes the aligned output when
// opts.OutputPath is set.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Ingest
	ingestStart := time.Now()
	elements, err := Ingest(opts)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	result.Elements = elements
	result.Stats.IngestTime = time.Since(ingestStart)
	result.Stats.ElementCount = len(elements)
	vertices := flattenVertices(elements)
	result.Stats.VertexCount = len(vertices)

	r.Logger.Info("ingested model",
		"elements", len(elements),
		"vertices", len(vertices),
		"duration", result.Stats.IngestTime)

	// Stage 2: Axis Discovery
	axisStart := time.Now()
	xLines, yLines, axisHit, err := r.discoverAxesWithCacheInfo(ctx, vertices, opts)
	if err != nil {
		return nil, fmt.Errorf("axis discovery: %w", err)
	}
	result.AxisLinesX = xLines
	result.AxisLinesY = yLines
	result.Stats.AxisTime = time.Since(axisStart)
	result.CacheInfo.AxisHit = axisHit

	r.Logger.Info("discovered axes",
		"x_lines", len(xLines),
		"y_lines", len(yLines),
		"duration", result.Stats.AxisTime)

	// Stage 3: Snap Engine
	snapStart := time.Now()
	alignedElements, aligned, snapHit, err := r.snapElementsWithCacheInfo(ctx, elements, xLines, yLines, opts)
	if err != nil {
		return nil, fmt.Errorf("snap: %w", err)
	}
	result.Aligned = aligned
	result.Stats.SnapTime = time.Since(snapStart)
	result.CacheInfo.SnapHit = snapHit

	r.Logger.Info("snapped endpoints",
		"vertices", len(aligned),
		"duration", result.Stats.SnapTime)

	// Stage 4: Object Transform Engine
	transformStart := time.Now()
	rulesResult := RunRules(alignedElements, xLines, yLines, opts.Config)
	result.Rules = rulesResult
	result.Stats.TransformTime = time.Since(transformStart)

	r.Logger.Info("applied object rules", "edits", len(rulesResult.Edits))

	// Stage 5: Validate
	validateStart := time.Now()
	validation, err := RunValidate(aligned, xLines, yLines, len(vertices), opts.Config)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Validation = validation
	result.Stats.ValidateTime = time.Since(validateStart)

	r.Logger.Info("validated alignment", "passed", validation.Passed, "duration", result.Stats.ValidateTime)

	// Report
	rep := BuildReport(elements, aligned, xLines, yLines, rulesResult, validation)
	if opts.HasReference() {
		if err := r.addReferenceComparison(ctx, &rep, elements, aligned, xLines, yLines, opts); err != nil {
			return nil, fmt.Errorf("reference comparison: %w", err)
		}
	}
	result.Report = rep

	// Materialize (optional)
	if err := Materialize(opts, elements, aligned); err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}

	return result, nil
}

func (r *Runner) addReferenceComparison(ctx context.Context, rep *report.Report, elements []model.Element, aligned []model.AlignedVertex, xLines, yLines []model.AxisLine, opts Options) error {
	reference, err := IngestReference(opts)
	if err != nil {
		return err
	}
	recallX, recallY, cmp, err := CompareReference(ctx, elements, aligned, xLines, yLines, reference, opts.Config)
	if err != nil {
		return err
	}
	rep.AddReference(recallX, recallY, cmp)
	return nil
}

// axisLinesPayload is the cache wire format for an Axis Discovery result.
type axisLinesPayload struct {
	X []model.AxisLine `json:"x"`
	Y []model.AxisLine `json:"y"`
}

// discoverAxesWithCacheInfo runs Axis Discovery with caching and returns
// cache hit info.
func (r *Runner) discoverAxesWithCacheInfo(ctx context.Context, vertices []model.Vertex, opts Options) (x, y []model.AxisLine, hit bool, err error) {
	vertexHash := cache.HashVertexSet(vertexCoords(vertices))
	cacheKey := r.Keyer.AxisKey(vertexHash, opts.AxisKeyOpts())

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			var payload axisLinesPayload
			if err := json.Unmarshal(data, &payload); err == nil {
				return payload.X, payload.Y, true, nil
			}
		}
	}

	x, y, err = DiscoverAxes(ctx, vertices, opts.Config)
	if err != nil {
		return nil, nil, false, err
	}

	if !opts.Refresh {
		if data, err := json.Marshal(axisLinesPayload{X: x, Y: y}); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLAxis)
		}
	}
	return x, y, false, nil
}

// snapElementsWithCacheInfo runs the Snap Engine with caching and returns
// cache hit info. Only the flattened AlignedVertex stream is cached; the
// rules.AlignedElement pairing (a cheap regrouping by element) is always
// rebuilt locally from the elements list and the cached/fresh stream.
func (r *Runner) snapElementsWithCacheInfo(ctx context.Context, elements []model.Element, xLines, yLines []model.AxisLine, opts Options) ([]rules.AlignedElement, []model.AlignedVertex, bool, error) {
	vertices := flattenVertices(elements)
	axisHash := cache.Hash(mustMarshal(axisLinesPayload{X: xLines, Y: yLines}))
	vertexHash := cache.HashVertexSet(vertexCoords(vertices))
	cacheKey := r.Keyer.SnapKey(axisHash+":"+vertexHash, opts.SnapKeyOpts())

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			var flat []model.AlignedVertex
			if err := json.Unmarshal(data, &flat); err == nil {
				return regroupByElement(elements, flat), flat, true, nil
			}
		}
	}

	alignedElements, flat := SnapElements(elements, xLines, yLines, opts.Config)

	if !opts.Refresh {
		if data, err := json.Marshal(flat); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSnap)
		}
	}
	return alignedElements, flat, false, nil
}

func mustMarshal(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

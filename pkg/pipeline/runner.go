package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowlens/flowlens/pkg/cache"
	flowio "github.com/flowlens/flowlens/pkg/io"
	"github.com/flowlens/flowlens/pkg/lineage"
	"github.com/flowlens/flowlens/pkg/render/document"
	"github.com/flowlens/flowlens/pkg/render/dot"
)

// Runner encapsulates pipeline execution with artifact caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Close releases the runner's cache resources.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute runs the complete load → infer → layer → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{Hits: make(map[string]bool)},
	}

	// Stage 1: Load. The file is read once and the same bytes feed both
	// the content hash and the decoder, so cached artifacts always match
	// the document that produced them.
	loadStart := time.Now()
	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	result.InputHash = cache.Hash(raw)

	f, err := flowio.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", opts.Input, err)
	}
	result.Flow = f
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = f.NodeCount()
	result.Stats.EdgeCount = f.EdgeCount()

	logger.Info("loaded flow",
		"nodes", f.NodeCount(),
		"edges", f.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyze
	inferStart := time.Now()
	result.Links = lineage.Infer(f)
	result.Levels = lineage.AssignLevels(f, result.Links)
	result.Stats.InferTime = time.Since(inferStart)
	result.Stats.LinkCount = len(result.Links)

	if result.Levels.HasCycle() {
		logger.Warn("dependency cycle detected; affected nodes placed in final level",
			"nodes", result.Levels.Unresolved)
	}

	logger.Info("inferred lineage",
		"links", len(result.Links),
		"levels", len(result.Levels.Groups),
		"duration", result.Stats.InferTime)

	// Stage 3: Render
	renderStart := time.Now()
	payload := document.BuildPayload(f, result.Links, result.Levels)
	for _, format := range opts.Formats {
		data, hit, err := r.renderArtifact(ctx, format, result, payload, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
		result.CacheInfo.Hits[format] = hit
	}
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) renderArtifact(ctx context.Context, format string, result *Result, payload document.Payload, opts Options) ([]byte, bool, error) {
	key := cache.ArtifactKey(result.InputHash, opts.artifactKeyOpts(format))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	data, err := r.render(ctx, format, result, payload, opts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, ArtifactTTL); err != nil {
		// A failed cache write costs a re-render next time, nothing more.
		opts.Logger.Debug("cache write failed", "key", key, "err", err)
	}
	return data, false, nil
}

func (r *Runner) render(ctx context.Context, format string, result *Result, payload document.Payload, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return document.RenderHTML(payload,
			document.WithTitle(opts.Title),
			document.WithCurveOffset(*opts.CurveOffset))
	case FormatJSON:
		return document.RenderJSON(payload)
	case FormatDOT:
		d := dot.ToDOT(result.Flow, result.Links, dot.Options{Detailed: opts.Detailed})
		return []byte(d), nil
	case FormatSVG:
		d := dot.ToDOT(result.Flow, result.Links, dot.Options{Detailed: opts.Detailed})
		return dot.RenderSVG(ctx, d)
	case FormatPNG:
		d := dot.ToDOT(result.Flow, result.Links, dot.Options{Detailed: opts.Detailed})
		return dot.RenderPNG(ctx, d)
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}

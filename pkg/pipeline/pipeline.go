// Package pipeline provides the core lineage pipeline for Flowlens.
//
// This package implements the complete load → infer → layer → render
// sequence used by the CLI commands (render, inspect, serve). Centralizing
// it ensures all entry points agree on catalog construction, inference
// semantics, and artifact caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: decode the flow definition and build the field catalog
//  2. Analyze: infer field links and assign layout levels
//  3. Render: generate output artifacts (HTML, JSON, DOT, SVG, PNG)
//
// The stages run as a single sequential batch pass; no shared mutable
// state crosses stage boundaries except the data explicitly passed
// forward.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "flow.json",
//	    Formats: []string{pipeline.FormatHTML},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts[pipeline.FormatHTML]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowlens/flowlens/pkg/cache"
	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/lineage"
	"github.com/flowlens/flowlens/pkg/render/document"
)

// Format constants for output artifacts.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ArtifactTTL is how long rendered artifacts stay in the cache.
const ArtifactTTL = 7 * 24 * time.Hour

// Options contains all configuration for the lineage pipeline.
type Options struct {
	// Input is the path of the flow definition document.
	Input string `json:"input"`

	// Formats lists the artifacts to render. Defaults to html.
	Formats []string `json:"formats,omitempty"`

	// Title overrides the HTML document title.
	Title string `json:"title,omitempty"`

	// CurveOffset overrides the connector curve control offset. Nil means
	// the document default; an explicit zero draws near-straight
	// connectors.
	CurveOffset *int `json:"curve_offset,omitempty"`

	// Detailed includes node types and field counts in DOT labels.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh bypasses the artifact cache and re-renders.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives progress and warnings. Defaults to a discard logger.
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: html, json, dot, svg, png)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Title == "" {
		o.Title = document.DefaultTitle
	}
	if o.CurveOffset == nil {
		def := document.DefaultCurveOffset
		o.CurveOffset = &def
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// artifactKeyOpts returns the cache key options for one format.
func (o *Options) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Title:       o.Title,
		CurveOffset: *o.CurveOffset,
		Detailed:    o.Detailed,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Flow is the field catalog with inferred-source annotations applied.
	Flow *flow.Flow

	// Links is the complete inferred link set.
	Links []flow.Link

	// Levels is the computed layering, including any catch-all bucket.
	Levels lineage.Levels

	// InputHash is the content hash of the input document.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LinkCount  int
	LoadTime   time.Duration
	InferTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per rendered format.
type CacheInfo struct {
	Hits map[string]bool
}

// Package pkg provides the core libraries for Flowlens lineage visualization.
//
// # Overview
//
// Flowlens transforms declarative flow definitions into interactive
// field-level lineage diagrams. The pkg directory is organized into five
// main areas:
//
//  1. [flow] - Domain model (nodes, fields, edges, field references)
//  2. [io] - Flow definition decoding and catalog construction
//  3. [lineage] - Lineage inference, level assignment, reachability
//  4. [render] - Output rendering (interactive HTML, JSON, DOT/SVG/PNG)
//  5. [pipeline] - Orchestration (load → infer → layer → render) with caching
//
// # Architecture
//
// The typical data flow through Flowlens:
//
//	Flow Definition (JSON)
//	         ↓
//	    [io] package (decode + build field catalog)
//	         ↓
//	    [lineage] package (infer links, assign levels)
//	         ↓
//	    [render/document] / [render/dot] packages
//	         ↓
//	    HTML/JSON/DOT/SVG/PNG output
//
// # Quick Start
//
// Load a flow definition and render the interactive document:
//
//	import (
//	    "github.com/flowlens/flowlens/pkg/io"
//	    "github.com/flowlens/flowlens/pkg/lineage"
//	    "github.com/flowlens/flowlens/pkg/render/document"
//	)
//
//	// 1. Load the field catalog
//	f, _ := io.ImportJSON("flow.json")
//
//	// 2. Infer field-level lineage
//	links := lineage.Infer(f)
//	levels := lineage.AssignLevels(f, links)
//
//	// 3. Render the self-contained document
//	payload := document.BuildPayload(f, links, levels)
//	html, _ := document.RenderHTML(payload)
//
// # Main Packages
//
// [flow] - The field catalog: nodes in insertion order, fields in catalog
// order, node-level edges, and field references. Field ordering is
// load-bearing for inference and rendering.
//
// [io] - Decodes flow definition documents and builds the catalog,
// applying the field group precedence rules and skipping exception nodes.
//
// [lineage] - Lexical lineage inference (word-boundary token matching of
// field aliases against formula text), longest-path level assignment with
// a catch-all bucket for cycles, and the reachability graph behind
// click-to-highlight.
//
// [render/document] - The interactive HTML document: ordered JSON payload,
// embedded script and styles, connector drawing, and selection
// highlighting. Also exports the payload as standalone JSON.
//
// [render/dot] - Node-level DOT export and Graphviz SVG/PNG rendering.
//
// [pipeline] - Complete pipeline used by the CLI and the serve command,
// with content-addressed artifact caching via [cache].
//
// [cache] - Artifact cache with file-backed and null implementations.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/lineage/...   # Specific package
//	go test -run Example        # Examples only
//
// [flow]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/flow
// [io]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/io
// [lineage]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/lineage
// [render]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/render
// [render/document]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/render/document
// [render/dot]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/flowlens/flowlens/pkg/cache
package pkg

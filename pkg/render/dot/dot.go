package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowlens/flowlens/pkg/flow"
)

// Options configures node-link export of the projected lineage graph.
type Options struct {
	// Detailed includes the node type and field count in node labels.
	// When false, only the display name is shown.
	Detailed bool
}

// ToDOT converts the catalog and its inferred links to Graphviz DOT
// format. Nodes are the catalog nodes; edges are the node-level projection
// of the field link set, deduplicated, in first-occurrence order. The
// resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(f *flow.Flow, links []flow.Link, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range f.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	seen := make(map[[2]string]bool)
	for _, l := range links {
		pair := [2]string{l.Source.NodeID, l.Target.NodeID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		fmt.Fprintf(&buf, "  %q -> %q;\n", pair[0], pair[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *flow.Node, detailed bool) string {
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{label}
	if n.Type != "" {
		parts = append(parts, "type: "+n.Type)
	}
	parts = append(parts, fmt.Sprintf("fields: %d", n.FieldCount()))
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

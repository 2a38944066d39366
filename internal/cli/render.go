package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/pkg/pipeline"
	"github.com/flowlens/flowlens/pkg/render/document"
)

// renderCommand creates the render command for generating lineage documents.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr  string
		configPath  string
		noCache     bool
		curveOffset int
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [flow.json] [output]",
		Short: "Render a flow definition to an interactive lineage document",
		Long: `Render a flow definition to an interactive lineage document.

The render command reads a flow definition, infers field-level lineage from
formula text, assigns nodes to levels by longest dependency path, and writes
a self-contained HTML document. Click any field in the document to highlight
everything upstream and downstream of it.

Additional formats (json, dot, svg, png) can be requested with --format.
When multiple formats are requested, the output argument is treated as a
base path and each artifact gets its own extension.

Rendered artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("curve-offset") {
				opts.CurveOffset = &curveOffset
			}
			if configPath != "" {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				cfg.apply(&opts, cmd.Flags())
			}
			if len(opts.Formats) == 0 || cmd.Flags().Changed("format") {
				opts.Formats = parseFormats(formatsStr)
			}
			for _, f := range opts.Formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			opts.Input = args[0]
			return c.runRender(cmd.Context(), opts, args[1], noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().IntVar(&curveOffset, "curve-offset", document.DefaultCurveOffset, "connector curve control offset in pixels (0 for straight connectors)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include node types and field counts in dot labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached artifacts and re-render")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML render configuration file")

	return cmd
}

// runRender executes the pipeline and writes the rendered artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner := c.newRunner(noCache)
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	var spinner *Spinner
	if needsGraphviz(opts.Formats) {
		spinner = newSpinnerWithContext(ctx, "Rendering diagram...")
		spinner.Start()
	}

	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Rendering failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Input, err)
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(result.Artifacts)))

	if err := writeArtifacts(result, opts.Formats, output); err != nil {
		return err
	}

	printSuccess("Rendered %s", opts.Input)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, allCached(result, opts.Formats))
	printDetail("%d inferred links", result.Stats.LinkCount)
	if result.Levels.HasCycle() {
		printWarning("dependency cycle: %s placed in final level", strings.Join(result.Levels.Unresolved, ", "))
	}
	if len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatHTML {
		printNewline()
		printNextStep("Serve it locally", fmt.Sprintf("%s serve %s", appName, opts.Input))
	}
	return nil
}

// needsGraphviz reports whether any requested format requires Graphviz rendering.
func needsGraphviz(formats []string) bool {
	for _, f := range formats {
		if f == pipeline.FormatSVG || f == pipeline.FormatPNG {
			return true
		}
	}
	return false
}

// allCached reports whether every requested artifact came from the cache.
func allCached(result *pipeline.Result, formats []string) bool {
	for _, f := range formats {
		if !result.CacheInfo.Hits[f] {
			return false
		}
	}
	return true
}

// writeArtifacts writes rendered artifacts to disk.
// With a single format the output path is used verbatim; with multiple
// formats it becomes a base path and each artifact gets its own extension.
func writeArtifacts(result *pipeline.Result, formats []string, output string) error {
	if len(formats) == 1 {
		format := formats[0]
		return writeArtifact(output, result.Artifacts[format])
	}

	base := basePath(output)
	for _, format := range formats {
		path := base + "." + format
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// basePath strips a known format extension from the output path so that
// per-format extensions can be appended.
func basePath(output string) string {
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

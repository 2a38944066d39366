package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/pkg/pipeline"
	"github.com/flowlens/flowlens/pkg/render/document"
)

// serveCommand creates the serve command for viewing a document locally.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		noCache     bool
		curveOffset int
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve [flow.json]",
		Short: "Serve the rendered lineage document over local HTTP",
		Long: `Serve the rendered lineage document over local HTTP.

The serve command renders the flow definition once and serves the
interactive document at /, with the underlying lineage payload available
as JSON at /api/flow.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("curve-offset") {
				opts.CurveOffset = &curveOffset
			}
			opts.Input = args[0]
			opts.Formats = []string{pipeline.FormatHTML, pipeline.FormatJSON}
			return c.runServe(cmd.Context(), opts, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8129", "listen address")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().IntVar(&curveOffset, "curve-offset", document.DefaultCurveOffset, "connector curve control offset in pixels (0 for straight connectors)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// runServe renders the document and serves it until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, addr string, noCache bool) error {
	runner := c.newRunner(noCache)
	defer runner.Close()

	opts.Logger = c.Logger
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Input, err)
	}
	htmlDoc := result.Artifacts[pipeline.FormatHTML]
	jsonDoc := result.Artifacts[pipeline.FormatJSON]

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(htmlDoc)
	})
	r.Get("/api/flow.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jsonDoc)
	})
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printSuccess("Serving %s", opts.Input)
	printDetail("http://%s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}

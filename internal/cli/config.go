package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/flowlens/flowlens/pkg/pipeline"
)

// renderConfig is the TOML render configuration file format.
//
// Example:
//
//	title = "Claims Flow"
//	curve_offset = 80
//	detailed = true
//	formats = ["html", "svg"]
type renderConfig struct {
	Title       string   `toml:"title"`
	CurveOffset *int     `toml:"curve_offset"`
	Detailed    bool     `toml:"detailed"`
	Formats     []string `toml:"formats"`
}

// loadConfig reads and parses a TOML render configuration file.
func loadConfig(path string) (*renderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg renderConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies config values into opts for every flag the user did not
// set explicitly. Command-line flags always win over the config file.
func (cfg *renderConfig) apply(opts *pipeline.Options, flags *pflag.FlagSet) {
	if cfg.Title != "" && !flags.Changed("title") {
		opts.Title = cfg.Title
	}
	if cfg.CurveOffset != nil && !flags.Changed("curve-offset") {
		opts.CurveOffset = cfg.CurveOffset
	}
	if cfg.Detailed && !flags.Changed("detailed") {
		opts.Detailed = true
	}
	if len(cfg.Formats) > 0 && !flags.Changed("format") {
		opts.Formats = cfg.Formats
	}
}

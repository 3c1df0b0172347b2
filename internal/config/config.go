// Package config loads apexfmt's project configuration: the printer
// width and indent size of spec.md §3.4, read from an optional TOML
// file. Grounded on the teacher's internal/config/loader.go discovery
// pattern (search list, defaults-then-overlay), re-grounded on
// github.com/pelletier/go-toml/v2 in place of YAML.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/gregvale/apexfmt/internal/apexerr"
)

// fileNames are tried, in order, at each directory searched by Discover.
var fileNames = []string{".apexfmt.toml", "apexfmt.toml"}

// Config is apexfmt's complete set of user-tunable knobs. Only MaxWidth
// changes the output: IndentSize is loaded and validated, but
// internal/emitter indents by a fixed 2 columns and does not read it.
type Config struct {
	MaxWidth   int `toml:"max_width"`
	IndentSize int `toml:"indent_size"`
}

// Default returns the configuration spec.md §3.4 mandates when no file is
// found or none is given: 80 columns, 2-space indent.
func Default() Config {
	return Config{MaxWidth: 80, IndentSize: 2}
}

// Discover searches dir and each of its ancestors for a recognised
// config file name, returning the first match's path, or "" if none is
// found anywhere up to the filesystem root.
func Discover(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads and parses the TOML file at path, overlaying its fields onto
// Default(). An empty path returns Default() directly. Unknown keys are
// rejected so a typo'd setting fails loudly instead of being silently
// ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &apexerr.IoError{Path: path, Cause: err}
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, &apexerr.ConfigError{Key: "", Reason: err.Error()}
	}

	if cfg.MaxWidth <= 0 {
		return Config{}, &apexerr.ConfigError{Key: "max_width", Reason: "must be positive"}
	}
	if cfg.IndentSize <= 0 {
		return Config{}, &apexerr.ConfigError{Key: "indent_size", Reason: "must be positive"}
	}

	return cfg, nil
}

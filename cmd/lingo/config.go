package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"lingo/internal/parser"
	"lingo/internal/resolver"
)

// Config is the lingo.toml project file. Every field is optional;
// zero values fall back to the built-in defaults.
type Config struct {
	Locale string       `toml:"locale"`
	Limits ConfigLimits `toml:"limits"`
}

type ConfigLimits struct {
	MaxParseErrors  uint `toml:"max_parse_errors"`
	MaxNestingDepth uint `toml:"max_nesting_depth"`
	MaxResolveDepth uint `toml:"max_resolve_depth"`
	MaxOutputSize   uint `toml:"max_output_size"`
}

// loadConfig reads the config named by --config, or searches for
// lingo.toml from the working directory upward. No file is not an
// error; the zero Config applies.
func loadConfig(cmd *cobra.Command) (Config, error) {
	var cfg Config

	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return cfg, err
	}
	path := explicit
	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "lingo.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (c Config) parserOptions(maxDiagnostics int) parser.Options {
	opts := parser.Options{
		MaxParseErrors:  c.Limits.MaxParseErrors,
		MaxNestingDepth: c.Limits.MaxNestingDepth,
	}
	if opts.MaxParseErrors == 0 {
		if maxDiagnostics > 0 {
			opts.MaxParseErrors = uint(maxDiagnostics)
		} else {
			opts.MaxParseErrors = parser.DefaultMaxParseErrors
		}
	}
	return opts
}

func (c Config) resolverOptions() resolver.Options {
	return resolver.Options{
		MaxDepth:      c.Limits.MaxResolveDepth,
		MaxOutputSize: c.Limits.MaxOutputSize,
	}
}

func (c Config) locale(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if c.Locale != "" {
		return c.Locale
	}
	return "en"
}

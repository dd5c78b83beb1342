// Package config loads esmap project settings from esmap.toml or esmap.yaml.
//
// Keys mirror the walk options:
//
//	output = "importmap.json"
//	excludedPatterns = ["node_modules", "test"]
//	excludedGlobs = ["**/*.min.js"]
//	includedExtensions = ["js", "mjs"]
//	maxDepth = 8
//	backups = 3
//
//	[bundle]
//	outfile = "dist/app.js"
//	minify = true
//
// Command-line flags take precedence over file values.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/esmap/pkg/errors"
	"github.com/matzehuels/esmap/pkg/scan"
)

// Candidates are the file names Discover looks for, in order.
var Candidates = []string{"esmap.toml", "esmap.yaml", "esmap.yml"}

// Config is the on-disk project configuration.
type Config struct {
	Output             string   `toml:"output" yaml:"output"`
	ExcludedPatterns   []string `toml:"excludedPatterns" yaml:"excludedPatterns"`
	ExcludedGlobs      []string `toml:"excludedGlobs" yaml:"excludedGlobs"`
	IncludedExtensions []string `toml:"includedExtensions" yaml:"includedExtensions"`
	MaxDepth           int      `toml:"maxDepth" yaml:"maxDepth"`
	Backups            int      `toml:"backups" yaml:"backups"`
	Concurrency        int      `toml:"concurrency" yaml:"concurrency"`
	Bundle             Bundle   `toml:"bundle" yaml:"bundle"`
}

// Bundle configures the bundle command.
type Bundle struct {
	Entry     string `toml:"entry" yaml:"entry"`
	Outfile   string `toml:"outfile" yaml:"outfile"`
	Minify    bool   `toml:"minify" yaml:"minify"`
	KeepNames bool   `toml:"keepNames" yaml:"keepNames"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{IncludedExtensions: slices.Clone(scan.DefaultExtensions)}
}

// Load reads and normalizes the configuration file at path. The format is
// chosen by extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot read config %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format: %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config %s", path)
	}
	return cfg.Normalize(), nil
}

// Discover returns the path of the first candidate config file in dir, or
// "" when there is none.
func Discover(dir string) string {
	for _, name := range Candidates {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// LoadDir loads the discovered config of dir, falling back to Default.
func LoadDir(dir string) (Config, string, error) {
	p := Discover(dir)
	if p == "" {
		return Default(), "", nil
	}
	cfg, err := Load(p)
	return cfg, p, err
}

// Validate checks values that cannot be repaired by Normalize.
func (c Config) Validate() error {
	if err := errors.ValidateMaxDepth(c.MaxDepth); err != nil {
		return err
	}
	for _, ext := range c.IncludedExtensions {
		if err := errors.ValidateExtension(ext); err != nil {
			return err
		}
	}
	for _, p := range c.ExcludedPatterns {
		if err := errors.ValidatePattern(p); err != nil {
			return err
		}
	}
	for _, g := range c.ExcludedGlobs {
		if err := errors.ValidatePattern(g); err != nil {
			return err
		}
		if !doublestar.ValidatePattern(g) {
			return errors.New(errors.ErrCodeInvalidConfig, "malformed glob: %q", g)
		}
	}
	if c.Backups < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "backups must not be negative: %d", c.Backups)
	}
	if c.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must not be negative: %d", c.Concurrency)
	}
	return nil
}

// Normalize returns a copy with dotted, de-duplicated extensions and
// patterns and the depth clamped. It expects a Config that passed Validate.
func (c Config) Normalize() Config {
	out := c
	out.IncludedExtensions = scan.CleanExtensions(c.IncludedExtensions)
	out.ExcludedPatterns = dedupe(c.ExcludedPatterns)
	out.ExcludedGlobs = dedupe(c.ExcludedGlobs)
	if c.MaxDepth != 0 {
		out.MaxDepth = scan.ClampDepth(c.MaxDepth)
	}
	return out
}

// Options converts the configuration into walk options.
func (c Config) Options() scan.Options {
	return scan.Options{
		Output:             c.Output,
		Backups:            c.Backups,
		ExcludedPatterns:   c.ExcludedPatterns,
		ExcludedGlobs:      c.ExcludedGlobs,
		IncludedExtensions: c.IncludedExtensions,
		MaxDepth:           c.MaxDepth,
		Concurrency:        c.Concurrency,
	}
}

func dedupe(items []string) []string {
	var out []string
	for _, s := range items {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the project root.
const ConfigFileName = "js-mv.yaml"

// Config represents the js-mv.yaml configuration file.
type Config struct {
	// Extensions are the source extensions to enumerate and probe, without
	// the leading dot. The first one is the default extension.
	Extensions []string `yaml:"extensions"`
	// Index is the basename probed when a specifier names a directory.
	Index string `yaml:"index"`
	// Exclude holds glob patterns matched against project-relative paths.
	Exclude []string `yaml:"exclude"`
	// Gitignore toggles .gitignore handling. nil means enabled.
	Gitignore *bool `yaml:"gitignore"`
}

// DefaultConfig returns the configuration used when no js-mv.yaml exists.
func DefaultConfig() Config {
	return Config{
		Extensions: []string{"js"},
		Index:      "index",
	}
}

// LoadConfig reads js-mv.yaml from the project root.
// Returns DefaultConfig and nil error if the file does not exist.
func LoadConfig(root string) (Config, error) {
	p := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.Extensions) == 0 {
		c.Extensions = def.Extensions
	}
	for i, ext := range c.Extensions {
		c.Extensions[i] = strings.TrimPrefix(ext, ".")
	}
	if c.Index == "" {
		c.Index = def.Index
	}
	return c
}

// Validate checks extensions and exclude patterns.
func (c Config) Validate() error {
	for _, ext := range c.Extensions {
		if ext == "" || strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("invalid extension: %q", ext)
		}
	}
	if _, err := compileGlobs(c.Exclude); err != nil {
		return err
	}
	return nil
}

// GitignoreEnabled reports whether .gitignore files are honoured.
func (c Config) GitignoreEnabled() bool {
	return c.Gitignore == nil || *c.Gitignore
}

var errInvalidPattern = errors.New("invalid glob pattern")

// compileGlobs compiles patterns with '/' as the separator, so "*" stays
// within one path segment and "**" crosses segments.
func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %s", errInvalidPattern, pattern), err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

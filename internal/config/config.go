// Package config handles idxc project configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/idxc/internal/linq"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "idxc.toml"

// Config represents an idxc project configuration.
type Config struct {
	// Specs is the directory of CUE definitions.
	Specs string `toml:"specs"`

	// DocsRoot replaces the "docs" collection root in rendered maps.
	DocsRoot string `toml:"docs_root"`

	// Casing is "capitalize" (default) or "preserve" for the legacy
	// lower-case member rendering.
	Casing string `toml:"casing"`

	// Catalog is the path of the SQLite definition catalog.
	Catalog string `toml:"catalog"`

	// OutDir receives compiled definition JSON files.
	OutDir string `toml:"out_dir"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Specs:    "specs",
		DocsRoot: linq.DefaultDocsRoot,
		Casing:   linq.CasingCapitalize.String(),
		Catalog:  filepath.Join(".idxc", "catalog.db"),
		OutDir:   "out",
	}
}

// Load loads the configuration from path. An empty path means DefaultFile
// in the working directory; a missing default file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); os.IsNotExist(err) {
			return Default(), nil
		}
		path = DefaultFile
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path. Keys absent from
// the file keep their defaults; unknown keys are an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := linq.ParseCasing(c.Casing); err != nil {
		return err
	}
	if strings.TrimSpace(c.DocsRoot) == "" {
		return fmt.Errorf("docs_root must not be empty")
	}
	return nil
}

// LinqOptions returns the query builder options selected by the config.
func (c *Config) LinqOptions() ([]linq.Option, error) {
	casing, err := linq.ParseCasing(c.Casing)
	if err != nil {
		return nil, err
	}
	return []linq.Option{
		linq.WithCasing(casing),
		linq.WithDocsRoot(c.DocsRoot),
	}, nil
}

// SaveTo writes the config as TOML, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = Default()
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

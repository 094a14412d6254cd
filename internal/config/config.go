// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Source is one input file merged by `hdb merge`, in priority order.
type Source struct {
	Name   string `json:"name"`             // Provenance tag and ID prefix
	Path   string `json:"path"`             // Relative to the repository root, or absolute
	Format string `json:"format,omitempty"` // csv, json, jsonl, html or pdf; inferred from the extension when empty
}

// Config represents repository configuration stored in .hydrodb/config.json.
type Config struct {
	Sources          []Source `json:"sources,omitempty"`
	MinTitleLength   int      `json:"min_title_length,omitempty"`  // Titles must be longer than this
	IncludePotential *bool    `json:"include_potential,omitempty"` // Keep potential duplicates when merging (default true)
	Workers          int      `json:"workers,omitempty"`           // Parallel duplicate classification
}

const (
	HydroDir    = ".hydrodb"
	ConfigFile  = "config.json"
	StudiesFile = "studies.jsonl"
	CacheDir    = "cache"
	DBFile      = "studies.db"

	DefaultMinTitleLength = 10
)

// ValidFormats lists the supported source formats.
var ValidFormats = []string{"csv", "json", "jsonl", "html", "pdf"}

// HydroPath returns the path to the .hydrodb directory from a root path.
func HydroPath(root string) string {
	return filepath.Join(root, HydroDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, HydroDir, ConfigFile)
}

// StudiesPath returns the path to studies.jsonl from a root path.
func StudiesPath(root string) string {
	return filepath.Join(root, HydroDir, StudiesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, HydroDir, CacheDir)
}

// DBPath returns the path to studies.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, HydroDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a hydrodb repository.
func IsRepository(root string) bool {
	info, err := os.Stat(HydroPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a hydrodb repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a hydrodb repository (no %s directory found)", HydroDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// TitleLength returns the configured minimum title length or the default.
func (c *Config) TitleLength() int {
	if c.MinTitleLength <= 0 {
		return DefaultMinTitleLength
	}
	return c.MinTitleLength
}

// KeepPotential reports whether potential duplicates are kept when merging.
func (c *Config) KeepPotential() bool {
	return c.IncludePotential == nil || *c.IncludePotential
}

// Validate checks every configured source.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if err := ValidateSource(s); err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %d: duplicate name %q", i+1, s.Name)
		}
		seen[s.Name] = true
	}
	if c.MinTitleLength < 0 {
		return fmt.Errorf("invalid min_title_length: %d", c.MinTitleLength)
	}
	return nil
}

// ValidateSource checks that a source has a name, a path and a known format.
func ValidateSource(s Source) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if strings.ContainsAny(s.Name, " \t/") {
		return fmt.Errorf("invalid name %q (no spaces or slashes)", s.Name)
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("source %s: missing path", s.Name)
	}
	if _, err := SourceFormat(s); err != nil {
		return fmt.Errorf("source %s: %w", s.Name, err)
	}
	return nil
}

// SourceFormat returns the source's format, inferring it from the file
// extension when unset.
func SourceFormat(s Source) (string, error) {
	format := strings.ToLower(strings.TrimSpace(s.Format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Path)), ".")
		if format == "htm" {
			format = "html"
		}
	}
	if !slices.Contains(ValidFormats, format) {
		return "", fmt.Errorf("invalid format: %q (valid: %v)", format, ValidFormats)
	}
	return format, nil
}

// ResolvePath returns path as an absolute path, expanding ~ and resolving
// relative paths against root.
func ResolvePath(root, path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// Package config loads optional per-project settings from a
// .codestats.yaml file in the analyzed root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file looked up in the
// analyzed root.
const FileName = ".codestats.yaml"

// Config holds the settings a project can pin. Zero values mean
// "not set"; the CLI applies its own defaults on top.
type Config struct {
	// Format is the default output format (summary, detail, json).
	Format string `yaml:"format"`
	// Ignore lists path substrings to exclude.
	Ignore []string `yaml:"ignore"`
	// MaxDepth limits directory traversal.
	MaxDepth int `yaml:"max_depth"`
	// FollowLinks enters symlinked directories.
	FollowLinks bool `yaml:"follow_links"`
	// Workers bounds concurrent file parsing.
	Workers int `yaml:"workers"`
}

// Load reads the configuration file at path. A missing file is not an
// error and yields the zero Config; a malformed file is an error.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadForRoot loads the configuration next to the analyzed path: the
// directory itself for directory targets, the containing directory for
// file targets.
func LoadForRoot(target string) (Config, error) {
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}
	return Load(filepath.Join(dir, FileName))
}

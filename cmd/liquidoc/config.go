package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/liquidoc/liquidoc/pkg/registry"
)

// Environment variables honored across commands. Flags win over them;
// they win over the config file.
const (
	envRegistryURL  = "LIQUIDOC_REGISTRY_URL"
	envRegistryPath = "LIQUIDOC_REGISTRY_PATH"
)

// configRelPath is where a project keeps its configuration, relative to
// the project root.
var configRelPath = filepath.Join(".liquidoc", "config.yaml")

// snapshotRelPath is where registry refresh persists its snapshot,
// relative to the working directory.
var snapshotRelPath = filepath.Join(".liquidoc", "registry.msgpack")

// validateConfig checks loaded config files against their struct tags.
var validateConfig = validator.New()

// ProjectConfig holds the contents of .liquidoc/config.yaml.
type ProjectConfig struct {
	Include    []string       `yaml:"include" validate:"omitempty,dive,min=1"`
	Exclude    []string       `yaml:"exclude" validate:"omitempty,dive,min=1"`
	BatchBytes int64          `yaml:"batch_bytes" validate:"gte=0"`
	Workers    int            `yaml:"workers" validate:"gte=0"`
	Registry   RegistryConfig `yaml:"registry"`
	Warn       bool           `yaml:"warn"`
	Eparse     bool           `yaml:"eparse"`
}

// RegistryConfig selects the vendor type dataset.
type RegistryConfig struct {
	Path string `yaml:"path"`
	URL  string `yaml:"url" validate:"omitempty,url"`
}

// loadProjectConfig finds and reads .liquidoc/config.yaml, walking from
// dir toward the filesystem root. Returns nil without error when no
// config file exists.
func loadProjectConfig(dir string) (*ProjectConfig, error) {
	path, err := findProjectConfig(dir)
	if err != nil || path == "" {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validateConfig.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// findProjectConfig walks upward from dir looking for the config file.
// Returns "" when none is found.
func findProjectConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, configRelPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// resolveRegistry picks the vendor type registry for a run. Precedence:
// the --registry flag, LIQUIDOC_REGISTRY_PATH, the config file's
// registry.path, a previously refreshed snapshot, then the bundled
// dataset.
func resolveRegistry(flagPath string, cfg *ProjectConfig) (*registry.Registry, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(envRegistryPath)
	}
	if path == "" && cfg != nil {
		path = cfg.Registry.Path
	}
	if path != "" {
		return registry.LoadFile(path)
	}

	if reg, stale, err := registry.LoadSnapshot(snapshotRelPath, registry.DefaultSnapshotTTL); err == nil {
		if stale {
			slog.Warn("Registry snapshot is stale, run registry refresh", "path", snapshotRelPath)
		}
		return reg, nil
	}
	return registry.Builtin(), nil
}

// resolveRegistryURL picks the refresh URL: flag, environment, config.
func resolveRegistryURL(flagURL string, cfg *ProjectConfig) string {
	if flagURL != "" {
		return flagURL
	}
	if env := os.Getenv(envRegistryURL); env != "" {
		return env
	}
	if cfg != nil {
		return cfg.Registry.URL
	}
	return ""
}

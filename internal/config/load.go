package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration holds out-of-range values.
var ErrInvalidConfig = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the search locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for meshtool.yaml in the working directory, then the config dir.
func findConfigFile() string {
	candidates := []string{
		"./meshtool.yaml",
		UserConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "meshreduce")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "meshreduce")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshreduce")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshreduce")
	}
}

// UserConfigPath is the per-user config file written by Save.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "meshtool.yaml")
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so that a
// misspelled option does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	d := c.Decimation
	check(d.MaxError >= 0, "decimation.max_error must not be negative, got %g", d.MaxError)
	check(d.TargetFaces >= 0, "decimation.target_faces must not be negative, got %d", d.TargetFaces)
	check(d.MaxNormalDeviation > 0 && d.MaxNormalDeviation <= 180,
		"decimation.max_normal_deviation_deg must be in (0, 180], got %g", d.MaxNormalDeviation)
	check(d.BoundaryWeight >= 0, "decimation.boundary_weight must not be negative, got %g", d.BoundaryWeight)
	for i, s := range d.Spheres {
		check(s.Radius > 0, "decimation.spheres[%d].radius must be positive, got %g", i, s.Radius)
		check(s.MaxError >= 0, "decimation.spheres[%d].max_error must not be negative, got %g", i, s.MaxError)
	}

	p := c.Preview
	check(p.Size > 0, "preview.size must be positive, got %d", p.Size)
	check(p.Supersample >= 1 && p.Supersample <= 8, "preview.supersample must be in [1, 8], got %d", p.Supersample)
	switch strings.ToLower(p.Format) {
	case "png", "webp":
	default:
		check(false, "preview.format must be png or webp, got %q", p.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		check(false, "logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return errs
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Decimation defaults
	if cfg.Decimation.MaxError != 0.001 {
		t.Errorf("expected max error 0.001, got %g", cfg.Decimation.MaxError)
	}
	if cfg.Decimation.TargetFaces != 0 {
		t.Errorf("expected no face budget, got %d", cfg.Decimation.TargetFaces)
	}
	if cfg.Decimation.MaxNormalDeviation != 60 {
		t.Errorf("expected normal deviation 60, got %g", cfg.Decimation.MaxNormalDeviation)
	}
	if cfg.Decimation.KeepBoundary {
		t.Error("expected keep_boundary to be false by default")
	}

	// Preview defaults
	if cfg.Preview.Size != 512 || cfg.Preview.Supersample != 2 {
		t.Errorf("expected 512px at 2x, got %dpx at %dx", cfg.Preview.Size, cfg.Preview.Supersample)
	}
	if !cfg.Preview.Wireframe {
		t.Error("expected wireframe to be true by default")
	}
	if cfg.Preview.Format != "png" {
		t.Errorf("expected format 'png', got %s", cfg.Preview.Format)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "meshtool.yaml")

	yamlContent := `
decimation:
  max_error: 0.05
  target_faces: 1000
  max_normal_deviation_deg: 45
  keep_boundary: true
  boundary_weight: 2.5
  spheres:
    - center: [0, 1, 2]
      radius: 0.5
      max_error: 0.0001

preview:
  size: 256
  supersample: 3
  yaw_deg: -45
  pitch_deg: 10
  wireframe: false
  format: webp

logging:
  level: "debug"
  log_file: "meshtool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	d := cfg.Decimation
	if d.MaxError != 0.05 || d.TargetFaces != 1000 || d.MaxNormalDeviation != 45 {
		t.Errorf("unexpected decimation values: %+v", d)
	}
	if !d.KeepBoundary || d.BoundaryWeight != 2.5 {
		t.Errorf("expected keep_boundary and weight 2.5, got %+v", d)
	}
	if len(d.Spheres) != 1 {
		t.Fatalf("expected 1 sphere, got %d", len(d.Spheres))
	}
	if s := d.Spheres[0]; s.Center != [3]float64{0, 1, 2} || s.Radius != 0.5 || s.MaxError != 0.0001 {
		t.Errorf("unexpected sphere: %+v", s)
	}

	p := cfg.Preview
	if p.Size != 256 || p.Supersample != 3 || p.Yaw != -45 || p.Pitch != 10 {
		t.Errorf("unexpected preview values: %+v", p)
	}
	if p.Wireframe {
		t.Error("expected wireframe to be false")
	}
	if p.Format != "webp" {
		t.Errorf("expected format 'webp', got %s", p.Format)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshtool.log" {
		t.Errorf("expected log file 'meshtool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshtool.yaml")
	if err := os.WriteFile(configPath, []byte("decimation:\n  target_faces: 50\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Decimation.TargetFaces != 50 {
		t.Errorf("expected target faces 50, got %d", cfg.Decimation.TargetFaces)
	}
	// Keys absent from the file keep their defaults
	if cfg.Decimation.MaxError != 0.001 {
		t.Errorf("expected default max error, got %g", cfg.Decimation.MaxError)
	}
	if cfg.Preview.Size != 512 {
		t.Errorf("expected default preview size, got %d", cfg.Preview.Size)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshtool.yaml")
	if err := os.WriteFile(configPath, []byte("\n# nothing here\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("expected empty file to load, got %v", err)
	}
	if cfg.Decimation.MaxError != 0.001 {
		t.Errorf("expected default max error, got %g", cfg.Decimation.MaxError)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "decimation:\n  max_error: not a number\n  invalid syntax here\n"},
		{"wrong type", "preview:\n  size: large\n"},
		{"unknown key", "decimation:\n  max_eror: 0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/meshtool.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errs   int
	}{
		{"defaults", func(*Config) {}, 0},
		{"negative max error", func(c *Config) { c.Decimation.MaxError = -1 }, 1},
		{"negative target", func(c *Config) { c.Decimation.TargetFaces = -5 }, 1},
		{"zero deviation", func(c *Config) { c.Decimation.MaxNormalDeviation = 0 }, 1},
		{"deviation over 180", func(c *Config) { c.Decimation.MaxNormalDeviation = 200 }, 1},
		{"bad sphere", func(c *Config) {
			c.Decimation.Spheres = []SphereConfig{{Radius: 0, MaxError: -1}}
		}, 2},
		{"bad preview", func(c *Config) {
			c.Preview.Size = 0
			c.Preview.Supersample = 16
			c.Preview.Format = "gif"
		}, 3},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if got := len(multierr.Errors(err)); got != tt.errs {
				t.Fatalf("expected %d errors, got %d: %v", tt.errs, got, err)
			}
			if tt.errs > 0 && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "meshtool.yaml")
	if err := os.WriteFile(configPath, []byte("preview:\n  size: 128\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find meshtool.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "/tmp/meshtool.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/meshtool.log" {
					t.Errorf("expected log file /tmp/meshtool.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
		{
			name:  "no flags",
			setup: func() {},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "info" || cfg.Logging.LogFile != "" {
					t.Errorf("expected logging defaults, got %+v", cfg.Logging)
				}
			},
			teardown: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "meshtool.yaml")

	yamlContent := `
decimation:
  max_error: 0.02
logging:
  level: warn
  log_file: from-file.log
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagDebug = true
	defer func() {
		*flagConfig = ""
		*flagDebug = false
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Level should be from flag, not file
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug' from flag, got %s", cfg.Logging.Level)
	}
	// Values without a flag come from the file
	if cfg.Logging.LogFile != "from-file.log" {
		t.Errorf("expected log file from file, got %s", cfg.Logging.LogFile)
	}
	if cfg.Decimation.MaxError != 0.02 {
		t.Errorf("expected max error 0.02 from file, got %g", cfg.Decimation.MaxError)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshtool.yaml")
	if err := os.WriteFile(configPath, []byte("preview:\n  supersample: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "preview.supersample") {
		t.Errorf("expected the offending key in the error, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "meshtool.yaml")

	cfg := Default()
	cfg.Decimation.TargetFaces = 500
	cfg.Decimation.Spheres = []SphereConfig{{Center: [3]float64{1, 2, 3}, Radius: 4, MaxError: 0.5}}
	cfg.Preview.Format = "webp"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	back := Default()
	if err := loadFromFile(back, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if back.Decimation.TargetFaces != 500 || back.Preview.Format != "webp" {
		t.Errorf("saved values not restored: %+v", back)
	}
	if len(back.Decimation.Spheres) != 1 || back.Decimation.Spheres[0].Radius != 4 {
		t.Errorf("expected sphere to round trip, got %+v", back.Decimation.Spheres)
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	if err := Default().Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ConfigDir(), "meshtool.yaml")); err != nil {
		t.Errorf("expected saved file in config dir: %v", err)
	}
}

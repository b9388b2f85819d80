// Package config handles meshtool configuration loading and management.
package config

// Config holds all meshtool settings.
type Config struct {
	Decimation DecimationConfig `yaml:"decimation"`
	Preview    PreviewConfig    `yaml:"preview"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DecimationConfig holds simplification settings.
type DecimationConfig struct {
	MaxError           float64        `yaml:"max_error"`
	TargetFaces        int            `yaml:"target_faces"` // 0 disables the face budget
	MaxNormalDeviation float64        `yaml:"max_normal_deviation_deg"`
	KeepBoundary       bool           `yaml:"keep_boundary"`
	BoundaryWeight     float64        `yaml:"boundary_weight"`
	Spheres            []SphereConfig `yaml:"spheres"`
}

// SphereConfig bounds the error inside a region of the model.
type SphereConfig struct {
	Center   [3]float64 `yaml:"center"`
	Radius   float64    `yaml:"radius"`
	MaxError float64    `yaml:"max_error"`
}

// PreviewConfig holds rendering settings.
type PreviewConfig struct {
	Size        int     `yaml:"size"`
	Supersample int     `yaml:"supersample"`
	Yaw         float64 `yaml:"yaw_deg"`
	Pitch       float64 `yaml:"pitch_deg"`
	Wireframe   bool    `yaml:"wireframe"`
	Format      string  `yaml:"format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decimation: DecimationConfig{
			MaxError:           0.001,
			TargetFaces:        0,
			MaxNormalDeviation: 60,
			KeepBoundary:       false,
			BoundaryWeight:     0,
		},
		Preview: PreviewConfig{
			Size:        512,
			Supersample: 2,
			Yaw:         30,
			Pitch:       20,
			Wireframe:   true,
			Format:      "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

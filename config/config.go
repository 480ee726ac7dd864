// Package config loads redplot settings: struct defaults, then an optional
// YAML file, then REDPLOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/b3nn0/redplot/plotfile"
)

const (
	// PathEnvVar overrides the config file location.
	PathEnvVar = "REDPLOT_CONFIG"
	// DefaultPath is read when present and no other path is given.
	DefaultPath = "redplot.yaml"

	envPrefix = "REDPLOT_"
)

type Config struct {
	// Figure is single-gate (P2a, P2b runs) or dual-gate (P2c run).
	Figure string `koanf:"figure" validate:"oneof=single-gate dual-gate"`
	// DataDir holds the .plot files. Empty means the figure's default directory.
	DataDir string `koanf:"data_dir"`
	// Strict turns timestamp order and record count faults into errors.
	Strict bool `koanf:"strict"`
	// StopTime is the simulated duration; band separators span [0, StopTime].
	StopTime float64 `koanf:"stop_time" validate:"gt=0"`

	Output    OutputConfig    `koanf:"output"`
	Bucketing BucketingConfig `koanf:"bucketing"`
	View      ViewConfig      `koanf:"view"`
	Archive   ArchiveConfig   `koanf:"archive"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type OutputConfig struct {
	Path     string  `koanf:"path" validate:"required"`
	WidthCm  float64 `koanf:"width_cm" validate:"gt=0"`
	HeightCm float64 `koanf:"height_cm" validate:"gt=0"`
	DumpJSON string  `koanf:"dump_json"`
}

type BucketingConfig struct {
	Divisor  int64 `koanf:"divisor" validate:"gt=0"`
	Modulus  int64 `koanf:"modulus" validate:"gt=0"`
	Band     int64 `koanf:"band" validate:"gt=0"`
	BasePort int64 `koanf:"base_port"`
	DropBase int64 `koanf:"drop_base"`
}

// Bucketing converts the section to plotfile's transform parameters.
func (b BucketingConfig) Bucketing() plotfile.Bucketing {
	return plotfile.Bucketing{
		Divisor:  b.Divisor,
		Modulus:  b.Modulus,
		Band:     b.Band,
		BasePort: b.BasePort,
		DropBase: b.DropBase,
	}
}

type ViewConfig struct {
	// Mode is none, http or tui.
	Mode    string        `koanf:"mode" validate:"oneof=none http tui"`
	Addr    string        `koanf:"addr" validate:"required_if=Mode http"`
	Refresh time.Duration `koanf:"refresh" validate:"gte=0"`
}

type ArchiveConfig struct {
	// Path of the SQLite archive. Empty disables archiving.
	Path string `koanf:"path"`
}

type MetricsConfig struct {
	// Textfile is a node_exporter textfile path. Empty disables it.
	Textfile string `koanf:"textfile"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

func defaultConfig() *Config {
	b := plotfile.DefaultBucketing()
	return &Config{
		Figure:   "single-gate",
		StopTime: 1.0,
		Output: OutputConfig{
			Path:     "redplot.png",
			WidthCm:  20,
			HeightCm: 16,
		},
		Bucketing: BucketingConfig{
			Divisor:  b.Divisor,
			Modulus:  b.Modulus,
			Band:     b.Band,
			BasePort: b.BasePort,
			DropBase: b.DropBase,
		},
		View: ViewConfig{
			Mode:    "none",
			Addr:    "127.0.0.1:8080",
			Refresh: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load builds and validates the configuration. path may be empty, in which
// case REDPLOT_CONFIG and then DefaultPath are tried.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Read layers defaults, file and environment like Load but leaves
// validation to the caller, so later overrides such as command line flags
// can still fix a bad value.
func Read(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil && explicit {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// envSections are the nested config sections. REDPLOT_OUTPUT_WIDTH_CM maps
// to output.width_cm, REDPLOT_DATA_DIR to data_dir.
var envSections = []string{"output", "bucketing", "view", "archive", "metrics", "logging"}

func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if key == "config" {
		return ""
	}
	for _, s := range envSections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return key
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

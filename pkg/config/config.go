package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for psa.
type Config struct {
	// Analysis constants
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Logging settings
	Logging LoggingConfig `koanf:"logging" toml:"logging"`

	// Run metrics export
	Metrics MetricsConfig `koanf:"metrics" toml:"metrics"`
}

// AnalysisConfig controls the scoring constants.
type AnalysisConfig struct {
	MinPrefixLen          int     `koanf:"min_lcp_len" toml:"min_lcp_len" validate:"min=1"`
	Tau                   float64 `koanf:"tau" toml:"tau" validate:"gt=0,lte=1"`
	Lambda                float64 `koanf:"lambda" toml:"lambda" validate:"gte=0"`
	LowConnectivityDegree int     `koanf:"k_lcr" toml:"k_lcr" validate:"gte=0"`
	Strict                bool    `koanf:"strict" toml:"strict"`
	Workers               int     `koanf:"workers" toml:"workers" validate:"gte=0"` // 0 = 2x NumCPU
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" validate:"oneof=text json markdown toon"`
	Color  bool   `koanf:"color" toml:"color"`
	Top    int    `koanf:"top" toml:"top" validate:"gte=0"` // 0 = all rows
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	Level string `koanf:"level" toml:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `koanf:"textfile" toml:"textfile"` // empty disables export
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MinPrefixLen:          3,
			Tau:                   0.30,
			Lambda:                0.30,
			LowConnectivityDegree: 2,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	return formatValidationError(validate.Struct(c))
}

func formatValidationError(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		switch e.Tag() {
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", e.Namespace(), e.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", e.Namespace(), e.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s", e.Namespace(), e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of [%s]", e.Namespace(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", e.Namespace(), e.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Load loads configuration from a file and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadResult is a loaded configuration and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dirs []string
}

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// configNames are searched in order within each search directory.
var configNames = []string{
	"psa.toml",
	"psa.yaml",
	"psa.yml",
	"psa.json",
	".psa.toml",
	".psa.yaml",
	".psa.yml",
	".psa.json",
}

// LoadConfig loads the explicit path when given, otherwise the first config
// file found in the search directories, otherwise defaults. Unlike
// LoadOrDefault, a file that exists but fails to parse or validate is an error.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: []string{".", ".psa"}}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range o.dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

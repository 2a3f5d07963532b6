package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variable overrides, applied on top of any config file
const (
	EnvMaxSectionSize = "REPODOC_MAX_SECTION_SIZE"
	EnvMinSectionSize = "REPODOC_MIN_SECTION_SIZE"
	EnvSectionMethod  = "REPODOC_SECTION_METHOD"
	EnvUseContext     = "REPODOC_USE_CONTEXT"
	EnvCachePath      = "REPODOC_CACHE_PATH"
)

// Config is the full configuration surface of a documentation run
type Config struct {
	// MaxSectionSize is the largest number of files allowed in a section
	MaxSectionSize int `yaml:"max_section_size"`
	// MinSectionSize is the smallest number of files allowed in a section
	MinSectionSize int `yaml:"min_section_size"`
	// SectionMethod selects the partitioning strategy: structural,
	// dependency, hybrid, or llm_cluster
	SectionMethod string `yaml:"section_method"`
	// UseContext threads earlier sections' findings into later prompts
	UseContext bool `yaml:"use_context"`
	// Query is the question asked about each section; empty uses a
	// general analysis prompt
	Query string `yaml:"query"`
	// Provider and Model select the documentation backend; empty values
	// fall back to environment detection
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// CachePath locates the SQLite cache of partitions and analyses;
	// empty disables caching
	CachePath string `yaml:"cache_path"`
	// Concurrency limits in-flight model calls for context-free runs
	Concurrency int `yaml:"concurrency"`
	// SectionTimeout bounds each per-section model call
	SectionTimeout time.Duration `yaml:"section_timeout"`
	// IncludeTests keeps test files in the snapshot
	IncludeTests bool `yaml:"include_tests"`
}

// Default returns the configuration used when nothing is specified
func Default() Config {
	return Config{
		MaxSectionSize: 15,
		MinSectionSize: 2,
		SectionMethod:  "llm_cluster",
		UseContext:     true,
		Concurrency:    4,
		SectionTimeout: 5 * time.Minute,
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. An empty path skips the file and yields
// defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvMaxSectionSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSectionSize = n
		}
	}
	if v := os.Getenv(EnvMinSectionSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinSectionSize = n
		}
	}
	if v := os.Getenv(EnvSectionMethod); v != "" {
		cfg.SectionMethod = v
	}
	if v := os.Getenv(EnvUseContext); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseContext = b
		}
	}
	if v := os.Getenv(EnvCachePath); v != "" {
		cfg.CachePath = v
	}
}

// Validate checks the configuration for contradictions
func (c Config) Validate() error {
	if c.MaxSectionSize < 1 {
		return fmt.Errorf("%w: max_section_size must be at least 1, got %d", ErrInvalidConfig, c.MaxSectionSize)
	}
	if c.MinSectionSize < 1 || c.MinSectionSize > 2 {
		return fmt.Errorf("%w: min_section_size must be 1 or 2, got %d", ErrInvalidConfig, c.MinSectionSize)
	}
	if c.MinSectionSize > c.MaxSectionSize {
		return fmt.Errorf("%w: min_section_size %d exceeds max_section_size %d", ErrInvalidConfig, c.MinSectionSize, c.MaxSectionSize)
	}
	switch c.SectionMethod {
	case "structural", "dependency", "hybrid", "llm_cluster":
	default:
		return fmt.Errorf("%w: unknown section_method %q", ErrInvalidConfig, c.SectionMethod)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvMaxSectionSize, EnvMinSectionSize, EnvSectionMethod, EnvUseContext, EnvCachePath} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 15, cfg.MaxSectionSize)
	assert.Equal(t, 2, cfg.MinSectionSize)
	assert.Equal(t, "llm_cluster", cfg.SectionMethod)
	assert.True(t, cfg.UseContext)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.SectionTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("max_section_size: 8\nsection_method: hybrid\nuse_context: false\nquery: \"What are the APIs?\"\ncache_path: /tmp/cache.db\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxSectionSize)
	assert.Equal(t, 2, cfg.MinSectionSize) // untouched default
	assert.Equal(t, "hybrid", cfg.SectionMethod)
	assert.False(t, cfg.UseContext)
	assert.Equal(t, "What are the APIs?", cfg.Query)
	assert.Equal(t, "/tmp/cache.db", cfg.CachePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxSectionSize, "6")
	t.Setenv(EnvSectionMethod, "dependency")
	t.Setenv(EnvUseContext, "false")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_section_size: 20\nsection_method: structural\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MaxSectionSize)
	assert.Equal(t, "dependency", cfg.SectionMethod)
	assert.False(t, cfg.UseContext)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_section_size: [not an int\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults pass", func(c *Config) {}, true},
		{"min of one allowed", func(c *Config) { c.MinSectionSize = 1 }, true},
		{"zero max", func(c *Config) { c.MaxSectionSize = 0 }, false},
		{"min of three", func(c *Config) { c.MinSectionSize = 3 }, false},
		{"min above max", func(c *Config) { c.MaxSectionSize = 1; c.MinSectionSize = 2 }, false},
		{"unknown method", func(c *Config) { c.SectionMethod = "alphabetical" }, false},
		{"llm_cluster method", func(c *Config) { c.SectionMethod = "llm_cluster" }, true},
		{"negative concurrency", func(c *Config) { c.Concurrency = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

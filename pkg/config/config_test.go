package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s

gateway:
  endpoints:
    - "https://proxy-one.example/?url="
    - ""
  timeout: 5s
  user_agent: venuescope-test

parser:
  cache_ttl: 2m
  learning_limit: 20

batch:
  batch_size: 50
  delay: 3s
  max_concurrent: 8

llm:
  enabled: true
  endpoint: http://localhost:11434/v1
  model: llama3
  api_key: ${TEST_VENUESCOPE_KEY}
`
		t.Setenv("TEST_VENUESCOPE_KEY", "secret-key")
		configPath := filepath.Join(t.TempDir(), "test-config.yml")
		require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

		cfg, err := Load(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, []string{"https://proxy-one.example/?url=", ""}, cfg.Gateway.Endpoints)
		assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
		assert.Equal(t, "venuescope-test", cfg.Gateway.UserAgent)
		assert.Equal(t, 2*time.Minute, cfg.Parser.CacheTTL)
		assert.Equal(t, 20, cfg.Parser.LearningLimit)
		assert.Equal(t, 50, cfg.Batch.BatchSize)
		assert.Equal(t, 3*time.Second, cfg.Batch.Delay)
		assert.Equal(t, 8, cfg.Batch.MaxConcurrent)
		assert.Equal(t, 500*time.Millisecond, cfg.Batch.GroupPause, "default kept")
		assert.True(t, cfg.LLM.Enabled)
		assert.Equal(t, "secret-key", cfg.LLM.APIKey, "env expanded")
	})

	t.Run("defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "test-config.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("server:\n  listen: \":8081\"\n"), 0o600))

		cfg, err := Load(configPath)
		require.NoError(t, err)

		assert.Equal(t, ":8081", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Empty(t, cfg.Gateway.Endpoints)
		assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
		assert.Equal(t, int64(10*1024*1024), cfg.Gateway.MaxBytes)
		assert.Equal(t, 10*time.Minute, cfg.Parser.CacheTTL)
		assert.Equal(t, 100, cfg.Parser.LearningLimit)
		assert.Equal(t, 20, cfg.Batch.BatchSize)
		assert.Equal(t, 2*time.Second, cfg.Batch.Delay)
		assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
		assert.Equal(t, 10, cfg.Batch.SimpleSize)
		assert.Equal(t, time.Second, cfg.Batch.SimpleDelay)
		assert.False(t, cfg.LLM.Enabled)
		assert.Equal(t, 6000, cfg.LLM.MaxContentChars)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("server: [\n"), 0o600))
		_, err := Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("llm enabled without model", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "llm.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("llm:\n  enabled: true\n  endpoint: http://x\n"), 0o600))
		_, err := Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.model is required")
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, validate(cfg))
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 10*time.Minute, cfg.Parser.CacheTTL)

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":8080", listen)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "ok", modify: func(c *Config) {}},
		{name: "bad temperature", modify: func(c *Config) { c.LLM.Temperature = 3 }, errMsg: "llm.temperature"},
		{name: "tiny gateway timeout", modify: func(c *Config) { c.Gateway.Timeout = time.Millisecond }, errMsg: "gateway timeout"},
		{name: "zero batch size", modify: func(c *Config) { c.Batch.BatchSize = -1 }, errMsg: "batch sizes"},
		{name: "negative delay", modify: func(c *Config) { c.Batch.Delay = -time.Second }, errMsg: "batch delays"},
		{name: "short server timeout", modify: func(c *Config) { c.Server.Timeout = time.Millisecond }, errMsg: "server timeout"},
		{name: "llm without endpoint", modify: func(c *Config) { c.LLM.Enabled = true; c.LLM.Model = "m" }, errMsg: "llm.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := validate(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

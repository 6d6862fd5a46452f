package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:venuescope.db?cache=shared&mode=rwc,description=Run history database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Gateway GatewayConfig `yaml:"gateway" json:"gateway" jsonschema:"description=Fetch gateway configuration"`
	Parser  ParserConfig  `yaml:"parser" json:"parser" jsonschema:"description=Adaptive parser configuration"`
	Batch   BatchConfig   `yaml:"batch" json:"batch" jsonschema:"description=Batch processing configuration"`
	LLM     LLMConfig     `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for generic page extraction"`
}

// GatewayConfig holds proxy rotation settings
type GatewayConfig struct {
	Endpoints []string      `yaml:"endpoints" json:"endpoints" jsonschema:"description=Proxy endpoint templates tried in order; empty string fetches directly"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Timeout of a single fetch attempt"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for outgoing requests"`
	MaxBytes  int64         `yaml:"max_bytes" json:"max_bytes" jsonschema:"default=10485760,description=Maximum response body size"`
}

// ParserConfig holds orchestrator settings
type ParserConfig struct {
	CacheTTL      time.Duration `yaml:"cache_ttl" json:"cache_ttl" jsonschema:"default=10m,description=How long parse results and analyses are reused"`
	LearningLimit int           `yaml:"learning_limit" json:"learning_limit" jsonschema:"default=100,minimum=1,description=Learning entries kept per signal fingerprint"`
}

// BatchConfig holds defaults of both batch entry points
type BatchConfig struct {
	BatchSize     int           `yaml:"batch_size" json:"batch_size" jsonschema:"default=20,minimum=1,description=URLs per chunk in bulk runs"`
	Delay         time.Duration `yaml:"delay" json:"delay" jsonschema:"default=2s,description=Pause between chunks in bulk runs"`
	MaxConcurrent int           `yaml:"max_concurrent" json:"max_concurrent" jsonschema:"default=5,minimum=1,description=URLs parsed concurrently in a sub-group"`
	GroupPause    time.Duration `yaml:"group_pause" json:"group_pause" jsonschema:"default=500ms,description=Pause between sub-groups of a chunk"`
	SimpleSize    int           `yaml:"simple_size" json:"simple_size" jsonschema:"default=10,minimum=1,description=URLs per chunk in simple batch parsing"`
	SimpleDelay   time.Duration `yaml:"simple_delay" json:"simple_delay" jsonschema:"default=1s,description=Pause between chunks in simple batch parsing"`
}

// LLMConfig holds LLM configuration for generic page extraction
type LLMConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Use LLM when no other extraction finds events"`
	Endpoint        string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey          string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model           string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature     float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.1,description=Temperature for response generation"`
	MaxTokens       int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=2000,description=Maximum tokens in response"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
	SystemPrompt    string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt for the LLM (optional)"`
	MaxContentChars int           `yaml:"max_content_chars" json:"max_content_chars" jsonschema:"default=6000,description=Page text sent to the LLM is cut to this size"`
	UseJSONMode     bool          `yaml:"use_json_mode" json:"use_json_mode" jsonschema:"default=false,description=Use JSON response format (not all models support this)"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults set, used when no config file given
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:venuescope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// gateway, empty endpoint list is resolved by the gateway itself
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 10 * time.Second
	}
	if cfg.Gateway.MaxBytes == 0 {
		cfg.Gateway.MaxBytes = 10 * 1024 * 1024
	}

	// parser
	if cfg.Parser.CacheTTL == 0 {
		cfg.Parser.CacheTTL = 10 * time.Minute
	}
	if cfg.Parser.LearningLimit == 0 {
		cfg.Parser.LearningLimit = 100
	}

	// batch
	if cfg.Batch.BatchSize == 0 {
		cfg.Batch.BatchSize = 20
	}
	if cfg.Batch.Delay == 0 {
		cfg.Batch.Delay = 2 * time.Second
	}
	if cfg.Batch.MaxConcurrent == 0 {
		cfg.Batch.MaxConcurrent = 5
	}
	if cfg.Batch.GroupPause == 0 {
		cfg.Batch.GroupPause = 500 * time.Millisecond
	}
	if cfg.Batch.SimpleSize == 0 {
		cfg.Batch.SimpleSize = 10
	}
	if cfg.Batch.SimpleDelay == 0 {
		cfg.Batch.SimpleDelay = time.Second
	}

	// llm
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2000
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.LLM.MaxContentChars == 0 {
		cfg.LLM.MaxContentChars = 6000
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate LLM config, only matters when enabled
	if cfg.LLM.Enabled {
		if cfg.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required when llm is enabled")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm is enabled")
		}
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}

	// validate gateway config
	if cfg.Gateway.Timeout < 100*time.Millisecond {
		return fmt.Errorf("gateway timeout must be at least 100ms")
	}
	if cfg.Gateway.MaxBytes < 1024 {
		return fmt.Errorf("gateway max_bytes must be at least 1024")
	}

	// validate parser config
	if cfg.Parser.CacheTTL < 0 {
		return fmt.Errorf("parser cache_ttl must be non-negative")
	}
	if cfg.Parser.LearningLimit < 1 {
		return fmt.Errorf("parser learning_limit must be at least 1")
	}

	// validate batch config
	if cfg.Batch.BatchSize < 1 || cfg.Batch.MaxConcurrent < 1 || cfg.Batch.SimpleSize < 1 {
		return fmt.Errorf("batch sizes and max_concurrent must be at least 1")
	}
	if cfg.Batch.Delay < 0 || cfg.Batch.GroupPause < 0 || cfg.Batch.SimpleDelay < 0 {
		return fmt.Errorf("batch delays must be non-negative")
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

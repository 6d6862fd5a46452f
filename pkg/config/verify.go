package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema checks the config against the embedded JSON schema.
// Only top-level sections and required fields are checked, not full draft semantics.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema struct {
		Ref         string                     `json:"$ref"`
		Definitions map[string]json.RawMessage `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	var root struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if raw, ok := schema.Definitions["Config"]; ok {
		if err := json.Unmarshal(raw, &root); err != nil {
			return fmt.Errorf("parse config definition: %w", err)
		}
	}

	// convert config to JSON to compare sections
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	for key := range configMap {
		if _, ok := root.Properties[key]; !ok {
			return fmt.Errorf("section %q is not in schema", key)
		}
	}

	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.Gateway.Timeout == 0 {
		return fmt.Errorf("gateway.timeout is required")
	}
	if cfg.Parser.CacheTTL == 0 {
		return fmt.Errorf("parser.cache_ttl is required")
	}

	if cfg.LLM.Enabled && cfg.LLM.MaxContentChars <= 0 {
		return fmt.Errorf("llm.max_content_chars must be positive when llm is enabled")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

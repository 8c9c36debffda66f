// Package config loads the layered engine configuration: built-in
// defaults, an optional YAML file, then PARLEY_* environment overrides.
package config

import (
	toolmcp "github.com/parley-ai/parley/pkg/tools/mcp"

	"github.com/parley-ai/parley/pkg/mcp"
)

// Config is the root configuration.
type Config struct {
	Backend      BackendConfig          `yaml:"backend"`
	Conversation ConversationConfig     `yaml:"conversation"`
	Integrations []mcp.ServerDescriptor `yaml:"integrations"`
	MCPServers   []toolmcp.ServerConfig `yaml:"mcp_servers"`
	Logging      LoggingConfig          `yaml:"logging"`
}

// BackendConfig selects and configures the inference backend.
type BackendConfig struct {
	// Type is "openaicompat" or "lmstudio".
	Type string `yaml:"type"`

	// BaseURL is the server address, e.g. "http://localhost:1234/v1".
	BaseURL string `yaml:"base_url"`

	// APIKey is the optional bearer token.
	APIKey string `yaml:"api_key"`

	// APIKeyFile reads the bearer token from a file when APIKey is empty.
	APIKeyFile string `yaml:"api_key_file"`
}

// ConversationConfig carries the per-turn defaults.
type ConversationConfig struct {
	Model             string  `yaml:"model"`
	Prompt            string  `yaml:"prompt"`
	Temperature       float64 `yaml:"temperature"`
	ContextLength     int     `yaml:"context_length"`
	MaxHistory        int     `yaml:"max_history"`
	ParallelToolCalls bool    `yaml:"parallel_tool_calls"`
	StripEmojis       bool    `yaml:"strip_emojis"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			Type:    "openaicompat",
			BaseURL: "http://localhost:1234/v1",
		},
		Conversation: ConversationConfig{
			Temperature:       0.6,
			ContextLength:     8000,
			MaxHistory:        0,
			ParallelToolCalls: true,
			StripEmojis:       false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

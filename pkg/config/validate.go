package config

import "fmt"

var validBackends = map[string]bool{
	"openaicompat": true,
	"lmstudio":     true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !validBackends[c.Backend.Type] {
		return fmt.Errorf("backend.type: unknown backend %q", c.Backend.Type)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url: must not be empty")
	}
	if c.Conversation.Temperature < 0 || c.Conversation.Temperature > 2 {
		return fmt.Errorf("conversation.temperature: %v out of range [0, 2]", c.Conversation.Temperature)
	}
	if c.Conversation.ContextLength < 0 {
		return fmt.Errorf("conversation.context_length: must not be negative")
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format: must be \"text\" or \"json\"")
	}
	for i, s := range c.MCPServers {
		if s.Name == "" {
			return fmt.Errorf("mcp_servers[%d].name: must not be empty", i)
		}
		if s.URL == "" {
			return fmt.Errorf("mcp_servers[%d].url: must not be empty", i)
		}
	}
	return nil
}

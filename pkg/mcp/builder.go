// Package mcp normalizes stored MCP server descriptors into the
// integrations payload inference backends expect: ephemeral URL-based
// servers become structured objects, pre-configured plugins become bare
// identifier strings. The builder is best-effort; invalid records are
// skipped with a warning and never abort the batch.
package mcp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Descriptor type tags.
const (
	TypeEphemeral = "ephemeral_mcp"
	TypePlugin    = "plugin"
)

// ServerDescriptor is one stored MCP server configuration record, as it
// arrives from config. Fields are validated by BuildIntegrations, not here.
type ServerDescriptor struct {
	// Type is "ephemeral_mcp" (the default when empty) or "plugin".
	Type string `json:"type" yaml:"type"`

	// Label and URL are required for ephemeral servers.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`

	// PluginID is required for plugin servers, e.g. "mcp/playwright".
	PluginID string `json:"plugin_id,omitempty" yaml:"plugin_id,omitempty"`

	// AllowedTools is an optional comma-separated tool allow-list.
	AllowedTools string `json:"allowed_tools,omitempty" yaml:"allowed_tools,omitempty"`

	// Headers are optional auth headers for ephemeral servers, supplied
	// either as a JSON-encoded string or as an already-structured map.
	Headers any `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// EphemeralIntegration is the wire form of an ephemeral MCP server entry.
type EphemeralIntegration struct {
	Type         string            `json:"type"`
	ServerLabel  string            `json:"server_label"`
	ServerURL    string            `json:"server_url"`
	AllowedTools []string          `json:"allowed_tools,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// BuildIntegrations converts stored server descriptors into the
// integrations list format. Ephemeral entries become EphemeralIntegration
// values, plugins become bare identifier strings. Entries missing required
// fields are skipped with a warning.
func BuildIntegrations(servers []ServerDescriptor) []any {
	var integrations []any

	for _, server := range servers {
		serverType := server.Type
		if serverType == "" {
			serverType = TypeEphemeral
		}

		switch serverType {
		case TypeEphemeral:
			label := strings.TrimSpace(server.Label)
			url := strings.TrimSpace(server.URL)
			if label == "" || url == "" {
				slog.Warn("skipping ephemeral MCP server: 'label' and 'url' are required")
				continue
			}

			entry := EphemeralIntegration{
				Type:         TypeEphemeral,
				ServerLabel:  label,
				ServerURL:    url,
				AllowedTools: parseAllowedTools(server.AllowedTools),
				Headers:      parseHeaders(label, server.Headers),
			}
			integrations = append(integrations, entry)

		case TypePlugin:
			pluginID := strings.TrimSpace(server.PluginID)
			if pluginID == "" {
				slog.Warn("skipping plugin MCP server: 'plugin_id' is required")
				continue
			}
			// Backends accept a plain string plugin ID in the list.
			integrations = append(integrations, pluginID)

		default:
			slog.Warn("skipping MCP server with unknown type", "type", serverType)
		}
	}

	return integrations
}

// parseAllowedTools splits a comma-separated allow-list into trimmed,
// non-empty tool names. Returns nil when nothing remains.
func parseAllowedTools(raw string) []string {
	if raw == "" {
		return nil
	}
	var allowed []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			allowed = append(allowed, name)
		}
	}
	return allowed
}

// parseHeaders normalizes the headers field: a JSON-encoded string is
// parsed (malformed JSON is logged and discarded), an already-structured
// map is converted as-is. Any other shape is dropped.
func parseHeaders(label string, raw any) map[string]string {
	switch v := raw.(type) {
	case nil:
		return nil

	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		var headers map[string]string
		if err := json.Unmarshal([]byte(v), &headers); err != nil {
			slog.Warn("could not parse MCP server headers JSON",
				"server", label,
				"error", err.Error(),
			)
			return nil
		}
		return headers

	case map[string]string:
		if len(v) == 0 {
			return nil
		}
		return v

	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		headers := make(map[string]string, len(v))
		for k, val := range v {
			headers[k] = fmt.Sprint(val)
		}
		return headers

	default:
		slog.Warn("ignoring MCP server headers of unsupported shape",
			"server", label,
			"type", fmt.Sprintf("%T", raw),
		)
		return nil
	}
}

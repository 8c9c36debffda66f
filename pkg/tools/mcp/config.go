// Package mcp provides a tools.Executor backed by Model Context Protocol
// servers. The engine discovers each server's tools once, routes calls to
// the server that provides them, and converts results to tool messages.
package mcp

// ServerConfig describes a single MCP server connection.
type ServerConfig struct {
	// Name is the logical name for this server, used for logging and
	// identification when routing tool calls.
	Name string `json:"name" yaml:"name"`

	// Transport is the transport type to use: "sse" or "streamable-http".
	// If empty, defaults to "streamable-http".
	Transport string `json:"transport" yaml:"transport"`

	// URL is the MCP server endpoint URL.
	URL string `json:"url" yaml:"url"`

	// Headers contains additional HTTP headers to send with requests,
	// typically used for authentication (API keys, bearer tokens, etc.).
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parley-ai/parley/pkg/chat"
	"github.com/parley-ai/parley/pkg/tools"
)

// Client wraps an MCP SDK client and session for a single server
// connection. It handles connection lifecycle, tool discovery, and tool
// execution.
type Client struct {
	cfg     ServerConfig
	client  *mcp.Client
	session *mcp.ClientSession

	mu            sync.Mutex
	cachedSpecs   []chat.ToolSpec
	specsResolved bool
}

// NewClient creates a Client for the given server configuration. Call
// Connect to establish the connection.
func NewClient(cfg ServerConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect establishes the MCP connection, performing the protocol
// handshake.
func (c *Client) Connect(ctx context.Context) error {
	return c.ConnectWithTransport(ctx, nil)
}

// ConnectWithTransport establishes the MCP connection using the given
// transport. If transport is nil, one is created from the server
// configuration.
func (c *Client) ConnectWithTransport(ctx context.Context, transport mcp.Transport) error {
	c.client = mcp.NewClient(
		&mcp.Implementation{
			Name:    "parley",
			Version: "1.0.0",
		},
		&mcp.ClientOptions{
			Capabilities: &mcp.ClientCapabilities{},
		},
	)

	if transport == nil {
		t, err := c.createTransport()
		if err != nil {
			return fmt.Errorf("creating transport for %q: %w", c.cfg.Name, err)
		}
		transport = t
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connecting to MCP server %q: %w", c.cfg.Name, err)
	}
	c.session = session
	return nil
}

// createTransport creates an MCP transport based on the server configuration.
func (c *Client) createTransport() (mcp.Transport, error) {
	var httpClient *http.Client
	if len(c.cfg.Headers) > 0 {
		httpClient = &http.Client{
			Transport: &headerTransport{
				base:    http.DefaultTransport,
				headers: c.cfg.Headers,
			},
		}
	}

	switch c.cfg.Transport {
	case "sse":
		transport := &mcp.SSEClientTransport{
			Endpoint: c.cfg.URL,
		}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	case "streamable-http", "":
		transport := &mcp.StreamableClientTransport{
			Endpoint: c.cfg.URL,
		}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	default:
		return nil, fmt.Errorf("unsupported transport type %q", c.cfg.Transport)
	}
}

// headerTransport is an http.RoundTripper that adds custom headers to
// every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// DiscoverTools queries the server for available tools, converts them to
// generic tool specs, and caches the results.
func (c *Client) DiscoverTools(ctx context.Context) ([]chat.ToolSpec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.specsResolved {
		return c.cachedSpecs, nil
	}

	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	var specs []chat.ToolSpec
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("listing tools from %q: %w", c.cfg.Name, err)
		}
		spec, convErr := convertTool(tool)
		if convErr != nil {
			return nil, fmt.Errorf("converting tool %q from %q: %w", tool.Name, c.cfg.Name, convErr)
		}
		specs = append(specs, spec)
	}

	c.cachedSpecs = specs
	c.specsResolved = true
	return specs, nil
}

// CallTool executes a tool call on the server and returns the result.
// Server-side failures are reported in the result, not as an error.
func (c *Client) CallTool(ctx context.Context, call chat.ToolCall) (*tools.Result, error) {
	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	params := &mcp.CallToolParams{
		Name:      call.Name,
		Arguments: call.Args,
	}

	result, err := c.session.CallTool(ctx, params)
	if err != nil {
		return &tools.Result{
			CallID:  call.ID,
			Output:  fmt.Sprintf("MCP tool call error: %v", err),
			IsError: true,
		}, nil
	}

	return convertResult(call.ID, result), nil
}

// Close closes the MCP session.
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

// convertTool converts an MCP Tool to a generic tool spec.
func convertTool(t *mcp.Tool) (chat.ToolSpec, error) {
	var params map[string]any
	if t.InputSchema != nil {
		data, err := json.Marshal(t.InputSchema)
		if err != nil {
			return chat.ToolSpec{}, fmt.Errorf("marshaling input schema: %w", err)
		}
		if err := json.Unmarshal(data, &params); err != nil {
			return chat.ToolSpec{}, fmt.Errorf("decoding input schema: %w", err)
		}
	}

	return chat.ToolSpec{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}, nil
}

// convertResult converts an MCP CallToolResult to a tool result,
// concatenating all text content.
func convertResult(callID string, result *mcp.CallToolResult) *tools.Result {
	var output string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			if output != "" {
				output += "\n"
			}
			output += tc.Text
		}
	}

	return &tools.Result{
		CallID:  callID,
		Output:  output,
		IsError: result.IsError,
	}
}

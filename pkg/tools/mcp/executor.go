package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/parley-ai/parley/pkg/chat"
	"github.com/parley-ai/parley/pkg/tools"
)

// Executor implements tools.Executor for MCP server tools. It manages
// connections to multiple servers, discovers their tools, and routes tool
// calls to the server that provides them.
type Executor struct {
	mu sync.RWMutex

	// clients maps server name to Client.
	clients map[string]*Client

	// toolToServer maps tool name to the server name that provides it.
	toolToServer map[string]string

	// discovered tracks whether tools have been discovered.
	discovered bool
}

var _ tools.Executor = (*Executor)(nil)

// NewExecutor creates an Executor over the given connected clients.
func NewExecutor(clients map[string]*Client) *Executor {
	return &Executor{
		clients:      clients,
		toolToServer: make(map[string]string),
	}
}

// CanExecute returns true if any connected server provides the named tool.
// The first call triggers lazy tool discovery.
func (e *Executor) CanExecute(toolName string) bool {
	e.ensureDiscovered()

	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.toolToServer[toolName]
	return ok
}

// Execute routes the tool call to the correct server and returns the result.
func (e *Executor) Execute(ctx context.Context, call chat.ToolCall) (*tools.Result, error) {
	e.ensureDiscovered()

	e.mu.RLock()
	serverName, ok := e.toolToServer[call.Name]
	if !ok {
		e.mu.RUnlock()
		return &tools.Result{
			CallID:  call.ID,
			Output:  fmt.Sprintf("no MCP server provides tool %q", call.Name),
			IsError: true,
		}, nil
	}
	client := e.clients[serverName]
	e.mu.RUnlock()

	return client.CallTool(ctx, call)
}

// DiscoveredTools returns all tool specs discovered from connected
// servers, for merging into the request's tool list.
func (e *Executor) DiscoveredTools() []chat.ToolSpec {
	e.ensureDiscovered()

	e.mu.RLock()
	defer e.mu.RUnlock()

	var specs []chat.ToolSpec
	for _, client := range e.clients {
		client.mu.Lock()
		specs = append(specs, client.cachedSpecs...)
		client.mu.Unlock()
	}
	return specs
}

// Close closes all client connections.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastErr error
	for name, client := range e.clients {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close MCP client", "server", name, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// ensureDiscovered triggers tool discovery if it hasn't been done yet.
func (e *Executor) ensureDiscovered() {
	e.mu.RLock()
	if e.discovered {
		e.mu.RUnlock()
		return
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check after acquiring write lock.
	if e.discovered {
		return
	}

	ctx := context.Background()
	for name, client := range e.clients {
		specs, err := client.DiscoverTools(ctx)
		if err != nil {
			slog.Error("failed to discover tools from MCP server",
				"server", name,
				"error", err,
			)
			continue
		}

		for _, spec := range specs {
			if _, exists := e.toolToServer[spec.Name]; exists {
				slog.Warn("duplicate MCP tool name, using first provider",
					"tool", spec.Name,
					"server", name,
				)
				continue
			}
			e.toolToServer[spec.Name] = name
		}

		slog.Info("discovered MCP tools",
			"server", name,
			"count", len(specs),
		)
	}

	e.discovered = true
}

package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parley-ai/parley/pkg/chat"
)

func TestExecutorWithoutServers(t *testing.T) {
	e := NewExecutor(nil)

	if e.CanExecute("anything") {
		t.Error("executor with no servers claims a tool")
	}

	result, err := e.Execute(context.Background(), chat.ToolCall{ID: "call_1", Name: "anything"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Errorf("result = %+v, want error result", result)
	}
}

func TestExecutorRoutesByDiscoveredTool(t *testing.T) {
	e := NewExecutor(map[string]*Client{})
	e.discovered = true
	e.toolToServer["search"] = "ghost"

	if !e.CanExecute("search") {
		t.Error("known tool not claimed")
	}
	if e.CanExecute("other") {
		t.Error("unknown tool claimed")
	}
}

func TestConvertResultJoinsTextContent(t *testing.T) {
	result := convertResult("call_1", &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "first"},
			&mcp.TextContent{Text: "second"},
		},
	})

	if result.CallID != "call_1" {
		t.Errorf("call id = %q", result.CallID)
	}
	if result.Output != "first\nsecond" {
		t.Errorf("output = %q", result.Output)
	}
	if result.IsError {
		t.Error("unexpected error flag")
	}
}

func TestConvertResultErrorFlag(t *testing.T) {
	result := convertResult("call_1", &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "boom"}},
		IsError: true,
	})
	if !result.IsError {
		t.Error("error flag not propagated")
	}
}

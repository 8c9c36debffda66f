package lmstudio

import (
	"fmt"
	"log/slog"
	"strings"
)

// resolvedCall is a tool call LM Studio already executed server-side. It is
// surfaced for logging only; nothing remains for the engine to run.
type resolvedCall struct {
	Tool      string
	Arguments map[string]any
	Output    any
}

// parseResponse walks the response output items and returns the assistant
// text plus any server-resolved tool calls. Reasoning items are dropped
// after debug logging; message texts are joined with newlines.
func parseResponse(resp *nativeResponse) (string, []resolvedCall) {
	var texts []string
	var calls []resolvedCall

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			if item.Content != "" {
				texts = append(texts, item.Content)
			}
		case "reasoning":
			if strings.TrimSpace(item.Content) != "" {
				slog.Debug("model reasoning", "text", item.Content)
			}
		case "tool_call":
			calls = append(calls, resolvedCall{
				Tool:      item.Tool,
				Arguments: item.Arguments,
				Output:    item.Output,
			})
		}
	}

	return strings.Join(texts, "\n"), calls
}

// logResolvedCalls records server-side tool activity as context.
func logResolvedCalls(calls []resolvedCall) {
	if len(calls) == 0 {
		return
	}
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, fmt.Sprintf("[MCP:%s] %v", c.Tool, c.Output))
	}
	slog.Debug("server-resolved tool calls", "results", strings.Join(lines, "\n"))
}

// Package tools defines the tool-execution collaborator contract the
// engine consumes between loop iterations, plus the conversion of generic
// tool specs to backend wire form. The engine only requests execution and
// consumes results; resolving a call is the executor's business.
package tools

import (
	"context"
	"strings"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

// Executor resolves tool calls to results. Implementations live outside
// the engine core; pkg/tools/mcp provides one speaking the Model Context
// Protocol.
type Executor interface {
	// CanExecute reports whether this executor handles the named tool.
	CanExecute(toolName string) bool

	// Execute runs the tool and returns its result. Execution failures
	// are reported in the Result (IsError), not as an error return; an
	// error return means the executor itself is unusable.
	Execute(ctx context.Context, call chat.ToolCall) (*Result, error)
}

// Result is the output of one tool execution.
type Result struct {
	// CallID matches the originating chat.ToolCall.ID.
	CallID string

	// Output is the structured result payload.
	Output any

	// IsError indicates the output describes a failure.
	IsError bool
}

// fallback used when a spec carries no usable description.
const defaultToolDescription = "A callable function"

// FormatSpec converts a tool spec to wire form, scrubbing schema keywords
// many inference servers reject and substituting a generic description
// when none is provided.
func FormatSpec(spec chat.ToolSpec) backend.Tool {
	desc := spec.Description
	if strings.TrimSpace(desc) == "" {
		desc = defaultToolDescription
	}
	return backend.Tool{
		Type: "function",
		Function: backend.FunctionDef{
			Name:        spec.Name,
			Description: desc,
			Parameters:  chat.ScrubSchema(spec.Parameters),
		},
	}
}

// FormatSpecs converts a list of tool specs to wire form. Nil in, nil out.
func FormatSpecs(specs []chat.ToolSpec) []backend.Tool {
	if len(specs) == 0 {
		return nil
	}
	out := make([]backend.Tool, 0, len(specs))
	for _, s := range specs {
		out = append(out, FormatSpec(s))
	}
	return out
}

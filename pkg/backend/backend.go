package backend

import (
	"context"
)

// Backend abstracts an LLM inference backend. Adapters own their wire
// protocol; the engine sees only chat.Delta values.
//
// Implementations must be safe for concurrent use by multiple goroutines,
// though a single conversation turn is always driven by one goroutine.
type Backend interface {
	// Name returns the adapter identifier (e.g. "openaicompat", "lmstudio").
	Name() string

	// Stream performs one inference call. Errors establishing the call
	// (request build, connect, non-2xx status) are returned directly;
	// mid-stream failures surface through DeltaStream.Err. A non-streaming
	// backend satisfies the contract with a stream of length one.
	Stream(ctx context.Context, req *Request) (*DeltaStream, error)

	// ListModels returns the models the backend serves. Failures are
	// non-fatal to callers, which fall back to configured defaults.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Close releases adapter resources (idle HTTP connections).
	Close() error
}

// Request carries everything one inference call needs. The message list is
// already trimmed and translated to wire form by the engine.
type Request struct {
	Model    string
	Messages []Message
	Tools    []Tool

	// Integrations is the free-form MCP integration payload; entries are
	// either ephemeral server objects or bare plugin-ID strings.
	Integrations []any

	Temperature       float64
	ParallelToolCalls bool

	// ContextLength is forwarded only by backends whose protocol carries it.
	ContextLength int

	// StripEmojis enables the emoji-removal transform on visible text.
	StripEmojis bool
}

// ModelInfo describes a model served by a backend.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

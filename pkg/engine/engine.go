package engine

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
	"github.com/parley-ai/parley/pkg/mcp"
	"github.com/parley-ai/parley/pkg/tools"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine orchestrates conversation turns against one backend. It is safe
// for concurrent use across different logs; a single log must not be
// driven by two goroutines at once.
type Engine struct {
	backend     backend.Backend
	executor    tools.Executor
	attachments chat.AttachmentStore
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutor installs the tool executor used to resolve tool calls.
// Without one, every issued call is answered with an error result.
func WithExecutor(x tools.Executor) Option {
	return func(e *Engine) { e.executor = x }
}

// WithAttachmentStore installs the store used to resolve user message
// attachments to raw bytes.
func WithAttachmentStore(s chat.AttachmentStore) Option {
	return func(e *Engine) { e.attachments = s }
}

// New creates an Engine for the given backend.
func New(b backend.Backend, opts ...Option) (*Engine, error) {
	if b == nil {
		return nil, errors.New("engine: backend is required")
	}
	e := &Engine{backend: b}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Options configures one conversation turn.
type Options struct {
	// Model is the backend model identifier.
	Model string

	// Temperature is the sampling temperature.
	Temperature float64

	// ContextLength is forwarded to backends whose protocol carries it.
	ContextLength int

	// MaxHistory is the number of past assistant rounds to keep. Values
	// below 1 disable history trimming.
	MaxHistory int

	// ParallelToolCalls executes a step's tool calls concurrently.
	ParallelToolCalls bool

	// StripEmojis removes emoji from visible assistant text.
	StripEmojis bool

	// MCPServers are forwarded as backend-orchestrated integrations.
	MCPServers []mcp.ServerDescriptor
}

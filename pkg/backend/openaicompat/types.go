package openaicompat

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/parley-ai/parley/pkg/backend"
)

// Chunk decoding sits on the hot path of every streamed token.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// chatCompletionRequest is the request body for /v1/chat/completions.
// Integrations is a non-standard field; servers that don't understand it
// silently ignore it.
type chatCompletionRequest struct {
	Model             string            `json:"model"`
	Messages          []backend.Message `json:"messages"`
	Tools             []backend.Tool    `json:"tools,omitempty"`
	Temperature       float64           `json:"temperature"`
	ParallelToolCalls bool              `json:"parallel_tool_calls"`
	Stream            bool              `json:"stream"`
	Integrations      []any             `json:"integrations,omitempty"`
}

// chatCompletionChunk is a single SSE chunk in a streaming response.
type chatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Model   string            `json:"model"`
	Choices []chatChunkChoice `json:"choices"`
}

// chatChunkChoice is a streaming choice delta.
type chatChunkChoice struct {
	Index        int            `json:"index"`
	Delta        chatChunkDelta `json:"delta"`
	FinishReason *string        `json:"finish_reason"`
}

// chatChunkDelta holds the incremental content of one chunk.
type chatChunkDelta struct {
	Role      string              `json:"role,omitempty"`
	Content   *string             `json:"content,omitempty"`
	ToolCalls []chatChunkToolCall `json:"tool_calls,omitempty"`
}

// chatChunkToolCall is an incremental tool call fragment. Early fragments
// carry the id and function name; later ones often carry only argument
// text.
type chatChunkToolCall struct {
	Index    int                   `json:"index"`
	ID       string                `json:"id,omitempty"`
	Type     string                `json:"type,omitempty"`
	Function chatChunkFunctionCall `json:"function"`
}

// chatChunkFunctionCall holds incremental function call data.
type chatChunkFunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// chatModelsResponse is the response from /v1/models.
type chatModelsResponse struct {
	Object string              `json:"object"`
	Data   []backend.ModelInfo `json:"data"`
}

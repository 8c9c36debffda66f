package lmstudio

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/parley-ai/parley/pkg/backend"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// nativeRequest is the POST /api/v1/chat payload.
type nativeRequest struct {
	Model         string         `json:"model"`
	Input         []inputMessage `json:"input"`
	Temperature   float64        `json:"temperature"`
	ContextLength int            `json:"context_length"`
	Integrations  []any          `json:"integrations,omitempty"`
	Tools         []backend.Tool `json:"tools,omitempty"`
}

// inputMessage is one entry of the native input list. The native API only
// understands plain text content.
type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// nativeResponse is the POST /api/v1/chat response body.
type nativeResponse struct {
	ModelInstanceID string       `json:"model_instance_id,omitempty"`
	Output          []outputItem `json:"output"`
}

// outputItem is one element of the response output list. Fields are
// populated depending on Type: "message" and "reasoning" carry Content,
// "tool_call" carries Tool, Arguments and Output.
type outputItem struct {
	Type         string         `json:"type"`
	Content      string         `json:"content,omitempty"`
	Tool         string         `json:"tool,omitempty"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	Output       any            `json:"output,omitempty"`
	ProviderInfo map[string]any `json:"provider_info,omitempty"`
}

// nativeModelsResponse is the GET /api/v1/models response body.
type nativeModelsResponse struct {
	Data []backend.ModelInfo `json:"data"`
}

package lmstudio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

func TestNewStripsVersionSuffix(t *testing.T) {
	for _, tc := range []struct {
		base string
		root string
	}{
		{"http://localhost:1234/v1", "http://localhost:1234"},
		{"http://localhost:1234/v1/", "http://localhost:1234"},
		{"http://localhost:1234", "http://localhost:1234"},
		{"http://host/api/v1", "http://host/api"},
	} {
		c, err := New(Config{BaseURL: tc.base})
		if err != nil {
			t.Fatal(err)
		}
		if c.root != tc.root {
			t.Errorf("New(%q) root = %q, want %q", tc.base, c.root, tc.root)
		}
	}
}

func TestStreamEmitsSingleDelta(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotPayload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		fmt.Fprint(w, `{
			"output": [
				{"type": "reasoning", "content": "thinking it over"},
				{"type": "message", "content": "First part."},
				{"type": "tool_call", "tool": "web_search", "arguments": {"q": "go"}, "output": "results"},
				{"type": "message", "content": "Second part."}
			]
		}`)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	stream, err := c.Stream(context.Background(), &backend.Request{
		Model:         "qwen3-8b",
		Temperature:   0.6,
		ContextLength: 8000,
		Messages: []backend.Message{
			{Role: "system", Content: "Be brief."},
			{Role: "user", Content: "hello"},
		},
		Integrations: []any{"mcp/playwright"},
	})
	if err != nil {
		t.Fatal(err)
	}

	var deltas []chat.Delta
	for d := range stream.Deltas() {
		deltas = append(deltas, d)
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(deltas))
	}
	if deltas[0].Role != chat.RoleAssistant {
		t.Errorf("role = %q", deltas[0].Role)
	}
	if deltas[0].Content != "First part.\nSecond part." {
		t.Errorf("content = %q", deltas[0].Content)
	}

	if gotPayload["model"] != "qwen3-8b" {
		t.Errorf("payload model = %v", gotPayload["model"])
	}
	if gotPayload["context_length"] != float64(8000) {
		t.Errorf("payload context_length = %v", gotPayload["context_length"])
	}
	if _, ok := gotPayload["integrations"]; !ok {
		t.Error("payload missing integrations")
	}
	if _, ok := gotPayload["tools"]; ok {
		t.Error("payload carries tools despite none being set")
	}
}

func TestStreamStatusErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Stream(context.Background(), &backend.Request{Model: "missing"})
	var bErr *chat.BackendError
	if !errors.As(err, &bErr) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if bErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", bErr.StatusCode)
	}
	if !strings.Contains(bErr.Body, "model not found") {
		t.Errorf("body = %q", bErr.Body)
	}
}

func TestToNativeInput(t *testing.T) {
	input := toNativeInput([]backend.Message{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: []backend.ContentPart{
			{Type: "text", Text: "look at"},
			{Type: "image_url"},
			{Type: "text", Text: "this"},
		}},
		{Role: "assistant", Content: ""},
		{Role: "tool", ToolCallID: "call_1", Content: "42"},
		{Role: "tool", Content: "done"},
	})

	want := []inputMessage{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "look at this"},
		{Role: "user", Content: "[Tool result for call_1]: 42"},
		{Role: "user", Content: "[Tool result for tool]: done"},
	}
	if len(input) != len(want) {
		t.Fatalf("got %d messages, want %d: %+v", len(input), len(want), input)
	}
	for i := range want {
		if input[i] != want[i] {
			t.Errorf("input[%d] = %+v, want %+v", i, input[i], want[i])
		}
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":[{"id":"qwen3-8b"},{"id":"llama-3.1-8b"}]}`)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 2 || models[0].ID != "qwen3-8b" {
		t.Fatalf("models = %+v", models)
	}
}

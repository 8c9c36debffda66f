package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

// memStore serves attachment bytes from a map.
type memStore map[string][]byte

func (s memStore) Read(ctx context.Context, ref string) ([]byte, error) {
	data, ok := s[ref]
	if !ok {
		return nil, errors.New("not found: " + ref)
	}
	return data, nil
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(&scriptedBackend{script: [][]chat.Delta{nil}}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestTranslateToolResult(t *testing.T) {
	e := newTestEngine(t)
	log := &chat.Log{}
	log.Append(chat.Message{
		Role:       chat.RoleTool,
		ToolCallID: "call_1",
		ToolName:   "get_weather",
		Result:     map[string]any{"forecast": "sunny", "high": 28},
	})

	wire, err := e.translateLog(context.Background(), log)
	if err != nil {
		t.Fatal(err)
	}
	if len(wire) != 1 {
		t.Fatalf("got %d messages", len(wire))
	}
	if wire[0].Role != "tool" || wire[0].ToolCallID != "call_1" {
		t.Errorf("message = %+v", wire[0])
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(wire[0].Content.(string)), &decoded); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
	if decoded["forecast"] != "sunny" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestTranslateNonSerializableToolResult(t *testing.T) {
	e := newTestEngine(t)
	log := &chat.Log{}
	log.Append(chat.Message{
		Role:       chat.RoleTool,
		ToolCallID: "call_1",
		Result:     make(chan int),
	})

	wire, err := e.translateLog(context.Background(), log)
	if err != nil {
		t.Fatalf("serialization failure must not abort the turn: %v", err)
	}
	if content := wire[0].Content.(string); content == "" || content == "null" {
		t.Errorf("fallback content = %q", content)
	}
}

func TestTranslateDropsEmptyMessages(t *testing.T) {
	e := newTestEngine(t)
	log := &chat.Log{}
	log.Append(
		chat.Message{Role: chat.RoleSystem, Content: ""},
		chat.Message{Role: chat.RoleUser, Content: ""},
		chat.Message{Role: chat.RoleUser, Content: "kept"},
	)

	wire, err := e.translateLog(context.Background(), log)
	if err != nil {
		t.Fatal(err)
	}
	if len(wire) != 1 || wire[0].Role != "user" {
		t.Fatalf("wire = %+v", wire)
	}
}

func TestTranslateUserAttachment(t *testing.T) {
	store := memStore{"img-1": []byte{0x89, 0x50, 0x4e, 0x47}}
	e := newTestEngine(t, WithAttachmentStore(store))

	log := &chat.Log{}
	log.Append(chat.Message{
		Role:        chat.RoleUser,
		Content:     "what is this?",
		Attachments: []chat.Attachment{{MediaType: "image/png", Ref: "img-1"}},
	})

	wire, err := e.translateLog(context.Background(), log)
	if err != nil {
		t.Fatal(err)
	}
	parts, ok := wire[0].Content.([]backend.ContentPart)
	if !ok || len(parts) != 2 {
		t.Fatalf("content = %+v", wire[0].Content)
	}
	img := parts[0]
	if img.Type != "image_url" || img.ImageURL == nil {
		t.Fatalf("first part = %+v", img)
	}
	if img.ImageURL.URL != "data:image/png;base64,iVBORw==" {
		t.Errorf("url = %q", img.ImageURL.URL)
	}
	if img.ImageURL.Detail != "auto" {
		t.Errorf("detail = %q", img.ImageURL.Detail)
	}
	if parts[1].Type != "text" || parts[1].Text != "what is this?" {
		t.Errorf("text part = %+v", parts[1])
	}
}

func TestTranslateRejectsNonImageAttachment(t *testing.T) {
	e := newTestEngine(t, WithAttachmentStore(memStore{}))
	log := &chat.Log{}
	log.Append(chat.Message{
		Role:        chat.RoleUser,
		Content:     "read this",
		Attachments: []chat.Attachment{{MediaType: "application/pdf", Ref: "doc-1"}},
	})

	_, err := e.translateLog(context.Background(), log)
	var attErr *chat.UnsupportedAttachmentError
	if !errors.As(err, &attErr) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if attErr.MediaType != "application/pdf" {
		t.Errorf("media type = %q", attErr.MediaType)
	}
}

func TestTranslateAssistantToolCallsKeepRawArguments(t *testing.T) {
	e := newTestEngine(t)
	raw := `{"city": "Berlin", "units": "metric"}`
	log := &chat.Log{}
	log.Append(chat.Message{
		Role: chat.RoleAssistant,
		ToolCalls: []chat.ToolCall{{
			ID:      "call_1",
			Name:    "get_weather",
			Args:    map[string]any{"city": "Berlin", "units": "metric"},
			RawArgs: raw,
		}},
	})

	wire, err := e.translateLog(context.Background(), log)
	if err != nil {
		t.Fatal(err)
	}
	if wire[0].Content != nil {
		t.Errorf("content = %v, want nil", wire[0].Content)
	}
	call := wire[0].ToolCalls[0]
	if call.Function.Arguments != raw {
		t.Errorf("arguments = %q, want the streamed text verbatim", call.Function.Arguments)
	}
	if call.Type != "function" {
		t.Errorf("type = %q", call.Type)
	}
}

func TestWireArgumentsFallbacks(t *testing.T) {
	if got := wireArguments(chat.ToolCall{Args: map[string]any{"a": float64(1)}}); got != `{"a":1}` {
		t.Errorf("marshalled args = %q", got)
	}
	if got := wireArguments(chat.ToolCall{}); got != "{}" {
		t.Errorf("empty call args = %q", got)
	}
}

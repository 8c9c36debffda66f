package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

// translateLog converts a conversation log to wire-form messages.
// Unconvertible messages are dropped with a warning; a non-image
// attachment aborts the turn.
func (e *Engine) translateLog(ctx context.Context, log *chat.Log) ([]backend.Message, error) {
	messages := make([]backend.Message, 0, len(log.Messages))
	for i := range log.Messages {
		wire, err := e.translateMessage(ctx, &log.Messages[i])
		if err != nil {
			return nil, err
		}
		if wire == nil {
			continue
		}
		messages = append(messages, *wire)
	}
	return messages, nil
}

// translateMessage converts one log message. Returns nil for messages with
// nothing to send.
func (e *Engine) translateMessage(ctx context.Context, msg *chat.Message) (*backend.Message, error) {
	switch msg.Role {
	case chat.RoleTool:
		return &backend.Message{
			Role:       "tool",
			ToolCallID: msg.ToolCallID,
			Content:    serializeToolResult(msg),
		}, nil

	case chat.RoleSystem:
		if msg.Content == "" {
			break
		}
		return &backend.Message{Role: "system", Content: msg.Content}, nil

	case chat.RoleUser:
		if msg.Content == "" && len(msg.Attachments) == 0 {
			break
		}
		parts := make([]backend.ContentPart, 0, len(msg.Attachments)+1)
		for _, att := range msg.Attachments {
			part, err := e.imagePart(ctx, att)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		if msg.Content != "" {
			parts = append(parts, backend.ContentPart{Type: "text", Text: msg.Content})
		}
		return &backend.Message{Role: "user", Content: parts}, nil

	case chat.RoleAssistant:
		wire := &backend.Message{Role: "assistant"}
		if msg.Content != "" {
			wire.Content = msg.Content
		}
		for _, tc := range msg.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, backend.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: backend.FunctionCall{
					Name:      tc.Name,
					Arguments: wireArguments(tc),
				},
			})
		}
		return wire, nil
	}

	slog.Warn("dropping unconvertible message", "role", msg.Role)
	return nil, nil
}

// imagePart resolves one attachment to an inline base64 image part. Only
// image media types are accepted.
func (e *Engine) imagePart(ctx context.Context, att chat.Attachment) (backend.ContentPart, error) {
	if !strings.HasPrefix(att.MediaType, "image/") {
		return backend.ContentPart{}, &chat.UnsupportedAttachmentError{MediaType: att.MediaType}
	}
	if e.attachments == nil {
		return backend.ContentPart{}, fmt.Errorf("attachment %q: no attachment store configured", att.Ref)
	}
	data, err := e.attachments.Read(ctx, att.Ref)
	if err != nil {
		return backend.ContentPart{}, fmt.Errorf("reading attachment %q: %w", att.Ref, err)
	}
	return backend.ContentPart{
		Type: "image_url",
		ImageURL: &backend.ImageURL{
			URL:    "data:" + att.MediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
			Detail: "auto",
		},
	}, nil
}

// serializeToolResult renders a tool result as JSON. Serialization never
// fails the turn: unencodable values fall back to their string form.
func serializeToolResult(msg *chat.Message) string {
	payload, err := json.Marshal(msg.Result)
	if err != nil {
		slog.Warn("non-serializable tool result", "tool", msg.ToolName, "error", err)
		payload, _ = json.Marshal(fmt.Sprint(msg.Result))
	}
	return string(payload)
}

// wireArguments rebuilds the argument JSON for a previously issued call,
// preferring the text exactly as the backend streamed it.
func wireArguments(tc chat.ToolCall) string {
	if tc.RawArgs != "" {
		return tc.RawArgs
	}
	if tc.Args != nil {
		if b, err := json.Marshal(tc.Args); err == nil {
			return string(b)
		}
	}
	return "{}"
}

package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

// collectStep drains one backend stream into a single assistant message.
func collectStep(ctx context.Context, stream *backend.DeltaStream) (chat.Message, error) {
	msg := chat.Message{Role: chat.RoleAssistant}
	var text strings.Builder

	for delta := range stream.Deltas() {
		if delta.Role != "" && delta.Role != chat.RoleAssistant {
			slog.Warn("unexpected delta role", "role", delta.Role)
		}
		text.WriteString(delta.Content)
		if len(delta.ToolCalls) > 0 {
			msg.ToolCalls = append(msg.ToolCalls, delta.ToolCalls...)
		}
	}
	if err := stream.Err(); err != nil {
		return chat.Message{}, err
	}
	if err := ctx.Err(); err != nil {
		return chat.Message{}, err
	}

	msg.Content = text.String()
	return msg, nil
}

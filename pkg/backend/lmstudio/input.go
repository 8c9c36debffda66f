package lmstudio

import (
	"fmt"
	"strings"

	"github.com/parley-ai/parley/pkg/backend"
)

// toNativeInput converts wire-form chat messages into the native input
// list. Tool results become user-role context lines, multimodal content is
// reduced to its text parts, and empty messages are dropped.
func toNativeInput(messages []backend.Message) []inputMessage {
	input := make([]inputMessage, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == "tool" {
			id := msg.ToolCallID
			if id == "" {
				id = "tool"
			}
			input = append(input, inputMessage{
				Role:    "user",
				Content: fmt.Sprintf("[Tool result for %s]: %s", id, contentText(msg.Content)),
			})
			continue
		}

		text := contentText(msg.Content)
		if text == "" {
			continue
		}
		input = append(input, inputMessage{Role: msg.Role, Content: text})
	}

	return input
}

// contentText flattens message content to plain text. Structured part
// lists keep only their text parts, joined with spaces.
func contentText(content any) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	case []backend.ContentPart:
		var parts []string
		for _, p := range c {
			if p.Type == "text" && p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(c)
	}
}

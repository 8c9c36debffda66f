package engine

import "github.com/parley-ai/parley/pkg/backend"

// trimHistory drops old rounds so long conversations stay within the model
// context. maxRounds counts completed assistant rounds to keep; values
// below 1 disable trimming. The leading message (the system prompt) always
// survives, and a tool message left orphaned at the cut point is removed
// because no backend accepts a tool result without its issuing call.
func trimHistory(messages []backend.Message, maxRounds int) []backend.Message {
	if maxRounds < 1 {
		return messages
	}

	assistants := 0
	for _, m := range messages {
		if m.Role == "assistant" {
			assistants++
		}
	}
	// The current in-progress round is part of the count.
	if assistants-1 < maxRounds {
		return messages
	}

	// Each round is roughly one user and one assistant message.
	keep := 2*maxRounds + 1
	drop := len(messages) - keep
	if drop < 1 {
		return messages
	}

	trimmed := make([]backend.Message, 0, keep)
	trimmed = append(trimmed, messages[0])
	trimmed = append(trimmed, messages[drop:]...)
	if len(trimmed) > 1 && trimmed[1].Role == "tool" {
		trimmed = append(trimmed[:1], trimmed[2:]...)
	}
	return trimmed
}

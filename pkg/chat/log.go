package chat

// Log is the ordered, append-only message sequence for one conversation.
// It is owned exclusively by the caller; the engine reads and appends but
// never reorders, because backends are sensitive to role adjacency (a tool
// message must immediately follow the assistant message that issued the
// corresponding call).
//
// A Log is not safe for concurrent use. The engine never processes two
// turns of the same log concurrently.
type Log struct {
	Messages []Message
}

// Append adds messages to the end of the log.
func (l *Log) Append(msgs ...Message) {
	l.Messages = append(l.Messages, msgs...)
}

// Last returns the most recent message, or nil for an empty log.
func (l *Log) Last() *Message {
	if len(l.Messages) == 0 {
		return nil
	}
	return &l.Messages[len(l.Messages)-1]
}

// UnresolvedToolResults reports whether the turn is still open: either the
// last assistant message issued tool calls whose results have not been
// appended, or tool results were appended and the model has not yet
// responded to them. The turn is settled only when the log ends in a plain
// assistant message without tool calls.
func (l *Log) UnresolvedToolResults() bool {
	last := l.Last()
	if last == nil {
		return false
	}
	switch last.Role {
	case RoleTool:
		return true
	case RoleAssistant:
		return len(last.ToolCalls) > 0
	default:
		return false
	}
}

// PendingToolCalls returns the tool calls of the most recent assistant
// message that have no matching tool message appended after it.
func (l *Log) PendingToolCalls() []ToolCall {
	lastAssistant := -1
	for i := len(l.Messages) - 1; i >= 0; i-- {
		if l.Messages[i].Role == RoleAssistant {
			lastAssistant = i
			break
		}
	}
	if lastAssistant < 0 {
		return nil
	}

	answered := make(map[string]bool)
	for _, m := range l.Messages[lastAssistant+1:] {
		if m.Role == RoleTool {
			answered[m.ToolCallID] = true
		}
	}

	var pending []ToolCall
	for _, tc := range l.Messages[lastAssistant].ToolCalls {
		if !answered[tc.ID] {
			pending = append(pending, tc)
		}
	}
	return pending
}

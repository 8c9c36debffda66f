package openaicompat

import (
	"log/slog"
	"strings"

	"github.com/parley-ai/parley/pkg/chat"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// pendingCall accumulates the argument fragments of one tool call across
// chunks. Fragments arrive keyed only by whatever id/name the chunk happens
// to carry, so assembly relies on the aggregator's cursor state.
type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

// aggregator folds a sequence of streaming chunks into chat.Delta events.
// It suppresses reasoning spans delimited by literal <think> fragments,
// withholds leading whitespace-only text, and assembles fragmented tool
// calls, finalizing them when the backend reports a finish reason.
//
// Not safe for concurrent use; one aggregator serves one stream.
type aggregator struct {
	started     bool
	done        bool
	inThink     bool
	seenVisible bool

	thinkBuf strings.Builder

	pending map[string]*pendingCall
	order   []string
	curID   string
	curName string

	// strip transforms visible text before emission; nil means passthrough.
	strip func(string) string
}

func newAggregator(strip func(string) string) *aggregator {
	return &aggregator{
		pending: make(map[string]*pendingCall),
		strip:   strip,
	}
}

// feed consumes one chunk and reports the delta to emit, if any. A chunk
// that only advances internal bookkeeping produces no event.
func (a *aggregator) feed(chunk *chatCompletionChunk) (chat.Delta, bool) {
	if a.done || len(chunk.Choices) == 0 {
		return chat.Delta{}, false
	}
	choice := chunk.Choices[0]
	var out chat.Delta

	if !a.started {
		a.started = true
		role := chat.Role(choice.Delta.Role)
		if role == "" {
			role = chat.RoleAssistant
		}
		out.Role = role
	}

	for _, frag := range choice.Delta.ToolCalls {
		a.accumulate(frag)
	}

	if choice.Delta.Content != nil {
		out.Content = a.filterText(*choice.Delta.Content)
	}

	if choice.FinishReason != nil && *choice.FinishReason != "" {
		a.done = true
		out.ToolCalls = a.finalize()
	}

	if out.Role == "" && out.Content == "" && len(out.ToolCalls) == 0 {
		return chat.Delta{}, false
	}
	return out, true
}

// accumulate folds one tool-call fragment into the pending set. Fragments
// after the first often omit the id and name, inheriting them from the
// most recent fragment that carried them.
func (a *aggregator) accumulate(frag chatChunkToolCall) {
	if frag.ID != "" {
		a.curID = frag.ID
	}
	if frag.Function.Name != "" && frag.Function.Name != a.curName {
		a.curName = frag.Function.Name
	}
	key := a.curID + a.curName
	pc, ok := a.pending[key]
	if !ok {
		pc = &pendingCall{id: a.curID, name: a.curName}
		a.pending[key] = pc
		a.order = append(a.order, key)
	}
	pc.args.WriteString(frag.Function.Arguments)
}

// filterText applies the reasoning-span filter and the optional strip
// transform. Returns "" when the fragment should be withheld.
func (a *aggregator) filterText(text string) string {
	switch {
	case text == thinkOpen:
		a.inThink = true
		a.thinkBuf.Reset()
		return ""
	case a.inThink:
		if text == thinkClose {
			a.inThink = false
			if s := strings.TrimSpace(a.thinkBuf.String()); s != "" {
				slog.Debug("model reasoning", "text", s)
			}
			a.thinkBuf.Reset()
			return ""
		}
		a.thinkBuf.WriteString(text)
		return ""
	}
	if a.strip != nil {
		text = a.strip(text)
	}
	if strings.TrimSpace(text) != "" {
		a.seenVisible = true
	}
	if !a.seenVisible {
		return ""
	}
	return text
}

// finalize resolves all pending tool calls in arrival order. Calls whose
// accumulated arguments fail to parse are kept with the raw text and a
// per-call error so a single bad call does not abort the turn.
func (a *aggregator) finalize() []chat.ToolCall {
	if len(a.order) == 0 {
		return nil
	}
	calls := make([]chat.ToolCall, 0, len(a.order))
	for _, key := range a.order {
		pc := a.pending[key]
		call := chat.ToolCall{ID: pc.id, Name: pc.name, RawArgs: pc.args.String()}
		if call.RawArgs == "" {
			call.Args = map[string]any{}
		} else if err := json.Unmarshal([]byte(call.RawArgs), &call.Args); err != nil {
			call.Args = nil
			call.ParseErr = &chat.ToolArgumentError{
				Tool:   pc.name,
				CallID: pc.id,
				Raw:    call.RawArgs,
				Err:    err,
			}
			slog.Warn("malformed tool call arguments",
				"tool", pc.name, "call_id", pc.id, "error", err)
		}
		calls = append(calls, call)
	}
	return calls
}

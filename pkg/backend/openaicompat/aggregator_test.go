package openaicompat

import (
	"errors"
	"testing"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

func strPtr(s string) *string { return &s }

func textChunk(text string) *chatCompletionChunk {
	return &chatCompletionChunk{
		Choices: []chatChunkChoice{{Delta: chatChunkDelta{Content: strPtr(text)}}},
	}
}

func roleChunk(role string) *chatCompletionChunk {
	return &chatCompletionChunk{
		Choices: []chatChunkChoice{{Delta: chatChunkDelta{Role: role}}},
	}
}

func toolChunk(id, name, args string) *chatCompletionChunk {
	return &chatCompletionChunk{
		Choices: []chatChunkChoice{{Delta: chatChunkDelta{
			ToolCalls: []chatChunkToolCall{{
				ID:       id,
				Function: chatChunkFunctionCall{Name: name, Arguments: args},
			}},
		}}},
	}
}

func finishChunk(reason string) *chatCompletionChunk {
	return &chatCompletionChunk{
		Choices: []chatChunkChoice{{FinishReason: strPtr(reason)}},
	}
}

func TestAggregatorRoleMarker(t *testing.T) {
	agg := newAggregator(nil)

	delta, ok := agg.feed(roleChunk("assistant"))
	if !ok {
		t.Fatal("expected first chunk to emit a role marker")
	}
	if delta.Role != chat.RoleAssistant {
		t.Errorf("role = %q, want %q", delta.Role, chat.RoleAssistant)
	}
}

func TestAggregatorDefaultsRoleToAssistant(t *testing.T) {
	agg := newAggregator(nil)

	delta, ok := agg.feed(textChunk("hi"))
	if !ok {
		t.Fatal("expected emission")
	}
	if delta.Role != chat.RoleAssistant {
		t.Errorf("role = %q, want assistant default", delta.Role)
	}
	if delta.Content != "hi" {
		t.Errorf("content = %q, want %q", delta.Content, "hi")
	}
}

func TestAggregatorWithholdsLeadingWhitespace(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(roleChunk("assistant"))

	if delta, ok := agg.feed(textChunk("\n\n")); ok {
		t.Fatalf("leading whitespace emitted: %+v", delta)
	}

	delta, ok := agg.feed(textChunk("Hello"))
	if !ok || delta.Content != "Hello" {
		t.Fatalf("first visible text = (%+v, %v), want Hello", delta, ok)
	}

	// Interior whitespace is preserved once visible text has appeared.
	delta, ok = agg.feed(textChunk(" "))
	if !ok || delta.Content != " " {
		t.Fatalf("interior whitespace = (%+v, %v), want a single space", delta, ok)
	}
}

func TestAggregatorSuppressesThinkSpan(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(roleChunk("assistant"))

	for _, frag := range []string{"<think>", "pondering", " deeply", "</think>"} {
		if delta, ok := agg.feed(textChunk(frag)); ok {
			t.Fatalf("reasoning fragment %q emitted: %+v", frag, delta)
		}
	}

	delta, ok := agg.feed(textChunk("Answer"))
	if !ok || delta.Content != "Answer" {
		t.Fatalf("post-reasoning text = (%+v, %v), want Answer", delta, ok)
	}
}

func TestAggregatorEmptyThinkSpan(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(roleChunk("assistant"))

	agg.feed(textChunk("<think>"))
	if delta, ok := agg.feed(textChunk("</think>")); ok {
		t.Fatalf("close marker emitted: %+v", delta)
	}
	if agg.inThink {
		t.Error("aggregator still inside reasoning span")
	}
}

func TestAggregatorAssemblesFragmentedToolCall(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(roleChunk("assistant"))

	// Only the first fragment carries the id and name.
	fragments := []*chatCompletionChunk{
		toolChunk("call_1", "get_weather", `{"ci`),
		toolChunk("", "", `ty":"Ber`),
		toolChunk("", "", `lin"}`),
	}
	for _, c := range fragments {
		if delta, ok := agg.feed(c); ok {
			t.Fatalf("tool fragment emitted an event: %+v", delta)
		}
	}

	delta, ok := agg.feed(finishChunk("tool_calls"))
	if !ok {
		t.Fatal("finish chunk produced no event")
	}
	if len(delta.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(delta.ToolCalls))
	}
	call := delta.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "get_weather" {
		t.Errorf("call identity = (%q, %q)", call.ID, call.Name)
	}
	if call.ParseErr != nil {
		t.Fatalf("unexpected parse error: %v", call.ParseErr)
	}
	if got := call.Args["city"]; got != "Berlin" {
		t.Errorf("args[city] = %v, want Berlin", got)
	}
}

func TestAggregatorMultipleToolCalls(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(roleChunk("assistant"))

	agg.feed(toolChunk("call_1", "alpha", `{"a":1}`))
	agg.feed(toolChunk("call_2", "beta", `{"b":`))
	agg.feed(toolChunk("", "", `2}`))

	delta, _ := agg.feed(finishChunk("tool_calls"))
	if len(delta.ToolCalls) != 2 {
		t.Fatalf("got %d tool calls, want 2", len(delta.ToolCalls))
	}
	if delta.ToolCalls[0].Name != "alpha" || delta.ToolCalls[1].Name != "beta" {
		t.Errorf("order = %q, %q", delta.ToolCalls[0].Name, delta.ToolCalls[1].Name)
	}
	if delta.ToolCalls[1].Args["b"] != float64(2) {
		t.Errorf("beta args = %v", delta.ToolCalls[1].Args)
	}
}

func TestAggregatorEmptyArgsBecomeEmptyMap(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(toolChunk("call_1", "ping", ""))

	delta, _ := agg.feed(finishChunk("tool_calls"))
	if len(delta.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(delta.ToolCalls))
	}
	call := delta.ToolCalls[0]
	if call.ParseErr != nil {
		t.Fatalf("unexpected parse error: %v", call.ParseErr)
	}
	if call.Args == nil || len(call.Args) != 0 {
		t.Errorf("args = %v, want empty map", call.Args)
	}
}

func TestAggregatorKeepsMalformedArguments(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(toolChunk("call_1", "broken", `{"a":`))

	delta, _ := agg.feed(finishChunk("tool_calls"))
	call := delta.ToolCalls[0]
	if call.ParseErr == nil {
		t.Fatal("expected a parse error")
	}
	var argErr *chat.ToolArgumentError
	if !errors.As(call.ParseErr, &argErr) {
		t.Fatalf("parse error type %T", call.ParseErr)
	}
	if call.RawArgs != `{"a":` {
		t.Errorf("raw args = %q", call.RawArgs)
	}
	if call.Args != nil {
		t.Errorf("args = %v, want nil", call.Args)
	}
}

func TestAggregatorStripsEmojis(t *testing.T) {
	agg := newAggregator(backend.StripEmojis)
	agg.feed(roleChunk("assistant"))

	delta, ok := agg.feed(textChunk("Done 👍"))
	if !ok {
		t.Fatal("expected emission")
	}
	if delta.Content != "Done " {
		t.Errorf("content = %q, want %q", delta.Content, "Done ")
	}

	// A fragment that is pure emoji before any visible text stays withheld.
	fresh := newAggregator(backend.StripEmojis)
	fresh.feed(roleChunk("assistant"))
	if delta, ok := fresh.feed(textChunk("🎉")); ok {
		t.Fatalf("emoji-only fragment emitted: %+v", delta)
	}
}

func TestAggregatorIgnoresChunksAfterFinish(t *testing.T) {
	agg := newAggregator(nil)
	agg.feed(textChunk("hi"))
	agg.feed(finishChunk("stop"))

	if delta, ok := agg.feed(textChunk("trailing")); ok {
		t.Fatalf("chunk after finish emitted: %+v", delta)
	}
}

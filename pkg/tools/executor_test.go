package tools

import (
	"testing"

	"github.com/parley-ai/parley/pkg/chat"
)

func TestFormatSpec_ScrubsUnionKeywords(t *testing.T) {
	spec := chat.ToolSpec{
		Name:        "set_temperature",
		Description: "Sets the thermostat",
		Parameters: map[string]any{
			"type":  "object",
			"anyOf": []any{map[string]any{"required": []string{"value"}}},
			"properties": map[string]any{
				"value": map[string]any{"type": "number"},
			},
		},
	}

	tool := FormatSpec(spec)

	if tool.Type != "function" {
		t.Errorf("type = %q, want function", tool.Type)
	}
	if tool.Function.Name != "set_temperature" {
		t.Errorf("name = %q", tool.Function.Name)
	}
	if _, ok := tool.Function.Parameters["anyOf"]; ok {
		t.Error("anyOf must be scrubbed from parameters")
	}
	if _, ok := tool.Function.Parameters["properties"]; !ok {
		t.Error("properties must survive")
	}
}

func TestFormatSpec_DescriptionFallback(t *testing.T) {
	for _, desc := range []string{"", "   ", "\n\t"} {
		tool := FormatSpec(chat.ToolSpec{Name: "noop", Description: desc})
		if tool.Function.Description != "A callable function" {
			t.Errorf("description %q: got %q, want fallback", desc, tool.Function.Description)
		}
	}

	tool := FormatSpec(chat.ToolSpec{Name: "noop", Description: "does nothing"})
	if tool.Function.Description != "does nothing" {
		t.Errorf("real description replaced: %q", tool.Function.Description)
	}
}

func TestFormatSpecs_Empty(t *testing.T) {
	if FormatSpecs(nil) != nil {
		t.Error("nil specs should produce nil tools")
	}
}

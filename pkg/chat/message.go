package chat

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation log. Messages are immutable once
// appended; the engine only reads them and appends new ones.
//
// Which fields are populated depends on the role: user messages may carry
// attachments, assistant messages may carry tool calls, and tool messages
// carry the call ID they answer plus the result payload.
type Message struct {
	Role    Role
	Content string

	// Attachments are image references on user messages. Resolution to
	// raw bytes goes through an AttachmentStore.
	Attachments []Attachment

	// ToolCalls are the calls issued by an assistant message.
	ToolCalls []ToolCall

	// ToolCallID and ToolName identify the call a tool message answers.
	ToolCallID string
	ToolName   string

	// Result is the structured tool result payload (tool messages only).
	Result any
}

// ToolCall is a model-issued request to invoke a tool. The ID is assigned
// by the backend on the first chunk that mentions the call and stays
// stable for the call's lifetime.
type ToolCall struct {
	ID   string
	Name string

	// Args holds the parsed argument object. Nil when parsing failed.
	Args map[string]any

	// RawArgs preserves the accumulated argument text exactly as the
	// backend streamed it. Used to rebuild the wire form and retained
	// when Args could not be parsed.
	RawArgs string

	// ParseErr records a recoverable argument parse failure for this
	// call. The call is not executed but the turn continues.
	ParseErr error
}

// ToolSpec describes a callable tool exposed to the backend.
type ToolSpec struct {
	Name        string
	Description string

	// Parameters is a JSON-Schema-like object. Union combinator keywords
	// (allOf/anyOf/oneOf) are stripped before it goes on the wire because
	// many inference servers reject them.
	Parameters map[string]any
}

// Delta is the uniform unit both backend adapters produce per turn step.
// Role is set only on the first event of a turn, ToolCalls only on the
// terminal event. Deltas are consumed immediately and never persisted.
type Delta struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall
}

// schema keywords many inference servers reject in tool parameters.
var unsupportedSchemaKeys = []string{"allOf", "anyOf", "oneOf"}

// ScrubSchema removes union combinator keywords from a tool parameter
// schema in place and returns it.
func ScrubSchema(schema map[string]any) map[string]any {
	for _, key := range unsupportedSchemaKeys {
		delete(schema, key)
	}
	return schema
}

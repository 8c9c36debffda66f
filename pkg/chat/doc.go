// Package chat defines the generic conversation data model shared by the
// engine and the backend adapters: messages, tool calls, tool specs, delta
// events, and the append-only conversation log. The types are
// backend-agnostic; wire formats live with the individual adapters.
package chat

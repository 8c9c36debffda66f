// Package openaicompat implements the streaming backend adapter for
// OpenAI-compatible Chat Completions servers. It posts the request with
// stream enabled, reads the SSE chunk stream, and reconstructs complete
// text and tool calls through a per-turn delta aggregator before handing
// uniform chat.Delta values to the engine.
package openaicompat

// Package lmstudio implements the backend adapter for the LM Studio
// native REST API (POST /api/v1/chat).
//
// LM Studio exposes two API families: /v1/... (OpenAI-compatible) and
// /api/v1/... (native). The native endpoint is non-streaming but carries
// full MCP integration support, with tool calls orchestrated server-side.
// The adapter translates each response into a single delta event so the
// engine handles both protocols uniformly.
package lmstudio

// Package backend defines the adapter abstraction over inference server
// protocols. Both the streaming Chat Completions adapter and the
// single-shot LM Studio native adapter expose one Stream method yielding a
// channel of chat.Delta values, so the engine's tool-call loop is written
// once against the interface and never against either concrete protocol.
package backend

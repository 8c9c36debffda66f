package backend

import (
	"context"

	"github.com/parley-ai/parley/pkg/chat"
)

// DeltaStream carries the delta events of one turn step. The consumer
// ranges over Deltas until it is closed, then checks Err for a terminal
// stream failure (a connection dropped mid-stream, for example).
//
// The producer goroutine sets the error before closing the channel, so
// reading Err after the channel closes is race-free.
type DeltaStream struct {
	ch  chan chat.Delta
	err error
}

// NewDeltaStream creates a stream with the given channel buffer.
func NewDeltaStream(buffer int) *DeltaStream {
	return &DeltaStream{ch: make(chan chat.Delta, buffer)}
}

// Deltas returns the event channel. It is closed by the producer when the
// turn step completes, errors, or the context is cancelled.
func (s *DeltaStream) Deltas() <-chan chat.Delta {
	return s.ch
}

// Err returns the terminal stream error, if any. Only valid once Deltas
// has been closed.
func (s *DeltaStream) Err() error {
	return s.err
}

// Send delivers a delta, honoring cancellation. Returns false when the
// context ended before the delta could be delivered.
func (s *DeltaStream) Send(ctx context.Context, d chat.Delta) bool {
	select {
	case s.ch <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close ends the stream, recording err as the terminal failure (nil for a
// clean end). Must be called exactly once, by the producer.
func (s *DeltaStream) Close(err error) {
	s.err = err
	close(s.ch)
}

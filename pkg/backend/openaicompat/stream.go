package openaicompat

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
	"github.com/parley-ai/parley/pkg/observability"
)

// maxLineSize bounds a single SSE line. Chunks are small, but a model can
// emit a long unbroken text fragment.
const maxLineSize = 1024 * 1024

// consumeSSE reads the event stream from body, feeds each data payload
// through the aggregator, and forwards emitted deltas. It closes out with
// the terminal error, nil on a clean [DONE] or EOF.
func consumeSSE(ctx context.Context, body io.ReadCloser, agg *aggregator, out *backend.DeltaStream) {
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			out.Close(nil)
			return
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			slog.Warn("skipping malformed stream chunk", "error", err)
			continue
		}
		observability.StreamChunksTotal.WithLabelValues(backendName).Inc()
		delta, ok := agg.feed(&chunk)
		if !ok {
			continue
		}
		if !out.Send(ctx, delta) {
			out.Close(ctx.Err())
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			out.Close(ctx.Err())
			return
		}
		out.Close(chat.NewBackendTransportError(backendName, err))
		return
	}
	out.Close(nil)
}

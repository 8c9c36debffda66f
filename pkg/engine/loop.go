package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
	"github.com/parley-ai/parley/pkg/mcp"
	"github.com/parley-ai/parley/pkg/observability"
	"github.com/parley-ai/parley/pkg/tools"
)

// maxToolIterations caps model/tool round trips per turn to prevent
// infinite loops.
const maxToolIterations = 10

// DriveTurn advances the conversation until the model settles on a plain
// assistant reply, resolving tool calls between backend steps. The log is
// mutated in place; on error it retains everything appended so far.
//
// Reaching the iteration cap is not an error: the turn ends with whatever
// the model produced last.
func (e *Engine) DriveTurn(ctx context.Context, log *chat.Log, specs []chat.ToolSpec, opts Options) error {
	turnID := chat.NewTurnID()
	logger := slog.With("turn_id", turnID, "model", opts.Model)

	messages, err := e.translateLog(ctx, log)
	if err != nil {
		return err
	}
	messages = trimHistory(messages, opts.MaxHistory)

	integrations := mcp.BuildIntegrations(opts.MCPServers)
	wireTools := tools.FormatSpecs(specs)

	iterations := 0
	defer func() { observability.TurnIterations.Observe(float64(iterations)) }()

	for iterations < maxToolIterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		iterations++

		req := &backend.Request{
			Model:             opts.Model,
			Messages:          messages,
			Tools:             wireTools,
			Integrations:      integrations,
			Temperature:       opts.Temperature,
			ParallelToolCalls: opts.ParallelToolCalls,
			ContextLength:     opts.ContextLength,
			StripEmojis:       opts.StripEmojis,
		}

		msg, err := e.step(ctx, req)
		if err != nil {
			return err
		}

		log.Append(msg)
		if wire, terr := e.translateMessage(ctx, &msg); terr != nil {
			logger.Warn("dropping untranslatable message", "role", msg.Role, "error", terr)
		} else if wire != nil {
			messages = append(messages, *wire)
		}
		logger.Debug("assistant step",
			"iteration", iterations, "tool_calls", len(msg.ToolCalls))

		if !log.UnresolvedToolResults() {
			return nil
		}

		for _, result := range e.resolveCalls(ctx, log.PendingToolCalls(), opts.ParallelToolCalls) {
			log.Append(result)
			if wire, terr := e.translateMessage(ctx, &result); terr != nil {
				logger.Warn("dropping untranslatable message", "role", result.Role, "error", terr)
			} else if wire != nil {
				messages = append(messages, *wire)
			}
		}
	}

	logger.Warn("tool iteration limit reached", "limit", maxToolIterations)
	return nil
}

// step performs one backend call and collects its stream into an
// assistant message, recording request metrics.
func (e *Engine) step(ctx context.Context, req *backend.Request) (chat.Message, error) {
	name := e.backend.Name()
	start := time.Now()

	stream, err := e.backend.Stream(ctx, req)
	if err == nil {
		var msg chat.Message
		msg, err = collectStep(ctx, stream)
		if err == nil {
			observability.BackendRequestsTotal.WithLabelValues(name, req.Model, "success").Inc()
			observability.BackendLatency.WithLabelValues(name, req.Model).Observe(time.Since(start).Seconds())
			return msg, nil
		}
	}

	observability.BackendRequestsTotal.WithLabelValues(name, req.Model, "error").Inc()
	observability.BackendLatency.WithLabelValues(name, req.Model).Observe(time.Since(start).Seconds())
	return chat.Message{}, err
}

// resolveCalls answers every pending tool call with a tool message. Calls
// whose arguments failed to parse, or for which no executor is available,
// get error results; the turn continues either way.
func (e *Engine) resolveCalls(ctx context.Context, calls []chat.ToolCall, parallel bool) []chat.Message {
	if len(calls) == 0 {
		return nil
	}

	results := make([]chat.Message, len(calls))
	if parallel {
		var wg sync.WaitGroup
		for i, call := range calls {
			wg.Add(1)
			go func(idx int, tc chat.ToolCall) {
				defer wg.Done()
				results[idx] = e.resolveCall(ctx, tc)
			}(i, call)
		}
		wg.Wait()
	} else {
		for i, call := range calls {
			results[i] = e.resolveCall(ctx, call)
		}
	}
	return results
}

func (e *Engine) resolveCall(ctx context.Context, call chat.ToolCall) chat.Message {
	msg := chat.Message{Role: chat.RoleTool, ToolCallID: call.ID, ToolName: call.Name}

	if call.ParseErr != nil {
		msg.Result = map[string]any{"error": call.ParseErr.Error()}
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
		return msg
	}

	if e.executor == nil || !e.executor.CanExecute(call.Name) {
		msg.Result = map[string]any{"error": "no executor found for tool " + call.Name}
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
		return msg
	}

	result, err := e.executor.Execute(ctx, call)
	if err != nil {
		slog.Warn("tool execution error",
			"tool", call.Name, "call_id", call.ID, "error", err.Error())
		msg.Result = map[string]any{"error": err.Error()}
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
		return msg
	}

	status := "success"
	if result.IsError {
		status = "error"
	}
	observability.ToolExecutionsTotal.WithLabelValues(call.Name, status).Inc()
	msg.Result = result.Output
	return msg
}

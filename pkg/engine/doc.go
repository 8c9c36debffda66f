// Package engine drives a conversation log to a completed assistant turn.
//
// One call to DriveTurn translates the log to wire form, trims old rounds,
// and iterates against the configured backend: each step streams an
// assistant message, and any tool calls it issues are resolved through the
// executor before the next step. The cycle ends when the model settles on
// a plain assistant reply or the iteration cap is reached.
package engine

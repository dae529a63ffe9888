// Package reasoner provides reasoning engine implementations for the control loop.
package reasoner

import (
	"context"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// Engine performs one reasoning turn under the given instruction.
//
// turns is the recent window the control loop inspected. Implementations
// may load more history from their own store. The returned bool reports
// whether the turn produced at least one tool call.
type Engine interface {
	RunTurn(ctx context.Context, instruction string, turns []transcript.Turn) (transcript.Turn, bool, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, instruction string, turns []transcript.Turn) (transcript.Turn, bool, error)

// RunTurn calls f.
func (f EngineFunc) RunTurn(ctx context.Context, instruction string, turns []transcript.Turn) (transcript.Turn, bool, error) {
	return f(ctx, instruction, turns)
}

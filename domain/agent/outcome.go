package agent

import (
	"time"

	"github.com/felixgeelhaar/nudge/domain/steering"
	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// TurnOutcome records what happened during one control-loop turn.
type TurnOutcome struct {
	// TurnID identifies the turn for logging and tracing.
	TurnID string

	// Streak is the no-progress count seen before the turn.
	Streak int

	// BrowserActive reports whether the browser override applied.
	BrowserActive bool

	// Instruction is the effective instruction the engine received.
	Instruction steering.Instruction

	// Acted reports whether the engine produced at least one tool call.
	Acted bool

	// Reply is the turn the engine produced. Zero when the turn failed.
	Reply transcript.Turn

	// Duration is the wall time of the turn.
	Duration time.Duration

	// Err is the turn error, if any.
	Err error
}

// Failed returns true if the turn ended with an error.
func (o TurnOutcome) Failed() bool {
	return o.Err != nil
}

package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/nudge/domain/agent"
)

// TransitionPayload carries the target phase with an event.
type TransitionPayload struct {
	ToState agent.State
}

// recordTransition appends to the turn history and notifies the observer.
// statekit hands actions a pointer to the context, so with *Context we get **Context.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	c := *ctx

	to := stateForEvent(event)
	from := c.Current
	c.History = append(c.History, Transition{From: from, To: to})
	c.Current = to

	if c.OnTransition != nil {
		c.OnTransition(from, to)
	}
}

// guardHasTurn refuses to start a turn without an ID.
func guardHasTurn(ctx *Context, _ statekit.Event) bool {
	return ctx != nil && ctx.TurnID != ""
}

func stateForEvent(event statekit.Event) agent.State {
	if payload, ok := event.Payload.(TransitionPayload); ok && payload.ToState != "" {
		return payload.ToState
	}
	switch event.Type {
	case EventCompute:
		return agent.StateComputingOverride
	case EventDelegate:
		return agent.StateDelegating
	case EventRestore:
		return agent.StateRestoring
	case EventSettle:
		return agent.StateIdle
	default:
		return agent.State(event.Type)
	}
}

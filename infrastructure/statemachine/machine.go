// Package statemachine provides the statekit chart for a single control-loop turn.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/nudge/domain/agent"
)

// Transition records one phase change within a turn.
type Transition struct {
	From agent.State
	To   agent.State
}

// Context carries turn state through the state machine.
type Context struct {
	TurnID  string
	Current agent.State
	History []Transition
	// OnTransition, when set, observes every phase change.
	OnTransition func(from, to agent.State)
}

// NewContext creates a machine context for a turn.
func NewContext(turnID string) *Context {
	return &Context{
		TurnID:  turnID,
		Current: agent.StateIdle,
	}
}

// Events that drive the turn chart.
const (
	EventCompute  statekit.EventType = "COMPUTE"
	EventDelegate statekit.EventType = "DELEGATE"
	EventRestore  statekit.EventType = "RESTORE"
	EventSettle   statekit.EventType = "SETTLE"
)

const (
	stateIdle      = statekit.StateID(agent.StateIdle)
	stateComputing = statekit.StateID(agent.StateComputingOverride)
	stateDelegate  = statekit.StateID(agent.StateDelegating)
	stateRestoring = statekit.StateID(agent.StateRestoring)
)

// NewTurnMachine builds the turn statechart:
//
//	idle -> computing_override -> delegating -> restoring -> idle
//
// computing_override may also go straight to restoring when the
// transcript cannot be read. restoring is reachable from every
// non-idle phase so the baseline is always reinstated.
func NewTurnMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("turn").
		WithInitial(stateIdle).
		WithContext(&Context{}).
		WithAction("record", recordTransition).
		WithGuard("hasTurn", guardHasTurn).
		State(stateIdle).
			On(EventCompute).Target(stateComputing).Guard("hasTurn").Do("record").
			Done().
		State(stateComputing).
			On(EventDelegate).Target(stateDelegate).Do("record").
			On(EventRestore).Target(stateRestoring).Do("record").
			Done().
		State(stateDelegate).
			On(EventRestore).Target(stateRestoring).Do("record").
			Done().
		State(stateRestoring).
			On(EventSettle).Target(stateIdle).Do("record").
			Done().
		Build()
}

// EventFor returns the event that moves the chart into to.
func EventFor(to agent.State) statekit.EventType {
	switch to {
	case agent.StateComputingOverride:
		return EventCompute
	case agent.StateDelegating:
		return EventDelegate
	case agent.StateRestoring:
		return EventRestore
	case agent.StateIdle:
		return EventSettle
	default:
		return statekit.EventType(to)
	}
}

// Allowed reports whether the chart has an edge from -> to.
func Allowed(from, to agent.State) bool {
	switch from {
	case agent.StateIdle:
		return to == agent.StateComputingOverride
	case agent.StateComputingOverride:
		return to == agent.StateDelegating || to == agent.StateRestoring
	case agent.StateDelegating:
		return to == agent.StateRestoring
	case agent.StateRestoring:
		return to == agent.StateIdle
	default:
		return false
	}
}

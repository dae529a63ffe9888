// Package agent provides the core domain model for the turn control loop.
package agent

// State is a phase of a single control-loop turn.
type State string

// Turn phases. Every turn starts and ends in StateIdle.
const (
	StateIdle              State = "idle"               // Waiting for the next turn
	StateComputingOverride State = "computing_override" // Deriving the effective instruction
	StateDelegating        State = "delegating"         // Reasoning engine call in flight
	StateRestoring         State = "restoring"          // Reinstating the baseline instruction
)

// IsValid returns true if the state is a recognized turn phase.
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateComputingOverride, StateDelegating, StateRestoring:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Next returns the phase that follows s in a turn.
func (s State) Next() State {
	switch s {
	case StateIdle:
		return StateComputingOverride
	case StateComputingOverride:
		return StateDelegating
	case StateDelegating:
		return StateRestoring
	default:
		return StateIdle
	}
}

// AllStates returns all turn phases in order.
func AllStates() []State {
	return []State{
		StateIdle,
		StateComputingOverride,
		StateDelegating,
		StateRestoring,
	}
}

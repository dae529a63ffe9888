package statemachine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/nudge/domain/agent"
)

// Interpreter wraps the statekit interpreter for one turn.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates an interpreter bound to ctx.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{interp: interp, ctx: ctx}
}

// Start enters the initial phase.
func (i *Interpreter) Start() {
	i.interp.Start()
	i.ctx.Current = agent.State(i.interp.State().Value)
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// State returns the current phase.
func (i *Interpreter) State() agent.State {
	return agent.State(i.interp.State().Value)
}

// Transition moves the chart to the target phase.
func (i *Interpreter) Transition(to agent.State) error {
	from := i.State()
	if !Allowed(from, to) {
		return fmt.Errorf("transition from %s to %s not allowed", from, to)
	}

	i.interp.Send(statekit.Event{
		Type:    EventFor(to),
		Payload: TransitionPayload{ToState: to},
	})

	if got := i.State(); got != to {
		return fmt.Errorf("transition from %s to %s rejected", from, to)
	}
	return nil
}

// Matches checks if the current phase is s.
func (i *Interpreter) Matches(s agent.State) bool {
	return i.interp.Matches(statekit.StateID(s))
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}

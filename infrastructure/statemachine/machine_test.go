package statemachine

import (
	"testing"

	"github.com/felixgeelhaar/nudge/domain/agent"
)

func newTestInterpreter(t *testing.T, turnID string) *Interpreter {
	t.Helper()

	machine, err := NewTurnMachine()
	if err != nil {
		t.Fatalf("NewTurnMachine() error = %v", err)
	}
	interp := NewInterpreter(machine, NewContext(turnID))
	interp.Start()
	t.Cleanup(interp.Stop)
	return interp
}

func TestInterpreter_FullTurn(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t, "turn-1")

	var observed []Transition
	interp.Context().OnTransition = func(from, to agent.State) {
		observed = append(observed, Transition{From: from, To: to})
	}

	if interp.State() != agent.StateIdle {
		t.Fatalf("initial state = %s, want idle", interp.State())
	}

	for _, to := range []agent.State{
		agent.StateComputingOverride,
		agent.StateDelegating,
		agent.StateRestoring,
		agent.StateIdle,
	} {
		if err := interp.Transition(to); err != nil {
			t.Fatalf("Transition(%s) error = %v", to, err)
		}
		if !interp.Matches(to) {
			t.Errorf("Matches(%s) = false", to)
		}
	}

	if len(observed) != 4 {
		t.Fatalf("observed %d transitions, want 4", len(observed))
	}
	if observed[0].From != agent.StateIdle || observed[3].To != agent.StateIdle {
		t.Errorf("observed = %v", observed)
	}
	if len(interp.Context().History) != 4 {
		t.Errorf("History len = %d, want 4", len(interp.Context().History))
	}
}

func TestInterpreter_ShortCircuitRestore(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t, "turn-2")
	if err := interp.Transition(agent.StateComputingOverride); err != nil {
		t.Fatal(err)
	}
	if err := interp.Transition(agent.StateRestoring); err != nil {
		t.Fatalf("computing_override -> restoring error = %v", err)
	}
	if err := interp.Transition(agent.StateIdle); err != nil {
		t.Fatal(err)
	}
}

func TestInterpreter_RejectsInvalidEdges(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t, "turn-3")
	if err := interp.Transition(agent.StateDelegating); err == nil {
		t.Error("idle -> delegating should fail")
	}
	if err := interp.Transition(agent.StateRestoring); err == nil {
		t.Error("idle -> restoring should fail")
	}
	if interp.State() != agent.StateIdle {
		t.Errorf("state = %s, want idle", interp.State())
	}
}

func TestInterpreter_GuardRequiresTurnID(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t, "")
	if err := interp.Transition(agent.StateComputingOverride); err == nil {
		t.Error("turn without ID should be rejected")
	}
}

func TestAllowed(t *testing.T) {
	t.Parallel()

	for _, from := range agent.AllStates() {
		for _, to := range agent.AllStates() {
			want := from.Next() == to || (from == agent.StateComputingOverride && to == agent.StateRestoring)
			if got := Allowed(from, to); got != want {
				t.Errorf("Allowed(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestEventFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state agent.State
		want  string
	}{
		{agent.StateComputingOverride, "COMPUTE"},
		{agent.StateDelegating, "DELEGATE"},
		{agent.StateRestoring, "RESTORE"},
		{agent.StateIdle, "SETTLE"},
		{agent.State("custom"), "custom"},
	}
	for _, tt := range tests {
		if got := EventFor(tt.state); string(got) != tt.want {
			t.Errorf("EventFor(%s) = %s, want %s", tt.state, got, tt.want)
		}
	}
}

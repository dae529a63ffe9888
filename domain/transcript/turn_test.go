package transcript

import (
	"encoding/json"
	"testing"
)

func TestNewActed(t *testing.T) {
	t.Parallel()

	t.Run("with calls", func(t *testing.T) {
		t.Parallel()

		turn := NewActed("opening page", ToolCall{ID: "1", Name: "browser_use"})
		if turn.Kind() != KindActed {
			t.Errorf("Kind() = %s, want %s", turn.Kind(), KindActed)
		}
		if !turn.Acted() {
			t.Error("Acted() should be true")
		}
		if turn.Role != RoleAssistant {
			t.Errorf("Role = %s, want assistant", turn.Role)
		}
	})

	t.Run("without calls degrades to plain", func(t *testing.T) {
		t.Parallel()

		turn := NewActed("just talking")
		if turn.Kind() != KindPlain {
			t.Errorf("Kind() = %s, want %s", turn.Kind(), KindPlain)
		}
		if !turn.IsIdleAssistant() {
			t.Error("IsIdleAssistant() should be true")
		}
	})
}

func TestTurn_ToolCallsImmutable(t *testing.T) {
	t.Parallel()

	calls := []ToolCall{{ID: "1", Name: "web_search"}}
	turn := NewActed("", calls...)

	calls[0].Name = "mutated"
	if got := turn.ToolNames()[0]; got != "web_search" {
		t.Errorf("constructor input leaked into turn: %s", got)
	}

	out := turn.ToolCalls()
	out[0].Name = "mutated"
	if got := turn.ToolNames()[0]; got != "web_search" {
		t.Errorf("accessor result leaked into turn: %s", got)
	}
}

func TestTurn_IsIdleAssistant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		turn Turn
		want bool
	}{
		{"plain assistant", NewPlain(RoleAssistant, "I will search"), true},
		{"empty assistant", NewPlain(RoleAssistant, ""), true},
		{"acted assistant", NewActed("", ToolCall{Name: "web_search"}), false},
		{"user", NewPlain(RoleUser, "hi"), false},
		{"tool", NewToolResult("1", "ok"), false},
		{"zero value", Turn{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.turn.IsIdleAssistant(); got != tt.want {
				t.Errorf("IsIdleAssistant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTurn_JSONPreservesVariant(t *testing.T) {
	t.Parallel()

	orig := NewActed("searching", ToolCall{ID: "c1", Name: "web_search", Arguments: json.RawMessage(`{"query":"go"}`)}).WithID("t1")

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Turn
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !decoded.Acted() {
		t.Error("decoded turn should be acted")
	}
	if decoded.ID != "t1" {
		t.Errorf("ID = %s, want t1", decoded.ID)
	}
	if names := decoded.ToolNames(); len(names) != 1 || names[0] != "web_search" {
		t.Errorf("ToolNames() = %v, want [web_search]", names)
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	turns := []Turn{
		NewPlain(RoleUser, "a"),
		NewPlain(RoleAssistant, "b"),
		NewPlain(RoleAssistant, "c"),
	}

	if got := Tail(turns, 2); len(got) != 2 || got[0].Content != "b" {
		t.Errorf("Tail(2) = %v", got)
	}
	if got := Tail(turns, 10); len(got) != 3 {
		t.Errorf("Tail(10) len = %d, want 3", len(got))
	}
	if got := Tail(turns, 0); len(got) != 0 {
		t.Errorf("Tail(0) len = %d, want 0", len(got))
	}
	if got := Tail(nil, 3); len(got) != 0 {
		t.Errorf("Tail(nil) len = %d, want 0", len(got))
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate(NewPlain(Role("bot"), "x")); err != ErrInvalidRole {
		t.Errorf("Validate() error = %v, want ErrInvalidRole", err)
	}
	if err := Validate(NewActed("", ToolCall{ID: "1"})); err != ErrEmptyToolCallName {
		t.Errorf("Validate() error = %v, want ErrEmptyToolCallName", err)
	}
	if err := Validate(NewPlain(RoleUser, "ok")); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

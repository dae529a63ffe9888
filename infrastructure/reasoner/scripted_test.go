package reasoner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

type sliceAppender struct{ turns []transcript.Turn }

func (a *sliceAppender) Append(_ context.Context, t transcript.Turn) error {
	a.turns = append(a.turns, t)
	return nil
}

func TestScriptedEngine_Sequence(t *testing.T) {
	t.Parallel()

	app := &sliceAppender{}
	engine := NewScriptedEngine(
		Say("planning"),
		Act("", "web_search"),
		ActWith("terminate", map[string]string{"status": "success"}),
	).WithAppender(app)

	ctx := context.Background()
	wantActed := []bool{false, true, true}
	for i, want := range wantActed {
		turn, acted, err := engine.RunTurn(ctx, "instr", nil)
		if err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
		if acted != want {
			t.Errorf("step %d acted = %v, want %v", i, acted, want)
		}
		if turn.ID == "" {
			t.Errorf("step %d turn has no ID", i)
		}
	}

	if len(app.turns) != 3 {
		t.Errorf("appended %d turns, want 3", len(app.turns))
	}
	if !strings.Contains(string(app.turns[2].ToolCalls()[0].Arguments), "success") {
		t.Errorf("ActWith arguments = %s", app.turns[2].ToolCalls()[0].Arguments)
	}
	if engine.Remaining() != 0 || engine.Calls() != 3 {
		t.Errorf("Remaining = %d, Calls = %d", engine.Remaining(), engine.Calls())
	}

	if _, _, err := engine.RunTurn(ctx, "instr", nil); !errors.Is(err, ErrScriptExhausted) {
		t.Errorf("exhausted error = %v", err)
	}
}

func TestScriptedEngine_RecordsInstructions(t *testing.T) {
	t.Parallel()

	engine := NewScriptedEngine(Say("a"), Say("b"))
	_, _, _ = engine.RunTurn(context.Background(), "first", nil)
	_, _, _ = engine.RunTurn(context.Background(), "second", nil)

	got := engine.Instructions()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("Instructions() = %v", got)
	}
}

func TestScriptedEngine_Condition(t *testing.T) {
	t.Parallel()

	step := Say("ok")
	step.Condition = func(instruction string) bool { return strings.HasPrefix(instruction, "CRITICAL") }
	engine := NewScriptedEngine(step)

	_, _, err := engine.RunTurn(context.Background(), "baseline", nil)
	var cfe *ConditionFailedError
	if !errors.As(err, &cfe) || cfe.StepIndex != 0 {
		t.Errorf("error = %v, want ConditionFailedError at 0", err)
	}
}

func TestScriptedEngine_FailAndBlock(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	engine := NewScriptedEngine(Fail(boom), Block())

	if _, _, err := engine.RunTurn(context.Background(), "", nil); !errors.Is(err, boom) {
		t.Errorf("Fail error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := engine.RunTurn(ctx, "", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Block error = %v", err)
	}
}

func TestScriptedEngine_OnExhausted(t *testing.T) {
	t.Parallel()

	engine := NewScriptedEngine().OnExhausted(func(string) ScriptStep { return Act("", "terminate") })
	_, acted, err := engine.RunTurn(context.Background(), "", nil)
	if err != nil || !acted {
		t.Errorf("RunTurn() = %v, %v", acted, err)
	}
}

func TestEngineFunc(t *testing.T) {
	t.Parallel()

	var e Engine = EngineFunc(func(context.Context, string, []transcript.Turn) (transcript.Turn, bool, error) {
		return transcript.NewPlain(transcript.RoleAssistant, "x"), false, nil
	})
	turn, _, _ := e.RunTurn(context.Background(), "", nil)
	if turn.Content != "x" {
		t.Errorf("Content = %s", turn.Content)
	}
}

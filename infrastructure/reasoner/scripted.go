package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// ScriptStep defines the reply for one scripted turn.
type ScriptStep struct {
	// Reply is the turn to return.
	Reply transcript.Turn

	// Err, when set, is returned instead of Reply.
	Err error

	// Condition is an optional check on the instruction the step receives.
	Condition func(instruction string) bool

	// Func overrides Reply and Err when set.
	Func func(ctx context.Context, instruction string, turns []transcript.Turn) (transcript.Turn, error)
}

// Say returns a step replying with plain text.
func Say(text string) ScriptStep {
	return ScriptStep{Reply: transcript.NewPlain(transcript.RoleAssistant, text)}
}

// Act returns a step replying with calls to the named tools and empty arguments.
func Act(text string, toolNames ...string) ScriptStep {
	calls := make([]transcript.ToolCall, 0, len(toolNames))
	for _, name := range toolNames {
		calls = append(calls, transcript.ToolCall{
			ID:        "call_" + uuid.NewString()[:8],
			Name:      name,
			Arguments: json.RawMessage(`{}`),
		})
	}
	return ScriptStep{Reply: transcript.NewActed(text, calls...)}
}

// ActWith returns a step replying with one call carrying the given arguments.
func ActWith(toolName string, args any) ScriptStep {
	raw, err := json.Marshal(args)
	if err != nil {
		return Fail(fmt.Errorf("invalid scripted arguments: %w", err))
	}
	call := transcript.ToolCall{ID: "call_" + uuid.NewString()[:8], Name: toolName, Arguments: raw}
	return ScriptStep{Reply: transcript.NewActed("", call)}
}

// Fail returns a step that fails with err.
func Fail(err error) ScriptStep {
	return ScriptStep{Err: err}
}

// Block returns a step that waits for cancellation and returns the context error.
func Block() ScriptStep {
	return ScriptStep{Func: func(ctx context.Context, _ string, _ []transcript.Turn) (transcript.Turn, error) {
		<-ctx.Done()
		return transcript.Turn{}, ctx.Err()
	}}
}

// ScriptedEngine replays a fixed sequence of replies for deterministic tests
// and dry runs. It records every instruction it receives.
type ScriptedEngine struct {
	steps        []ScriptStep
	index        int
	appender     transcript.Appender
	instructions []string
	onExhausted  func(instruction string) ScriptStep
	mu           sync.Mutex
}

// NewScriptedEngine creates a scripted engine with the given steps.
func NewScriptedEngine(steps ...ScriptStep) *ScriptedEngine {
	return &ScriptedEngine{
		steps: steps,
		onExhausted: func(string) ScriptStep {
			return Fail(ErrScriptExhausted)
		},
	}
}

// WithAppender records each successful reply in a.
func (e *ScriptedEngine) WithAppender(a transcript.Appender) *ScriptedEngine {
	e.appender = a
	return e
}

// OnExhausted sets the step used once the script runs out.
func (e *ScriptedEngine) OnExhausted(fn func(instruction string) ScriptStep) *ScriptedEngine {
	e.onExhausted = fn
	return e
}

// RunTurn implements Engine.
func (e *ScriptedEngine) RunTurn(ctx context.Context, instruction string, turns []transcript.Turn) (transcript.Turn, bool, error) {
	step, index := e.next(instruction)

	if step.Condition != nil && !step.Condition(instruction) {
		return transcript.Turn{}, false, &ConditionFailedError{StepIndex: index, Instruction: instruction}
	}

	reply, err := step.Reply, step.Err
	if step.Func != nil {
		reply, err = step.Func(ctx, instruction, turns)
	}
	if err != nil {
		return transcript.Turn{}, false, err
	}

	if reply.ID == "" {
		reply = reply.WithID(uuid.NewString())
	}
	if e.appender != nil {
		if err := e.appender.Append(ctx, reply); err != nil {
			return transcript.Turn{}, false, fmt.Errorf("failed to record turn: %w", err)
		}
	}
	return reply, reply.Acted(), nil
}

func (e *ScriptedEngine) next(instruction string) (ScriptStep, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.instructions = append(e.instructions, instruction)
	index := e.index
	if index >= len(e.steps) {
		return e.onExhausted(instruction), index
	}
	e.index++
	return e.steps[index], index
}

// Instructions returns every instruction received, in order.
func (e *ScriptedEngine) Instructions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.instructions...)
}

// Calls returns the number of turns run.
func (e *ScriptedEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.instructions)
}

// Remaining returns the number of unused steps.
func (e *ScriptedEngine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.steps) - e.index
}

// ConditionFailedError indicates a step's instruction check did not hold.
type ConditionFailedError struct {
	StepIndex   int
	Instruction string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition failed at step %d", e.StepIndex)
}

// Package application provides the control loop and task runner.
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/nudge/domain/agent"
	"github.com/felixgeelhaar/nudge/domain/steering"
	"github.com/felixgeelhaar/nudge/domain/suggestion"
	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/logging"
	"github.com/felixgeelhaar/nudge/infrastructure/reasoner"
	"github.com/felixgeelhaar/nudge/infrastructure/statemachine"
	"github.com/felixgeelhaar/nudge/infrastructure/telemetry"
)

// Agent runs control-loop turns against a reasoning engine. Each turn
// installs a per-turn instruction derived from the recent transcript and
// reinstates the baseline instruction once the engine call returns.
type Agent struct {
	engine     reasoner.Engine
	reader     transcript.Reader
	registry   tool.Registry
	policy     steering.Policy
	scanner    steering.ActivityScanner
	lookback   int
	classifier *suggestion.Classifier
	metrics    telemetry.Metrics
	tracer     *telemetry.Tracer
	machine    *statekit.MachineConfig[*statemachine.Context]

	// mu serializes Think.
	mu sync.Mutex

	stateMu   sync.RWMutex
	installed steering.Instruction
	last      agent.TurnOutcome
}

// AgentConfig contains the collaborators and settings of an Agent.
type AgentConfig struct {
	Engine     reasoner.Engine
	Transcript transcript.Reader
	Registry   tool.Registry
	Policy     *steering.Policy
	Scanner    *steering.ActivityScanner
	Lookback   int
	Classifier *suggestion.Classifier
	Metrics    telemetry.Metrics
	Tracer     *telemetry.Tracer
}

// NewAgent creates an agent with the given configuration.
func NewAgent(config AgentConfig) (*Agent, error) {
	if config.Engine == nil {
		return nil, agent.ErrNilEngine
	}
	if config.Transcript == nil {
		return nil, agent.ErrNilTranscript
	}
	if config.Registry == nil {
		return nil, agent.ErrNilRegistry
	}

	machine, err := statemachine.NewTurnMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}

	a := &Agent{
		engine:     config.Engine,
		reader:     config.Transcript,
		registry:   config.Registry,
		policy:     steering.NewPolicy("", ""),
		scanner:    steering.NewActivityScanner(steering.DefaultBrowserTool),
		lookback:   config.Lookback,
		classifier: config.Classifier,
		metrics:    config.Metrics,
		tracer:     config.Tracer,
		machine:    machine,
	}

	if config.Policy != nil {
		a.policy = *config.Policy
	}
	if config.Scanner != nil {
		a.scanner = *config.Scanner
	}
	if a.lookback <= 0 {
		a.lookback = steering.DefaultLookback
	}
	if a.classifier == nil {
		a.classifier = suggestion.DefaultClassifier()
	}
	if a.metrics == nil {
		a.metrics = telemetry.NoopMetrics{}
	}
	if a.tracer == nil {
		a.tracer = telemetry.NewTracer()
	}
	a.installed = a.policy.BaselineInstruction()

	return a, nil
}

// Think runs one turn and reports whether the engine called at least one
// tool. Engine errors are returned wrapped in agent.ErrEngineFailure and
// transcript read errors in agent.ErrTranscriptUnavailable. The baseline
// instruction is in place again when Think returns or panics.
func (a *Agent) Think(ctx context.Context) (acted bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	turnID := uuid.NewString()
	ctx, span := a.tracer.StartTurn(ctx, turnID)

	interp := a.startTurn(ctx, turnID, span)
	defer interp.Stop()

	outcome := agent.TurnOutcome{TurnID: turnID, Instruction: a.policy.BaselineInstruction()}
	start := time.Now()
	release := func() {}

	defer func() {
		release()
		a.settle(interp, turnID)
		outcome.Duration = time.Since(start)
		a.record(ctx, span, outcome)
		acted, err = outcome.Acted, outcome.Err
	}()

	if terr := interp.Transition(agent.StateComputingOverride); terr != nil {
		outcome.Err = terr
		return
	}

	turns, rerr := a.reader.Recent(ctx, max(a.lookback, a.scanner.Window))
	if rerr != nil {
		outcome.Err = fmt.Errorf("%w: %w", agent.ErrTranscriptUnavailable, rerr)
		return
	}

	outcome.Streak = steering.NoProgressStreak(turns, a.lookback)
	outcome.BrowserActive = a.scanner.Active(turns)
	outcome.Instruction = a.policy.Compose(outcome.Streak, a.registry.Names(), outcome.BrowserActive)

	if terr := interp.Transition(agent.StateDelegating); terr != nil {
		outcome.Err = terr
		return
	}

	release = a.install(outcome.Instruction)
	reply, didAct, eerr := a.engine.RunTurn(ctx, outcome.Instruction.Text, turns)
	if eerr != nil {
		outcome.Err = fmt.Errorf("%w: %w", agent.ErrEngineFailure, eerr)
		return
	}
	outcome.Acted = didAct
	outcome.Reply = reply
	return
}

// startTurn creates an interpreter for the turn, idle and observed by
// logging, metrics and the turn span.
func (a *Agent) startTurn(ctx context.Context, turnID string, span trace.Span) *statemachine.Interpreter {
	mctx := statemachine.NewContext(turnID)
	mctx.OnTransition = func(from, to agent.State) {
		a.metrics.RecordStateTransition(ctx, from, to)
		telemetry.Phase(span, from, to)
		logging.Debug().
			Add(logging.TurnID(turnID)).
			Add(logging.FromState(from)).
			Add(logging.ToState(to)).
			Msg("turn phase")
	}

	interp := statemachine.NewInterpreter(a.machine, mctx)
	interp.Start()
	return interp
}

// install makes inst the effective instruction and returns the function
// that reinstates the baseline. The release function is idempotent.
func (a *Agent) install(inst steering.Instruction) func() {
	a.stateMu.Lock()
	a.installed = inst
	a.stateMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.stateMu.Lock()
			a.installed = a.policy.BaselineInstruction()
			a.stateMu.Unlock()
		})
	}
}

// settle drives the chart through restoring back to idle from whatever
// phase the turn stopped in.
func (a *Agent) settle(interp *statemachine.Interpreter, turnID string) {
	if !interp.Matches(agent.StateIdle) && !interp.Matches(agent.StateRestoring) {
		if err := interp.Transition(agent.StateRestoring); err != nil {
			logging.Warn().Add(logging.TurnID(turnID)).Add(logging.ErrorField(err)).Msg("restore transition failed")
		}
	}
	if interp.Matches(agent.StateRestoring) {
		if err := interp.Transition(agent.StateIdle); err != nil {
			logging.Warn().Add(logging.TurnID(turnID)).Add(logging.ErrorField(err)).Msg("settle transition failed")
		}
	}
}

func (a *Agent) record(ctx context.Context, span trace.Span, outcome agent.TurnOutcome) {
	a.stateMu.Lock()
	a.last = outcome
	a.stateMu.Unlock()

	a.metrics.RecordTurn(ctx, outcome)
	telemetry.EndTurn(span, outcome)

	if outcome.Err != nil {
		logging.Error().
			Add(logging.TurnID(outcome.TurnID)).
			Add(logging.Streak(outcome.Streak)).
			Add(logging.Instruction(outcome.Instruction.Kind)).
			Add(logging.Duration(outcome.Duration)).
			Add(logging.ErrorField(outcome.Err)).
			Msg("turn failed")
		return
	}

	logging.Info().
		Add(logging.TurnID(outcome.TurnID)).
		Add(logging.Streak(outcome.Streak)).
		Add(logging.BrowserActive(outcome.BrowserActive)).
		Add(logging.Instruction(outcome.Instruction.Kind)).
		Add(logging.Acted(outcome.Acted)).
		Add(logging.Duration(outcome.Duration)).
		Msg("turn completed")
}

// EffectiveInstruction returns the instruction currently installed. Outside
// a turn this is always the baseline.
func (a *Agent) EffectiveInstruction() steering.Instruction {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.installed
}

// LastOutcome returns the outcome of the most recent turn.
func (a *Agent) LastOutcome() agent.TurnOutcome {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.last
}

// ToolSelectionPrompt renders tool guidance for a user utterance.
func (a *Agent) ToolSelectionPrompt(utterance string) string {
	return a.classifier.SelectionPrompt(utterance)
}

// Registry returns the tool registry the agent advertises.
func (a *Agent) Registry() tool.Registry {
	return a.registry
}

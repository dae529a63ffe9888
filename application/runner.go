package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/domain/agent"
	"github.com/felixgeelhaar/nudge/domain/config"
	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/logging"
	"github.com/felixgeelhaar/nudge/infrastructure/resilience"
	"github.com/felixgeelhaar/nudge/infrastructure/telemetry"
)

// RunStatus describes how a task ended.
type RunStatus string

const (
	RunStatusTerminated RunStatus = "terminated" // terminate tool called
	RunStatusIdle       RunStatus = "idle"       // stopped after consecutive idle turns
	RunStatusMaxSteps   RunStatus = "max_steps"  // step budget exhausted
	RunStatusFailed     RunStatus = "failed"     // turn or context error
)

// RunResult summarizes a task.
type RunResult struct {
	ID       string
	Goal     string
	Status   RunStatus
	Steps    int
	Duration time.Duration
}

// Runner drives a task: it records the goal, runs turns, and executes the
// tool calls each turn produces until the task terminates.
type Runner struct {
	agent      *Agent
	store      transcript.Appender
	executor   *resilience.Executor
	metrics    telemetry.Metrics
	maxSteps   int
	maxObserve int
	terminate  string
	stopIdle   int
}

// RunnerConfig contains configuration for the runner.
type RunnerConfig struct {
	Agent    *Agent
	Store    transcript.Appender
	Executor *resilience.Executor
	Metrics  telemetry.Metrics

	// MaxSteps bounds the number of turns (default 20).
	MaxSteps int
	// MaxObserve caps each observation in runes (default 10000).
	MaxObserve int
	// TerminateTool ends the task when called (default "terminate").
	TerminateTool string
	// StopAfterIdle ends the task after this many consecutive turns without
	// a tool call. Zero never stops early.
	StopAfterIdle int
}

// NewRunner creates a runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Store == nil {
		return nil, agent.ErrNilTranscript
	}

	r := &Runner{
		agent:      cfg.Agent,
		store:      cfg.Store,
		executor:   cfg.Executor,
		metrics:    cfg.Metrics,
		maxSteps:   cfg.MaxSteps,
		maxObserve: cfg.MaxObserve,
		terminate:  cfg.TerminateTool,
		stopIdle:   cfg.StopAfterIdle,
	}
	if r.executor == nil {
		r.executor = resilience.NewDefaultExecutor()
	}
	if r.metrics == nil {
		r.metrics = telemetry.NoopMetrics{}
	}
	if r.maxSteps <= 0 {
		r.maxSteps = config.DefaultMaxSteps
	}
	if r.maxObserve <= 0 {
		r.maxObserve = config.DefaultMaxObserve
	}
	if r.terminate == "" {
		r.terminate = config.DefaultTerminateTool
	}
	return r, nil
}

// Run executes the task described by goal. An empty goal continues the
// existing transcript.
func (r *Runner) Run(ctx context.Context, goal string) (RunResult, error) {
	start := time.Now()
	result := RunResult{ID: "run-" + uuid.NewString(), Goal: goal}

	logging.Info().
		Add(logging.Str("run_id", result.ID)).
		Add(logging.Str("goal", goal)).
		Msg("run started")

	finish := func(status RunStatus, err error) (RunResult, error) {
		result.Status = status
		result.Duration = time.Since(start)

		ev := logging.Info()
		if err != nil {
			ev = logging.Error().Add(logging.ErrorField(err))
		}
		ev.Add(logging.Str("run_id", result.ID)).
			Add(logging.Str("status", string(status))).
			Add(logging.Step(result.Steps)).
			Add(logging.Duration(result.Duration)).
			Msg("run finished")
		return result, err
	}

	if goal != "" {
		if err := r.store.Append(ctx, transcript.NewPlain(transcript.RoleUser, goal)); err != nil {
			return finish(RunStatusFailed, fmt.Errorf("failed to record goal: %w", err))
		}
	}

	idle := 0
	for result.Steps < r.maxSteps {
		if err := ctx.Err(); err != nil {
			return finish(RunStatusFailed, err)
		}

		result.Steps++
		acted, err := r.agent.Think(ctx)
		if err != nil {
			return finish(RunStatusFailed, err)
		}

		if !acted {
			idle++
			if r.stopIdle > 0 && idle >= r.stopIdle {
				return finish(RunStatusIdle, nil)
			}
			continue
		}
		idle = 0

		terminated, err := r.act(ctx, r.agent.LastOutcome().Reply)
		if err != nil {
			return finish(RunStatusFailed, err)
		}
		if terminated {
			return finish(RunStatusTerminated, nil)
		}
	}

	return finish(RunStatusMaxSteps, fmt.Errorf("%w: %d", agent.ErrMaxStepsExceeded, r.maxSteps))
}

// act executes every tool call of reply in order and records one tool
// turn per call. It reports whether a terminal tool ran.
func (r *Runner) act(ctx context.Context, reply transcript.Turn) (bool, error) {
	terminated := false
	for _, call := range reply.ToolCalls() {
		observation, terminal := r.execute(ctx, call)
		if err := r.store.Append(ctx, transcript.NewToolResult(call.ID, observation)); err != nil {
			return false, fmt.Errorf("failed to record observation: %w", err)
		}
		if terminal {
			terminated = true
			break
		}
	}
	return terminated, nil
}

func (r *Runner) execute(ctx context.Context, call transcript.ToolCall) (string, bool) {
	t, ok := r.agent.Registry().Get(call.Name)
	if !ok {
		logging.Warn().Add(logging.ToolName(call.Name)).Msg("unknown tool requested")
		return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrToolNotFound, call.Name)).Observation(r.maxObserve), false
	}

	start := time.Now()
	result, err := r.executor.Execute(ctx, t, call.Arguments)
	elapsed := time.Since(start)
	r.metrics.RecordToolExecution(ctx, call.Name, err == nil && !result.IsError(), elapsed)

	if err != nil {
		logging.Warn().
			Add(logging.ToolName(call.Name)).
			Add(logging.Duration(elapsed)).
			Add(logging.ErrorField(err)).
			Msg("tool execution failed")
		result = tool.NewErrorResult(err)
	} else {
		logging.Debug().
			Add(logging.ToolName(call.Name)).
			Add(logging.Duration(elapsed)).
			Msg("tool executed")
	}

	observation := fmt.Sprintf("Observed output of cmd `%s` executed:\n%s", call.Name, result.Observation(r.maxObserve))
	terminal := call.Name == r.terminate || t.Annotations().Terminal
	return observation, terminal
}

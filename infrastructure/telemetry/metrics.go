// Package telemetry provides OpenTelemetry metrics and tracing for the
// control loop.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/felixgeelhaar/nudge/domain/agent"
)

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordTurn(ctx context.Context, outcome agent.TurnOutcome)
	RecordStateTransition(ctx context.Context, from, to agent.State)
	RecordToolExecution(ctx context.Context, toolName string, success bool, duration time.Duration)
}

// MetricsProvider records control-loop metrics through the global meter provider.
type MetricsProvider struct {
	meter metric.Meter

	turns            metric.Int64Counter
	escalations      metric.Int64Counter
	browserOverrides metric.Int64Counter
	engineFailures   metric.Int64Counter
	stateTransitions metric.Int64Counter
	toolExecutions   metric.Int64Counter

	turnDuration metric.Float64Histogram
	toolDuration metric.Float64Histogram
	streak       metric.Int64Histogram

	initErr error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter.
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/nudge",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	mp := &MetricsProvider{
		meter: otel.GetMeterProvider().Meter(
			config.MeterName,
			metric.WithInstrumentationVersion(config.MeterVersion),
		),
	}
	mp.initErr = mp.initInstruments()
	return mp
}

func (mp *MetricsProvider) initInstruments() error {
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&mp.turns, "nudge.turns", "Number of control-loop turns", "{turn}"},
		{&mp.escalations, "nudge.turns.escalated", "Turns run under the escalation instruction", "{turn}"},
		{&mp.browserOverrides, "nudge.turns.browser", "Turns run under the browser instruction", "{turn}"},
		{&mp.engineFailures, "nudge.engine.failures", "Reasoning engine failures", "{error}"},
		{&mp.stateTransitions, "nudge.state.transitions", "Number of turn phase transitions", "{transition}"},
		{&mp.toolExecutions, "nudge.tool.executions", "Number of tool executions", "{execution}"},
	}
	for _, c := range counters {
		*c.dst, err = mp.meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return err
		}
	}

	mp.turnDuration, err = mp.meter.Float64Histogram(
		"nudge.turn.duration",
		metric.WithDescription("Duration of control-loop turns"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.toolDuration, err = mp.meter.Float64Histogram(
		"nudge.tool.duration",
		metric.WithDescription("Duration of tool executions"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.streak, err = mp.meter.Int64Histogram(
		"nudge.turn.streak",
		metric.WithDescription("No-progress streak observed before each turn"),
		metric.WithUnit("{turn}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordTurn records the outcome of one turn.
func (mp *MetricsProvider) RecordTurn(ctx context.Context, outcome agent.TurnOutcome) {
	if mp.initErr != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("instruction.kind", string(outcome.Instruction.Kind)),
		attribute.Bool("acted", outcome.Acted),
		attribute.Bool("failed", outcome.Failed()),
	)

	mp.turns.Add(ctx, 1, attrs)
	mp.turnDuration.Record(ctx, float64(outcome.Duration.Milliseconds()), attrs)
	mp.streak.Record(ctx, int64(outcome.Streak))

	if outcome.Streak > 0 {
		mp.escalations.Add(ctx, 1)
	}
	if outcome.BrowserActive {
		mp.browserOverrides.Add(ctx, 1)
	}
	if outcome.Failed() {
		mp.engineFailures.Add(ctx, 1)
	}
}

// RecordStateTransition records a turn phase change.
func (mp *MetricsProvider) RecordStateTransition(ctx context.Context, from, to agent.State) {
	if mp.initErr != nil {
		return
	}
	mp.stateTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state.from", string(from)),
		attribute.String("state.to", string(to)),
	))
}

// RecordToolExecution records a tool execution performed by the task runner.
func (mp *MetricsProvider) RecordToolExecution(ctx context.Context, toolName string, success bool, duration time.Duration) {
	if mp.initErr != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.Bool("success", success),
	)
	mp.toolExecutions.Add(ctx, 1, attrs)
	mp.toolDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

// RecordTurn is a no-op.
func (NoopMetrics) RecordTurn(context.Context, agent.TurnOutcome) {}

// RecordStateTransition is a no-op.
func (NoopMetrics) RecordStateTransition(context.Context, agent.State, agent.State) {}

// RecordToolExecution is a no-op.
func (NoopMetrics) RecordToolExecution(context.Context, string, bool, time.Duration) {}

var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetrics{}
)

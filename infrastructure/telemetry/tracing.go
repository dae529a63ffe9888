package telemetry

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/felixgeelhaar/nudge/domain/agent"
)

const tracerName = "github.com/felixgeelhaar/nudge"

// Tracer opens one span per control-loop turn.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global tracer provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// NewTracerFrom creates a tracer from an explicit provider.
func NewTracerFrom(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(tracerName)}
}

// StartTurn starts the span for a turn.
func (t *Tracer) StartTurn(ctx context.Context, turnID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "nudge.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("turn.id", turnID)),
	)
}

// Phase records a phase change as a span event.
func Phase(span trace.Span, from, to agent.State) {
	span.AddEvent("phase", trace.WithAttributes(
		attribute.String("state.from", string(from)),
		attribute.String("state.to", string(to)),
	))
}

// EndTurn annotates and ends the span for a turn.
func EndTurn(span trace.Span, outcome agent.TurnOutcome) {
	span.SetAttributes(
		attribute.Int("turn.streak", outcome.Streak),
		attribute.Bool("turn.browser_active", outcome.BrowserActive),
		attribute.String("turn.instruction", string(outcome.Instruction.Kind)),
		attribute.Bool("turn.acted", outcome.Acted),
	)
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InstallStdoutTracing installs a global SDK tracer provider that writes
// finished spans to w. Call the returned function to flush and shut down.
func InstallStdoutTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// ErrNoEndpoint is returned when OTLP export is requested without an endpoint.
var ErrNoEndpoint = errors.New("telemetry: otlp endpoint is required")

// OTLPConfig configures span export to an OpenTelemetry collector.
type OTLPConfig struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	// SampleRate is the fraction of turns traced; values >= 1 trace every turn.
	SampleRate   float64
	BatchTimeout time.Duration
}

// InstallOTLPTracing installs a global SDK tracer provider that batches
// spans to an OTLP gRPC collector.
func InstallOTLPTracing(ctx context.Context, cfg OTLPConfig) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "nudge"
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 5 * time.Second
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0 || rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

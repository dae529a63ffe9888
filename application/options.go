package application

import (
	"github.com/felixgeelhaar/nudge/domain/config"
	"github.com/felixgeelhaar/nudge/domain/steering"
	"github.com/felixgeelhaar/nudge/domain/suggestion"
	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/reasoner"
	"github.com/felixgeelhaar/nudge/infrastructure/telemetry"
)

// Option configures the agent.
type Option func(*AgentConfig)

// WithEngine sets the reasoning engine.
func WithEngine(e reasoner.Engine) Option {
	return func(c *AgentConfig) {
		c.Engine = e
	}
}

// WithTranscript sets the transcript reader.
func WithTranscript(r transcript.Reader) Option {
	return func(c *AgentConfig) {
		c.Transcript = r
	}
}

// WithRegistry sets the tool registry.
func WithRegistry(r tool.Registry) Option {
	return func(c *AgentConfig) {
		c.Registry = r
	}
}

// WithPolicy sets the instruction policy.
func WithPolicy(p steering.Policy) Option {
	return func(c *AgentConfig) {
		c.Policy = &p
	}
}

// WithActivityScanner sets the browser activity scanner.
func WithActivityScanner(s steering.ActivityScanner) Option {
	return func(c *AgentConfig) {
		c.Scanner = &s
	}
}

// WithLookback sets how many trailing turns the no-progress scan reads.
func WithLookback(n int) Option {
	return func(c *AgentConfig) {
		c.Lookback = n
	}
}

// WithClassifier sets the tool classifier used by ToolSelectionPrompt.
func WithClassifier(cl *suggestion.Classifier) Option {
	return func(c *AgentConfig) {
		c.Classifier = cl
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *AgentConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the turn tracer.
func WithTracer(t *telemetry.Tracer) Option {
	return func(c *AgentConfig) {
		c.Tracer = t
	}
}

// WithSettings applies the control-loop section of a configuration file.
func WithSettings(s config.AgentSettings) Option {
	return func(c *AgentConfig) {
		policy := steering.NewPolicy(s.BaselineInstruction, s.BrowserInstruction)
		c.Policy = &policy

		scanner := steering.NewActivityScanner(s.BrowserTool)
		if s.BrowserTool == "" {
			scanner.Target = steering.DefaultBrowserTool
		}
		if s.ActivityWindow > 0 {
			scanner.Window = s.ActivityWindow
		}
		if mode := steering.MatchMode(s.ActivityMatch); mode.IsValid() {
			scanner.Mode = mode
		}
		c.Scanner = &scanner

		c.Lookback = s.Lookback
	}
}

// NewAgentWithOptions creates an agent with functional options.
func NewAgentWithOptions(opts ...Option) (*Agent, error) {
	config := AgentConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewAgent(config)
}

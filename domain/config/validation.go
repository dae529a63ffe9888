package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates agent configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *AgentConfig) ValidationErrors {
	v.errors = nil

	v.validateRequired(config)
	v.validateAgent(config)
	v.validateEngine(config)
	v.validateResilience(config)
	v.validateStorage(config)
	v.validateSearch(config)
	v.validateTelemetry(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateRequired(config *AgentConfig) {
	if config.Name == "" {
		v.addError("name", "name is required")
	}
	if config.Version == "" {
		v.addError("version", "version is required")
	}
}

func (v *Validator) validateAgent(config *AgentConfig) {
	a := config.Agent
	if a.MaxSteps < 0 {
		v.addError("agent.max_steps", "max_steps must be non-negative")
	}
	if a.Lookback < 0 {
		v.addError("agent.lookback", "lookback must be non-negative")
	}
	if a.ActivityWindow < 0 {
		v.addError("agent.activity_window", "activity_window must be non-negative")
	}
	if a.MaxObserve < 0 {
		v.addError("agent.max_observe", "max_observe must be non-negative")
	}
	if a.StopAfterIdle < 0 {
		v.addError("agent.stop_after_idle", "stop_after_idle must be non-negative")
	}
	switch a.ActivityMatch {
	case "", "tool_name", "content", "either":
	default:
		v.addError("agent.activity_match", fmt.Sprintf("invalid match mode: %s", a.ActivityMatch))
	}
	for i, name := range a.Tools {
		if strings.TrimSpace(name) == "" {
			v.addError(fmt.Sprintf("agent.tools[%d]", i), "tool name is required")
		}
	}
}

func (v *Validator) validateEngine(config *AgentConfig) {
	e := config.Engine
	switch e.Provider {
	case "", "openai", "scripted":
	default:
		v.addError("engine.provider", fmt.Sprintf("unsupported provider: %s", e.Provider))
	}
	if e.Temperature < 0 || e.Temperature > 2 {
		v.addError("engine.temperature", "temperature must be between 0 and 2")
	}
	if e.MaxTokens < 0 {
		v.addError("engine.max_tokens", "max_tokens must be non-negative")
	}
}

func (v *Validator) validateResilience(config *AgentConfig) {
	if config.Resilience.Retry.Enabled {
		if config.Resilience.Retry.MaxAttempts <= 0 {
			v.addError("resilience.retry.max_attempts", "max_attempts must be positive when enabled")
		}
		if config.Resilience.Retry.Multiplier < 1 {
			v.addError("resilience.retry.multiplier", "multiplier must be >= 1")
		}
	}

	if config.Resilience.CircuitBreaker.Enabled {
		if config.Resilience.CircuitBreaker.Threshold <= 0 {
			v.addError("resilience.circuit_breaker.threshold", "threshold must be positive when enabled")
		}
	}
}

func (v *Validator) validateStorage(config *AgentConfig) {
	s := config.Storage
	switch s.Driver {
	case "", "memory":
	case "sqlite", "postgres":
		if s.DSN == "" {
			v.addError("storage.dsn", fmt.Sprintf("dsn is required for %s", s.Driver))
		}
	case "badger":
		if s.Dir == "" {
			v.addError("storage.dir", "dir is required for badger")
		}
	case "redis":
		if s.Address == "" {
			v.addError("storage.address", "address is required for redis")
		}
	default:
		v.addError("storage.driver", fmt.Sprintf("unsupported driver: %s", s.Driver))
	}
}

func (v *Validator) validateSearch(config *AgentConfig) {
	s := config.Search
	switch s.Provider {
	case "", "memory":
	case "searxng":
		if s.URL == "" {
			v.addError("search.url", "url is required for searxng")
		}
	default:
		v.addError("search.provider", fmt.Sprintf("unsupported provider: %s", s.Provider))
	}
	if s.NumResults < 0 {
		v.addError("search.num_results", "num_results must be non-negative")
	}
}

func (v *Validator) validateTelemetry(config *AgentConfig) {
	t := config.Telemetry
	switch t.Exporter {
	case "", "none", "stdout":
	case "otlp":
		if t.Endpoint == "" {
			v.addError("telemetry.endpoint", "endpoint is required for otlp")
		}
	default:
		v.addError("telemetry.exporter", fmt.Sprintf("unsupported exporter: %s", t.Exporter))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		v.addError("telemetry.sample_rate", "sample_rate must be between 0 and 1")
	}
}

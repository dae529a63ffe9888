// Package config provides domain models for agent configuration.
package config

import "time"

// AgentConfig represents the complete agent configuration.
type AgentConfig struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name" yaml:"name"`
	// Version is the configuration schema version.
	Version string `json:"version" yaml:"version"`
	// Description describes the agent's purpose.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Agent contains control-loop settings.
	Agent AgentSettings `json:"agent" yaml:"agent"`
	// Engine configures the reasoning engine provider.
	Engine EngineConfig `json:"engine,omitempty" yaml:"engine,omitempty"`
	// Resilience configures retries and circuit breaking for engine and tool calls.
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
	// Storage configures the transcript store.
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`
	// Search configures the web_search tool backend.
	Search SearchConfig `json:"search,omitempty" yaml:"search,omitempty"`
	// Logging configures structured logging.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Telemetry configures turn span export.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

// AgentSettings contains core agent behavior settings.
type AgentSettings struct {
	// BaselineInstruction is the standing next-step instruction.
	BaselineInstruction string `json:"baseline_instruction,omitempty" yaml:"baseline_instruction,omitempty"`
	// BrowserInstruction replaces the instruction while the browser is in use.
	BrowserInstruction string `json:"browser_instruction,omitempty" yaml:"browser_instruction,omitempty"`
	// SystemPrompt is sent ahead of the instruction on every turn.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	// Lookback bounds the no-progress scan (default 5).
	Lookback int `json:"lookback,omitempty" yaml:"lookback,omitempty"`
	// ActivityWindow bounds the browser activity scan (default 3).
	ActivityWindow int `json:"activity_window,omitempty" yaml:"activity_window,omitempty"`
	// BrowserTool is the tool whose use selects the browser instruction.
	BrowserTool string `json:"browser_tool,omitempty" yaml:"browser_tool,omitempty"`
	// ActivityMatch is tool_name, content or either.
	ActivityMatch string `json:"activity_match,omitempty" yaml:"activity_match,omitempty"`
	// TerminateTool is the tool that ends a task.
	TerminateTool string `json:"terminate_tool,omitempty" yaml:"terminate_tool,omitempty"`
	// MaxSteps bounds the number of turns per task (default 20).
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	// MaxObserve caps tool observation length in runes (default 10000).
	MaxObserve int `json:"max_observe,omitempty" yaml:"max_observe,omitempty"`
	// StopAfterIdle ends a task after this many consecutive turns without
	// tool calls (0 = never).
	StopAfterIdle int `json:"stop_after_idle,omitempty" yaml:"stop_after_idle,omitempty"`
	// Tools lists the enabled built-in tools (empty = all).
	Tools []string `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// EngineConfig configures the reasoning engine.
type EngineConfig struct {
	// Provider is the engine backend (openai, scripted).
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// APIKey authenticates with the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// Model is the model identifier.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	// MaxTokens caps the completion length.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// Timeout bounds a single completion request.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ResilienceConfig contains resilience settings.
type ResilienceConfig struct {
	// Timeout is the default tool timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Retry configures retry behavior.
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
	// CircuitBreaker configures circuit breaker behavior.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// Enabled enables retry.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxAttempts is the maximum retry attempts.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// InitialDelay is the first retry delay.
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`
	// Multiplier is the backoff multiplier.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Enabled enables circuit breaker.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Threshold is failures before opening.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// StorageConfig selects the transcript backend.
type StorageConfig struct {
	// Driver is memory, sqlite, postgres, redis or badger.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	// DSN is the SQLite or PostgreSQL data source name.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// Dir is the BadgerDB data directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Address is the Redis server address.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	// Password authenticates with Redis.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// KeyPrefix namespaces stored keys.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
	// Conversation identifies the transcript within the store.
	Conversation string `json:"conversation,omitempty" yaml:"conversation,omitempty"`
}

// SearchConfig configures the web search backend.
type SearchConfig struct {
	// Provider is searxng or memory.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	// URL is the SearXNG base URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// NumResults is the default result count.
	NumResults int `json:"num_results,omitempty" yaml:"num_results,omitempty"`
	// ResolveRedirects rewrites result URLs to their final destination.
	ResolveRedirects bool `json:"resolve_redirects,omitempty" yaml:"resolve_redirects,omitempty"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is json or console.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	// Exporter is none, stdout or otlp.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Insecure disables TLS to the collector.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	// SampleRate is the fraction of turns traced (0 or 1 = all).
	SampleRate float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

package resilience

import (
	"time"

	"github.com/felixgeelhaar/nudge/domain/config"
)

// Option configures the executor.
type Option func(*ExecutorConfig)

// WithMaxConcurrent sets the maximum concurrent executions.
func WithMaxConcurrent(n int) Option {
	return func(c *ExecutorConfig) {
		c.MaxConcurrent = n
	}
}

// WithCircuitBreakerThreshold sets the failure threshold for circuit breaker.
func WithCircuitBreakerThreshold(n int) Option {
	return func(c *ExecutorConfig) {
		c.CircuitBreakerThreshold = n
	}
}

// WithRetryAttempts sets the maximum retry attempts.
func WithRetryAttempts(n int) Option {
	return func(c *ExecutorConfig) {
		c.RetryMaxAttempts = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.RetryInitialDelay = d
	}
}

// WithTimeout sets the default execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.DefaultTimeout = d
	}
}

// NewExecutorWithOptions creates an executor with the given options.
func NewExecutorWithOptions(opts ...Option) *Executor {
	cfg := DefaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewExecutor(cfg)
}

// ConfigFrom maps the file-level resilience section onto an executor
// configuration. Disabled sections keep a single attempt and the default
// breaker threshold.
func ConfigFrom(rc config.ResilienceConfig) ExecutorConfig {
	cfg := DefaultExecutorConfig()
	cfg.RetryMaxAttempts = 1

	if rc.Timeout > 0 {
		cfg.DefaultTimeout = rc.Timeout.Duration()
	}
	if rc.Retry.Enabled {
		cfg.RetryMaxAttempts = rc.Retry.MaxAttempts
		if rc.Retry.InitialDelay > 0 {
			cfg.RetryInitialDelay = rc.Retry.InitialDelay.Duration()
		}
		if rc.Retry.Multiplier >= 1 {
			cfg.RetryBackoffMultiplier = rc.Retry.Multiplier
		}
	}
	if rc.CircuitBreaker.Enabled {
		cfg.CircuitBreakerThreshold = rc.CircuitBreaker.Threshold
		if rc.CircuitBreaker.Timeout > 0 {
			cfg.CircuitBreakerTimeout = rc.CircuitBreaker.Timeout.Duration()
		}
	}
	return cfg
}

package resilience

import (
	"context"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/nudge/infrastructure/logging"
	"github.com/felixgeelhaar/nudge/infrastructure/reasoner"
)

// ResilientProvider wraps a reasoner.Provider with retry and circuit breaking.
// API errors carried in the response body are returned as-is and not retried.
type ResilientProvider struct {
	inner   reasoner.Provider
	breaker circuitbreaker.CircuitBreaker[reasoner.CompletionResponse]
	retry   retry.Retry[reasoner.CompletionResponse]
}

// NewResilientProvider wraps inner using the retry and breaker settings of cfg.
func NewResilientProvider(inner reasoner.Provider, cfg ExecutorConfig) *ResilientProvider {
	cfg = normalize(cfg)
	threshold := cfg.CircuitBreakerThreshold

	return &ResilientProvider{
		inner: inner,
		breaker: circuitbreaker.New[reasoner.CompletionResponse](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.CircuitBreakerTimeout,
			Timeout:     cfg.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- positive, checked above
			},
		}),
		retry: retry.New[reasoner.CompletionResponse](retry.Config{
			MaxAttempts:        cfg.RetryMaxAttempts,
			InitialDelay:       cfg.RetryInitialDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         cfg.RetryBackoffMultiplier,
			NonRetryableErrors: []error{context.Canceled, context.DeadlineExceeded},
		}),
	}
}

// Name returns the wrapped provider name.
func (p *ResilientProvider) Name() string {
	return p.inner.Name()
}

// Complete implements reasoner.Provider.
func (p *ResilientProvider) Complete(ctx context.Context, req reasoner.CompletionRequest) (reasoner.CompletionResponse, error) {
	resp, err := p.breaker.Execute(ctx, func(ctx context.Context) (reasoner.CompletionResponse, error) {
		return p.retry.Do(ctx, func(ctx context.Context) (reasoner.CompletionResponse, error) {
			return p.inner.Complete(ctx, req)
		})
	})
	if err != nil {
		logging.Warn().
			Add(logging.Component("resilience")).
			Add(logging.Str("provider", p.inner.Name())).
			Add(logging.Str("breaker", p.breaker.State().String())).
			Add(logging.ErrorField(err)).
			Msg("completion failed")
	}
	return resp, err
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (p *ResilientProvider) CircuitBreakerState() circuitbreaker.State {
	return p.breaker.State()
}

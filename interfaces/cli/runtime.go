package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/nudge/application"
	"github.com/felixgeelhaar/nudge/domain/config"
	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/reasoner"
	"github.com/felixgeelhaar/nudge/infrastructure/resilience"
	"github.com/felixgeelhaar/nudge/infrastructure/storage/badger"
	"github.com/felixgeelhaar/nudge/infrastructure/storage/memory"
	"github.com/felixgeelhaar/nudge/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/nudge/infrastructure/storage/redis"
	"github.com/felixgeelhaar/nudge/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/nudge/infrastructure/telemetry"
	"github.com/felixgeelhaar/nudge/pack/control"
	"github.com/felixgeelhaar/nudge/pack/search"
)

// runtime holds the components assembled from a configuration.
type runtime struct {
	store    transcript.Store
	registry *memory.ToolRegistry
	agent    *application.Agent
	runner   *application.Runner
	closers  []func() error
}

// Close releases storage connections.
func (r *runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildRuntime wires storage, tools, the reasoning engine, the agent and
// the runner from cfg.
func buildRuntime(ctx context.Context, cfg *config.AgentConfig) (*runtime, error) {
	rt := &runtime{}

	store, closer, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	rt.store = store
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}

	fail := func(err error) (*runtime, error) {
		_ = rt.Close()
		return nil, err
	}

	rt.registry, err = buildRegistry(cfg)
	if err != nil {
		return fail(err)
	}

	engine, err := buildEngine(cfg, store, rt.registry)
	if err != nil {
		return fail(err)
	}

	metrics := telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())

	rt.agent, err = application.NewAgentWithOptions(
		application.WithEngine(engine),
		application.WithTranscript(store),
		application.WithRegistry(rt.registry),
		application.WithSettings(cfg.Agent),
		application.WithMetrics(metrics),
	)
	if err != nil {
		return fail(fmt.Errorf("failed to create agent: %w", err))
	}

	rt.runner, err = application.NewRunner(application.RunnerConfig{
		Agent:         rt.agent,
		Store:         store,
		Executor:      resilience.NewExecutor(resilience.ConfigFrom(cfg.Resilience)),
		Metrics:       metrics,
		MaxSteps:      cfg.Agent.MaxSteps,
		MaxObserve:    cfg.Agent.MaxObserve,
		TerminateTool: cfg.Agent.TerminateTool,
		StopAfterIdle: cfg.Agent.StopAfterIdle,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to create runner: %w", err))
	}

	return rt, nil
}

func openStore(ctx context.Context, sc config.StorageConfig) (transcript.Store, func() error, error) {
	switch sc.Driver {
	case "", "memory":
		return memory.NewTranscriptStore(), nil, nil

	case "sqlite":
		s, err := sqlite.NewTranscriptStore(sqlite.DefaultConfig(),
			sqlite.WithDSN(sc.DSN),
			sqlite.WithConversation(sc.Conversation),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s.Close, nil

	case "postgres":
		s, err := postgres.NewTranscriptStore(ctx, postgres.DefaultConfig(),
			postgres.WithDSN(sc.DSN),
			postgres.WithConversation(sc.Conversation),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, s.Close, nil

	case "badger":
		s, err := badger.NewTranscriptStore(badger.DefaultConfig(),
			badger.WithDir(sc.Dir),
			badger.WithKeyPrefix(sc.KeyPrefix),
			badger.WithConversation(sc.Conversation),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return s, s.Close, nil

	case "redis":
		opts := []redis.ConfigOption{
			redis.WithAddress(sc.Address),
			redis.WithPassword(sc.Password),
			redis.WithConversation(sc.Conversation),
		}
		if sc.KeyPrefix != "" {
			opts = append(opts, redis.WithKeyPrefix(sc.KeyPrefix))
		}
		s, err := redis.NewTranscriptStore(redis.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", sc.Driver)
	}
}

func buildRegistry(cfg *config.AgentConfig) (*memory.ToolRegistry, error) {
	registry, _ := memory.NewToolRegistry()

	provider, err := buildSearchProvider(cfg.Search)
	if err != nil {
		return nil, err
	}

	searchOpts := []search.Option{search.WithNumResults(cfg.Search.NumResults)}
	if cfg.Search.ResolveRedirects {
		searchOpts = append(searchOpts, search.WithRedirectResolver(search.NewRedirectResolver(0, 0)))
	}
	searchPack, err := search.New(provider, searchOpts...)
	if err != nil {
		return nil, err
	}

	if err := searchPack.Install(registry, cfg.Agent.Tools...); err != nil {
		return nil, err
	}
	if err := control.New().Install(registry, cfg.Agent.Tools...); err != nil {
		return nil, err
	}
	return registry, nil
}

func buildSearchProvider(sc config.SearchConfig) (search.Provider, error) {
	switch sc.Provider {
	case "searxng":
		return search.NewSearXNGProvider(search.SearXNGConfig{URL: sc.URL})
	case "", "memory":
		return search.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", sc.Provider)
	}
}

func buildEngine(cfg *config.AgentConfig, store transcript.Store, registry *memory.ToolRegistry) (reasoner.Engine, error) {
	switch cfg.Engine.Provider {
	case "scripted":
		return reasoner.NewScriptedEngine().
			WithAppender(store).
			OnExhausted(func(string) reasoner.ScriptStep {
				return reasoner.ActWith(control.TerminateTool, map[string]string{
					"status": control.StatusSuccess,
					"reason": "scripted run",
				})
			}), nil

	case "", "openai":
		provider := reasoner.NewOpenAIProvider(reasoner.OpenAIConfig{
			APIKey:  cfg.Engine.APIKey,
			BaseURL: cfg.Engine.BaseURL,
			Model:   cfg.Engine.Model,
			Timeout: cfg.Engine.Timeout.Duration(),
		})
		return reasoner.NewLLMEngine(reasoner.LLMEngineConfig{
			Provider:     resilience.NewResilientProvider(provider, resilience.ConfigFrom(cfg.Resilience)),
			Store:        store,
			Registry:     registry,
			Model:        cfg.Engine.Model,
			Temperature:  cfg.Engine.Temperature,
			MaxTokens:    cfg.Engine.MaxTokens,
			SystemPrompt: cfg.Agent.SystemPrompt,
		})

	default:
		return nil, fmt.Errorf("unsupported engine provider: %s", cfg.Engine.Provider)
	}
}

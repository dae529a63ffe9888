package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nudge"
	"github.com/felixgeelhaar/nudge/application"
	"github.com/felixgeelhaar/nudge/domain/agent"
	"github.com/felixgeelhaar/nudge/domain/config"
	infraconfig "github.com/felixgeelhaar/nudge/infrastructure/config"
	"github.com/felixgeelhaar/nudge/infrastructure/logging"
	"github.com/felixgeelhaar/nudge/infrastructure/telemetry"
)

// runOptions holds options for the run command.
type runOptions struct {
	configPath string
	goal       string
	maxSteps   int
	timeout    time.Duration
	verbose    bool
	jsonOutput bool
	trace      bool
}

// newRunCmd creates the run command.
func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [goal]",
		Short: "Run a task with the specified goal",
		Long: `Run a task using the provided configuration file and goal.

Each turn the instruction is adapted to the recent transcript. The task ends
when the terminate tool is called or the step budget is exhausted.

Examples:
  # Run with a config file and goal as argument
  nudge run -c config.yaml "Find the latest Go release notes"

  # Continue the stored conversation without a new goal
  nudge run -c config.yaml

  # Print spans for every turn to stderr
  nudge run -c config.yaml --trace "Summarize the page"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.goal = args[0]
			}
			return a.runTask(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 0, "Maximum turns (overrides config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Execution timeout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Export a trace span per turn to stderr")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// runTask executes a task with the given options.
func (a *App) runTask(ctx context.Context, opts *runOptions) error {
	cfg, err := infraconfig.NewLoader().LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.maxSteps > 0 {
		cfg.Agent.MaxSteps = opts.maxSteps
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: a.stderr,
	})

	if opts.trace {
		cfg.Telemetry.Exporter = "stdout"
	}
	shutdown, err := a.installTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to install tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	if opts.verbose {
		_, _ = fmt.Fprintf(a.stdout, "Configuration loaded: %s v%s\n", cfg.Name, cfg.Version)
		_, _ = fmt.Fprintf(a.stdout, "Engine: %s\n", cfg.Engine.Provider)
		_, _ = fmt.Fprintf(a.stdout, "Tools: %v\n", rt.registry.Names())
		_, _ = fmt.Fprintf(a.stdout, "Max steps: %d\n\n", cfg.Agent.MaxSteps)
	}

	result, runErr := rt.runner.Run(ctx, opts.goal)
	if runErr != nil && !errors.Is(runErr, agent.ErrMaxStepsExceeded) {
		return fmt.Errorf("run failed: %w", runErr)
	}

	if opts.jsonOutput {
		output := map[string]any{
			"run_id":   result.ID,
			"status":   string(result.Status),
			"goal":     result.Goal,
			"steps":    result.Steps,
			"duration": result.Duration.String(),
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	_, _ = fmt.Fprintf(a.stdout, "Run completed\n")
	_, _ = fmt.Fprintf(a.stdout, "  Run ID: %s\n", result.ID)
	_, _ = fmt.Fprintf(a.stdout, "  Steps: %d\n", result.Steps)
	_, _ = fmt.Fprintf(a.stdout, "  Duration: %s\n", result.Duration)

	switch result.Status {
	case application.RunStatusTerminated:
		_, _ = fmt.Fprintf(a.stdout, "  Status: SUCCESS\n")
	default:
		_, _ = fmt.Fprintf(a.stdout, "  Status: %s\n", result.Status)
	}
	return nil
}

// installTracing installs the configured span exporter. The returned
// function flushes and shuts it down.
func (a *App) installTracing(ctx context.Context, cfg *config.AgentConfig) (func(context.Context) error, error) {
	switch cfg.Telemetry.Exporter {
	case "stdout":
		return telemetry.InstallStdoutTracing(a.stderr)
	case "otlp":
		return telemetry.InstallOTLPTracing(ctx, telemetry.OTLPConfig{
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
			ServiceName:    cfg.Name,
			ServiceVersion: nudge.Version,
			SampleRate:     cfg.Telemetry.SampleRate,
		})
	default:
		return func(context.Context) error { return nil }, nil
	}
}

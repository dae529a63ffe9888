package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nudge/domain/config"
	infraconfig "github.com/felixgeelhaar/nudge/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	configPath string
	strict     bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a nudge configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Required fields (name, version)
  - Field types and constraints
  - Environment variable references (in strict mode)

Examples:
  nudge validate -c config.yaml
  nudge validate -c config.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")

	return cmd
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateOptions) error {
	if opts.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	loader := infraconfig.NewLoader(
		infraconfig.WithValidation(true),
		infraconfig.WithStrictEnv(opts.strict),
	)
	cfg, err := loader.LoadFile(opts.configPath)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				fmt.Fprintf(a.stderr, "  - %s\n", e.Error())
			}
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	fmt.Fprintf(a.stdout, "  Name: %s\n", cfg.Name)
	fmt.Fprintf(a.stdout, "  Version: %s\n", cfg.Version)
	if cfg.Description != "" {
		fmt.Fprintf(a.stdout, "  Description: %s\n", cfg.Description)
	}

	fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	fmt.Fprintf(a.stdout, "  Engine: %s\n", cfg.Engine.Provider)
	fmt.Fprintf(a.stdout, "  Storage: %s\n", cfg.Storage.Driver)
	fmt.Fprintf(a.stdout, "  Max steps: %d\n", cfg.Agent.MaxSteps)
	if cfg.Agent.StopAfterIdle > 0 {
		fmt.Fprintf(a.stdout, "  Stop after idle: %d\n", cfg.Agent.StopAfterIdle)
	}
	fmt.Fprintf(a.stdout, "  Browser tool: %s (match: %s)\n", cfg.Agent.BrowserTool, cfg.Agent.ActivityMatch)
	if len(cfg.Agent.Tools) > 0 {
		fmt.Fprintf(a.stdout, "  Tools: %d\n", len(cfg.Agent.Tools))
		for _, name := range cfg.Agent.Tools {
			fmt.Fprintf(a.stdout, "    - %s\n", name)
		}
	}
	if cfg.Resilience.Retry.Enabled {
		fmt.Fprintf(a.stdout, "  Retry: enabled (max attempts=%d)\n", cfg.Resilience.Retry.MaxAttempts)
	}
	if cfg.Resilience.CircuitBreaker.Enabled {
		fmt.Fprintf(a.stdout, "  Circuit breaker: enabled (threshold=%d)\n", cfg.Resilience.CircuitBreaker.Threshold)
	}
	if cfg.Telemetry.Exporter != "" && cfg.Telemetry.Exporter != "none" {
		fmt.Fprintf(a.stdout, "  Tracing: %s %s\n", cfg.Telemetry.Exporter, cfg.Telemetry.Endpoint)
	}

	return nil
}

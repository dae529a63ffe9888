// Package config loads nudge configuration from YAML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/nudge/domain/config"
)

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// Environment variables consulted after parsing. A set variable wins over the file.
const (
	EnvAPIKey   = "NUDGE_API_KEY"
	EnvBaseURL  = "NUDGE_BASE_URL"
	EnvModel    = "NUDGE_MODEL"
	EnvLogLevel = "NUDGE_LOG_LEVEL"
)

// Loader loads agent configuration from files.
type Loader struct {
	expandEnv   bool
	strictEnv   bool
	validate    bool
	envOverride bool
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables ${VAR} expansion in the raw document.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) { l.expandEnv = enabled }
}

// WithStrictEnv fails loading when a referenced variable is unset.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) { l.strictEnv = enabled }
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) { l.validate = enabled }
}

// WithEnvOverrides enables or disables NUDGE_* overrides.
func WithEnvOverrides(enabled bool) LoaderOption {
	return func(l *Loader) { l.envOverride = enabled }
}

// NewLoader creates a loader. Expansion, overrides and validation are on by default.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		expandEnv:   true,
		validate:    true,
		envOverride: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads configuration from a file path.
func (l *Loader) LoadFile(path string) (*config.AgentConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, ext)
	}
}

// Load parses, defaults and validates configuration from a reader.
func (l *Loader) Load(r io.Reader, format Format) (*config.AgentConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.expandEnv {
		expanded, err := expand(string(data), l.strictEnv)
		if err != nil {
			return nil, err
		}
		data = []byte(expanded)
	}

	cfg := &config.AgentConfig{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}

	if l.envOverride {
		applyEnvOverrides(cfg)
	}
	cfg.ApplyDefaults()

	if l.validate {
		if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
			return nil, fmt.Errorf("%w: %w", config.ErrValidationFailed, errs)
		}
	}

	return cfg, nil
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*config.AgentConfig, error) {
	return l.Load(strings.NewReader(content), format)
}

// Default returns a defaulted configuration without reading a file.
func Default() *config.AgentConfig {
	cfg := &config.AgentConfig{Name: "nudge", Version: "1"}
	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()
	return cfg
}

func applyEnvOverrides(cfg *config.AgentConfig) {
	if v, ok := os.LookupEnv(EnvAPIKey); ok && v != "" {
		cfg.Engine.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvBaseURL); ok && v != "" {
		cfg.Engine.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvModel); ok && v != "" {
		cfg.Engine.Model = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
}

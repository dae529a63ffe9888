package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/nudge/domain/config"
)

const sampleYAML = `
name: research
version: "1"
agent:
  lookback: 4
  browser_tool: browser_use
  activity_match: either
  stop_after_idle: 3
engine:
  provider: openai
  model: ${TEST_NUDGE_MODEL:-gpt-4o}
  timeout: 30s
storage:
  driver: sqlite
  dsn: file:nudge.db
`

func TestLoader_LoadString_YAML(t *testing.T) {
	cfg, err := NewLoader(WithEnvOverrides(false)).LoadString(sampleYAML, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Name != "research" {
		t.Errorf("Name = %s, want research", cfg.Name)
	}
	if cfg.Agent.Lookback != 4 {
		t.Errorf("Lookback = %d, want 4", cfg.Agent.Lookback)
	}
	if cfg.Engine.Model != "gpt-4o" {
		t.Errorf("Model = %s, want gpt-4o", cfg.Engine.Model)
	}
	if cfg.Engine.Timeout.Duration().Seconds() != 30 {
		t.Errorf("Timeout = %v, want 30s", cfg.Engine.Timeout.Duration())
	}
	if cfg.Agent.MaxSteps != config.DefaultMaxSteps {
		t.Errorf("MaxSteps = %d, want default %d", cfg.Agent.MaxSteps, config.DefaultMaxSteps)
	}
	if cfg.Agent.StopAfterIdle != 3 {
		t.Errorf("StopAfterIdle = %d, want 3", cfg.Agent.StopAfterIdle)
	}
}

func TestLoader_LoadString_JSON(t *testing.T) {
	t.Parallel()

	doc := `{"name":"x","version":"1","agent":{"max_steps":3},"storage":{"driver":"memory"}}`
	cfg, err := NewLoader(WithEnvOverrides(false)).LoadString(doc, FormatJSON)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Agent.MaxSteps != 3 {
		t.Errorf("MaxSteps = %d, want 3", cfg.Agent.MaxSteps)
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		format  Format
		wantErr error
	}{
		{"unknown field", "name: x\nversion: '1'\nbogus: true\n", FormatYAML, config.ErrInvalidFormat},
		{"validation", "name: x\nversion: '1'\nstorage:\n  driver: redis\n", FormatYAML, config.ErrValidationFailed},
		{"unsupported format", "{}", Format("toml"), config.ErrUnsupportedFormat},
		{"required env", "name: ${TEST_NUDGE_UNSET_VAR:?must be set}\nversion: '1'\n", FormatYAML, config.ErrMissingEnvVar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewLoader(WithEnvOverrides(false)).LoadString(tt.content, tt.format)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadString() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_ValidationErrorsUnwrap(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(WithEnvOverrides(false)).LoadString("name: x\n", FormatYAML)
	var verrs config.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want ValidationErrors", err)
	}
	if verrs[0].Path != "version" {
		t.Errorf("Path = %s, want version", verrs[0].Path)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path := filepath.Join(dir, "nudge.yaml")
	if err := os.WriteFile(path, []byte("name: file\nversion: '1'\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader(WithEnvOverrides(false)).LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Name != "file" {
		t.Errorf("Name = %s, want file", cfg.Name)
	}

	if _, err := NewLoader().LoadFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := NewLoader().LoadFile(dir); !errors.Is(err, config.ErrInvalidFormat) {
		t.Errorf("directory error = %v", err)
	}

	txt := filepath.Join(dir, "nudge.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader().LoadFile(txt); !errors.Is(err, config.ErrUnsupportedFormat) {
		t.Errorf("txt error = %v", err)
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv(EnvModel, "override-model")
	t.Setenv(EnvAPIKey, "sk-test")

	cfg, err := NewLoader().LoadString("name: x\nversion: '1'\nengine:\n  model: file-model\n", FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Engine.Model != "override-model" {
		t.Errorf("Model = %s, want override-model", cfg.Engine.Model)
	}
	if cfg.Engine.APIKey != "sk-test" {
		t.Errorf("APIKey = %s, want sk-test", cfg.Engine.APIKey)
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("TEST_NUDGE_SET", "value")

	tests := []struct {
		name    string
		input   string
		strict  bool
		want    string
		wantErr bool
	}{
		{"plain", "a=${TEST_NUDGE_SET}", false, "a=value", false},
		{"default used", "${TEST_NUDGE_NOPE:-fallback}", false, "fallback", false},
		{"default ignored", "${TEST_NUDGE_SET:-fallback}", false, "value", false},
		{"unset lenient", "[${TEST_NUDGE_NOPE}]", false, "[]", false},
		{"unset strict", "${TEST_NUDGE_NOPE}", true, "", true},
		{"required", "${TEST_NUDGE_NOPE:?needed}", false, "", true},
		{"no refs", "$HOME stays", false, "$HOME stays", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expand(tt.input, tt.strict)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expand() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := ExpandEnv("${TEST_NUDGE_SET}"); got != "value" {
		t.Errorf("ExpandEnv() = %q", got)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
		t.Errorf("Default() invalid: %v", errs)
	}
}

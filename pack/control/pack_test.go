package control_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/pack/control"
)

func TestNew(t *testing.T) {
	t.Parallel()

	p := control.New()
	tl, ok := p.GetTool(control.TerminateTool)
	if !ok {
		t.Fatal("terminate tool missing")
	}
	if !tl.Annotations().Terminal {
		t.Error("terminate should be terminal")
	}
	if !json.Valid(tl.Parameters()) {
		t.Error("parameters should be valid JSON")
	}
}

func TestTerminate(t *testing.T) {
	t.Parallel()

	tl, _ := control.New().GetTool(control.TerminateTool)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"success", `{"status":"success"}`, "The interaction has been completed with status: success", false},
		{"failure with reason", `{"status":"failure","reason":"blocked"}`, "The interaction has been completed with status: failure (blocked)", false},
		{"missing status", `{}`, "The interaction has been completed with status: success", false},
		{"empty input", ``, "The interaction has been completed with status: success", false},
		{"unknown status", `{"status":"maybe"}`, "", true},
		{"malformed", `{`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := tl.Execute(context.Background(), json.RawMessage(tt.input))
			if tt.wantErr {
				if !errors.Is(err, tool.ErrInvalidArguments) {
					t.Errorf("Execute() error = %v, want ErrInvalidArguments", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := result.Observation(0); got != tt.want {
				t.Errorf("Observation() = %q, want %q", got, tt.want)
			}
		})
	}
}

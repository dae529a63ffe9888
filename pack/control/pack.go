// Package control provides tools that steer the task itself.
package control

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/nudge/domain/pack"
	"github.com/felixgeelhaar/nudge/domain/tool"
)

// TerminateTool is the name of the tool that ends a task.
const TerminateTool = "terminate"

// Completion statuses accepted by the terminate tool.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

const terminateDescription = `Terminate the interaction when the request is met OR if the assistant cannot proceed further with the task.
When you have finished all the tasks, call this tool to end the work.`

var terminateParameters = json.RawMessage(`{
  "type": "object",
  "properties": {
    "status": {
      "type": "string",
      "description": "The finish status of the interaction.",
      "enum": ["success", "failure"]
    },
    "reason": {
      "type": "string",
      "description": "Why the interaction ends."
    }
  },
  "required": ["status"]
}`)

// New creates the control pack.
func New() *pack.Pack {
	return pack.NewBuilder("control").
		WithDescription("Task control tools").
		WithVersion("1.0.0").
		AddTools(terminateTool()).
		Build()
}

// terminateInput is the input for the terminate tool.
type terminateInput struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func terminateTool() tool.Tool {
	return tool.NewBuilder(TerminateTool).
		WithDescription(terminateDescription).
		WithParameters(terminateParameters).
		Terminal().
		WithHandler(func(_ context.Context, input json.RawMessage) (tool.Result, error) {
			var in terminateInput
			if len(input) > 0 {
				if err := json.Unmarshal(input, &in); err != nil {
					return tool.Result{}, fmt.Errorf("%w: %w", tool.ErrInvalidArguments, err)
				}
			}

			switch in.Status {
			case "":
				in.Status = StatusSuccess
			case StatusSuccess, StatusFailure:
			default:
				return tool.Result{}, fmt.Errorf("%w: unknown status %q", tool.ErrInvalidArguments, in.Status)
			}

			msg := "The interaction has been completed with status: " + in.Status
			if in.Reason != "" {
				msg += " (" + in.Reason + ")"
			}
			return tool.NewTextResult(msg), nil
		}).
		MustBuild()
}

package tool

import (
	"encoding/json"
	"time"
)

// Result contains the output of a tool execution.
type Result struct {
	// Output is the primary result data.
	Output json.RawMessage `json:"output"`

	// Duration is how long the execution took.
	Duration time.Duration `json:"duration"`

	// Error is a tool-level error (distinct from execution error).
	Error error `json:"-"`
}

// NewResult creates a successful result with the given output.
func NewResult(output json.RawMessage) Result {
	return Result{Output: output}
}

// NewTextResult creates a successful result from plain text.
func NewTextResult(text string) Result {
	out, _ := json.Marshal(text)
	return Result{Output: out}
}

// NewErrorResult creates a result representing an error.
func NewErrorResult(err error) Result {
	return Result{Error: err}
}

// IsError returns true if the result represents an error.
func (r Result) IsError() bool {
	return r.Error != nil
}

// Observation renders the result as transcript text, capped at max runes.
// A max of zero or less disables the cap.
func (r Result) Observation(max int) string {
	var text string
	switch {
	case r.Error != nil:
		text = "Error: " + r.Error.Error()
	default:
		var s string
		if err := json.Unmarshal(r.Output, &s); err == nil {
			text = s
		} else {
			text = string(r.Output)
		}
	}

	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

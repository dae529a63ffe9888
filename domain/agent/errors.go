package agent

import "errors"

// Domain errors for the control loop.
var (
	// ErrEngineFailure wraps any error returned by the reasoning engine.
	ErrEngineFailure = errors.New("reasoning engine failed")

	// ErrTranscriptUnavailable wraps failures to read the transcript.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrNilEngine indicates an agent was built without a reasoning engine.
	ErrNilEngine = errors.New("reasoning engine is required")

	// ErrNilTranscript indicates an agent was built without a transcript reader.
	ErrNilTranscript = errors.New("transcript reader is required")

	// ErrNilRegistry indicates an agent was built without a tool registry.
	ErrNilRegistry = errors.New("tool registry is required")

	// ErrMaxStepsExceeded indicates a task ran out of steps before terminating.
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

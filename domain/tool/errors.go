package tool

import "errors"

// Domain errors for the tool system.
var (
	// ErrEmptyName indicates a tool was created with an empty name.
	ErrEmptyName = errors.New("tool name cannot be empty")

	// ErrNoHandler indicates a tool was created without a handler.
	ErrNoHandler = errors.New("tool has no handler")

	// ErrInvalidParameters indicates the argument schema is not valid JSON.
	ErrInvalidParameters = errors.New("tool parameters must be valid JSON")

	// ErrToolNotFound indicates the requested tool was not found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolExists indicates a tool with the same name already exists.
	ErrToolExists = errors.New("tool already exists")

	// ErrInvalidArguments indicates the arguments could not be decoded.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

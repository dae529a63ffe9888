package transcript

import "errors"

// Domain errors for transcript storage.
var (
	// ErrInvalidRole indicates a turn was appended with an unknown role.
	ErrInvalidRole = errors.New("invalid turn role")

	// ErrEmptyToolCallName indicates a tool call without a tool name.
	ErrEmptyToolCallName = errors.New("tool call name cannot be empty")

	// ErrTurnExists indicates a turn with the same ID is already stored.
	ErrTurnExists = errors.New("turn already exists")
)

// Validate checks a turn before it is stored.
func Validate(t Turn) error {
	if !t.Role.IsValid() {
		return ErrInvalidRole
	}
	for _, c := range t.calls {
		if c.Name == "" {
			return ErrEmptyToolCallName
		}
	}
	return nil
}

package pack

import "errors"

// ErrInvalidPack is returned when a pack or its target registry is missing.
var ErrInvalidPack = errors.New("invalid pack")

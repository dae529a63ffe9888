package transcript

import "context"

// Reader is the read contract the control loop depends on.
// This is a repository interface - implementations are in infrastructure.
type Reader interface {
	// Recent returns the last n turns in transcript order, or every turn
	// when fewer than n exist. An empty transcript is not an error.
	Recent(ctx context.Context, n int) ([]Turn, error)
}

// Appender adds turns to the end of the transcript.
type Appender interface {
	// Append adds a turn after every existing turn.
	Append(ctx context.Context, turn Turn) error
}

// Store combines reading and appending.
type Store interface {
	Reader
	Appender

	// Len returns the number of stored turns.
	Len(ctx context.Context) (int, error)
}

// Tail returns the last n turns of the slice without copying.
// n <= 0 yields an empty slice.
func Tail(turns []Turn, n int) []Turn {
	if n <= 0 {
		return turns[:0]
	}
	if n >= len(turns) {
		return turns
	}
	return turns[len(turns)-n:]
}

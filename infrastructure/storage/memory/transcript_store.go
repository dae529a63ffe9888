package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// TranscriptStore is an in-memory implementation of transcript.Store.
type TranscriptStore struct {
	turns []transcript.Turn
	ids   map[string]struct{}
	mu    sync.RWMutex
}

// NewTranscriptStore creates a store seeded with the given turns.
// A seed turn whose ID repeats an earlier one is skipped.
func NewTranscriptStore(turns ...transcript.Turn) *TranscriptStore {
	s := &TranscriptStore{ids: make(map[string]struct{})}
	for _, t := range turns {
		if t.ID == "" {
			t = t.WithID(uuid.NewString())
		}
		if _, exists := s.ids[t.ID]; exists {
			continue
		}
		s.ids[t.ID] = struct{}{}
		s.turns = append(s.turns, t)
	}
	return s
}

// Append adds a turn at the end of the transcript.
func (s *TranscriptStore) Append(ctx context.Context, turn transcript.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := transcript.Validate(turn); err != nil {
		return err
	}
	if turn.ID == "" {
		turn = turn.WithID(uuid.NewString())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[turn.ID]; exists {
		return transcript.ErrTurnExists
	}
	s.ids[turn.ID] = struct{}{}
	s.turns = append(s.turns, turn)
	return nil
}

// Recent returns a copy of the last n turns.
func (s *TranscriptStore) Recent(ctx context.Context, n int) ([]transcript.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tail := transcript.Tail(s.turns, n)
	result := make([]transcript.Turn, len(tail))
	copy(result, tail)
	return result, nil
}

// Len returns the number of stored turns.
func (s *TranscriptStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns), nil
}

// Clear removes all turns.
func (s *TranscriptStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.ids = make(map[string]struct{})
}

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

func newTestStore(t *testing.T, opts ...Option) *TranscriptStore {
	t.Helper()
	s, err := NewTranscriptStore(DefaultConfig(), append([]Option{WithInMemory()}, opts...)...)
	if err != nil {
		t.Fatalf("NewTranscriptStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTranscriptStore_AppendRecent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		turn := transcript.NewPlain(transcript.RoleAssistant, fmt.Sprintf("turn %d", i))
		if i%2 == 1 {
			turn = transcript.NewActed("", transcript.ToolCall{ID: fmt.Sprintf("c%d", i), Name: "browser_use"})
		}
		if err := s.Append(ctx, turn); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	n, err := s.Len(ctx)
	if err != nil || n != 7 {
		t.Fatalf("Len() = %d, %v; want 7", n, err)
	}

	tests := []struct {
		n     int
		count int
		first string
	}{
		{3, 3, ""},
		{5, 5, "turn 2"},
		{10, 7, "turn 0"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("recent_%d", tt.n), func(t *testing.T) {
			turns, err := s.Recent(ctx, tt.n)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(turns) != tt.count {
				t.Fatalf("len = %d, want %d", len(turns), tt.count)
			}
			if tt.count > 0 && tt.first != "" && turns[0].Content != tt.first {
				t.Errorf("first = %q, want %q", turns[0].Content, tt.first)
			}
			if tt.count > 0 && turns[len(turns)-1].Content != "turn 6" {
				t.Errorf("last = %q, want turn 6", turns[len(turns)-1].Content)
			}
		})
	}
}

func TestTranscriptStore_EmptyConversation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	turns, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if turns == nil || len(turns) != 0 {
		t.Errorf("Recent() = %v, want empty non-nil slice", turns)
	}
}

func TestTranscriptStore_DuplicateID(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	turn := transcript.NewPlain(transcript.RoleUser, "goal").WithID("fixed")
	if err := s.Append(ctx, turn); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(ctx, turn); !errors.Is(err, transcript.ErrTurnExists) {
		t.Errorf("second Append() error = %v, want ErrTurnExists", err)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestTranscriptStore_ConversationsAreIsolated(t *testing.T) {
	t.Parallel()

	a := newTestStore(t, WithConversation("a"))
	b := NewTranscriptStoreFromDB(a.db, "", "b")
	ctx := context.Background()

	_ = a.Append(ctx, transcript.NewPlain(transcript.RoleUser, "for a"))
	_ = b.Append(ctx, transcript.NewPlain(transcript.RoleUser, "for b"))
	_ = b.Append(ctx, transcript.NewPlain(transcript.RoleAssistant, "reply b"))

	got, _ := a.Recent(ctx, 10)
	if len(got) != 1 || got[0].Content != "for a" {
		t.Errorf("conversation a = %+v", got)
	}
	if n, _ := b.Len(ctx); n != 2 {
		t.Errorf("conversation b Len() = %d, want 2", n)
	}
}

func TestTranscriptStore_SiblingConversationNames(t *testing.T) {
	t.Parallel()

	a := newTestStore(t, WithConversation("a"))
	ab := NewTranscriptStoreFromDB(a.db, "", "a:b")
	ctx := context.Background()

	if err := a.Append(ctx, transcript.NewPlain(transcript.RoleUser, "from a")); err != nil {
		t.Fatalf("Append(a) error = %v", err)
	}
	if err := ab.Append(ctx, transcript.NewPlain(transcript.RoleUser, "from a:b")); err != nil {
		t.Fatalf("Append(a:b) error = %v", err)
	}

	tests := []struct {
		name  string
		store *TranscriptStore
		want  string
	}{
		{"a", a, "from a"},
		{"a:b", ab, "from a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.store.Recent(ctx, 10)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(got) != 1 || got[0].Content != tt.want {
				t.Errorf("Recent() = %+v, want only %q", got, tt.want)
			}
			if n, _ := tt.store.Len(ctx); n != 1 {
				t.Errorf("Len() = %d, want 1", n)
			}
		})
	}

	shared := transcript.NewPlain(transcript.RoleUser, "same id").WithID("t-1")
	if err := a.Append(ctx, shared); err != nil {
		t.Fatalf("Append(a, t-1) error = %v", err)
	}
	if err := ab.Append(ctx, shared); err != nil {
		t.Errorf("Append(a:b, t-1) error = %v, ids are scoped per conversation", err)
	}
}

func TestTranscriptStore_PreservesToolCalls(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	acted := transcript.NewActed("clicking", transcript.ToolCall{ID: "c1", Name: "browser_use", Arguments: json.RawMessage(`{"action":"click"}`)})
	if err := s.Append(ctx, acted); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	turns, _ := s.Recent(ctx, 1)
	if len(turns) != 1 || !turns[0].Acted() {
		t.Fatalf("Recent() = %+v, want one acted turn", turns)
	}
	if names := turns[0].ToolNames(); len(names) != 1 || names[0] != "browser_use" {
		t.Errorf("ToolNames() = %v", names)
	}
}

func TestTranscriptStore_Guards(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Append(ctx, transcript.NewPlain(transcript.RoleUser, "x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Append(cancelled) error = %v", err)
	}
	if _, err := s.Recent(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Recent(cancelled) error = %v", err)
	}
	if err := s.Append(context.Background(), transcript.NewPlain("narrator", "x")); !errors.Is(err, transcript.ErrInvalidRole) {
		t.Errorf("Append(invalid role) error = %v", err)
	}
}

func TestTranscriptStore_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	s, err := NewTranscriptStore(DefaultConfig(), WithInMemory())
	if err != nil {
		t.Fatalf("NewTranscriptStore() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

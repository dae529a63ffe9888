package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// TranscriptStore is a SQLite-backed implementation of transcript.Store.
// Turns keep their insertion order through an autoincrement sequence.
type TranscriptStore struct {
	db           *sql.DB
	conversation string
}

// NewTranscriptStore creates a new SQLite transcript store.
func NewTranscriptStore(cfg Config, opts ...Option) (*TranscriptStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Conversation == "" {
		cfg.Conversation = "default"
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &TranscriptStore{db: db, conversation: cfg.Conversation}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewTranscriptStoreFromDB creates a store from an existing database connection.
func NewTranscriptStoreFromDB(db *sql.DB, conversation string) (*TranscriptStore, error) {
	if conversation == "" {
		conversation = "default"
	}
	s := &TranscriptStore{db: db, conversation: conversation}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TranscriptStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS turns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			conversation TEXT NOT NULL,
			role TEXT NOT NULL,
			acted INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation, seq);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// Append adds a turn at the end of the conversation.
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

	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	acted := 0
	if turn.Acted() {
		acted = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turns (id, conversation, role, acted, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.ID, s.conversation, string(turn.Role), acted, data, turn.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return transcript.ErrTurnExists
		}
		return err
	}
	return nil
}

// Recent returns the last n turns in transcript order.
func (s *TranscriptStore) Recent(ctx context.Context, n int) ([]transcript.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []transcript.Turn{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM (
			SELECT seq, data FROM turns WHERE conversation = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`,
		s.conversation, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]transcript.Turn, 0, n)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var t transcript.Turn
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Len returns the number of turns in the conversation.
func (s *TranscriptStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM turns WHERE conversation = ?",
		s.conversation,
	).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

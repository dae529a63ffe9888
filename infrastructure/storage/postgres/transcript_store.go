package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// TranscriptStore is a PostgreSQL-backed implementation of transcript.Store.
type TranscriptStore struct {
	pool         *pgxpool.Pool
	schema       string
	conversation string
}

// NewTranscriptStore connects, migrates and returns a store.
func NewTranscriptStore(ctx context.Context, cfg Config, opts ...ConfigOption) (*TranscriptStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := NewTranscriptStoreFromPool(pool, cfg.Schema, cfg.Conversation)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewTranscriptStoreFromPool creates a store on an existing pool without migrating.
func NewTranscriptStoreFromPool(pool *pgxpool.Pool, schema, conversation string) *TranscriptStore {
	if schema == "" {
		schema = "public"
	}
	if conversation == "" {
		conversation = "default"
	}
	return &TranscriptStore{pool: pool, schema: schema, conversation: conversation}
}

// tableName returns the fully qualified table name.
func (s *TranscriptStore) tableName() string {
	return fmt.Sprintf("%s.turns", s.schema)
}

// Migrate creates the turns table when missing.
func (s *TranscriptStore) Migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			conversation TEXT NOT NULL,
			role TEXT NOT NULL,
			acted BOOLEAN NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS turns_conversation_seq ON %[1]s (conversation, seq);
	`, s.tableName())

	if _, err := s.pool.Exec(ctx, schema); err != nil {
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

	query := fmt.Sprintf(`
		INSERT INTO %s (id, conversation, role, acted, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.tableName())

	_, err = s.pool.Exec(ctx, query,
		turn.ID, s.conversation, string(turn.Role), turn.Acted(), data, turn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return transcript.ErrTurnExists
		}
		return s.wrapError(err)
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

	query := fmt.Sprintf(`
		SELECT data FROM (
			SELECT seq, data FROM %s WHERE conversation = $1 ORDER BY seq DESC LIMIT $2
		) recent ORDER BY seq ASC
	`, s.tableName())

	rows, err := s.pool.Query(ctx, query, s.conversation, n)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	turns := make([]transcript.Turn, 0, n)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, s.wrapError(err)
		}
		var t transcript.Turn
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, s.wrapError(rows.Err())
}

// Len returns the number of turns in the conversation.
func (s *TranscriptStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE conversation = $1", s.tableName()),
		s.conversation,
	).Scan(&count)
	return count, s.wrapError(err)
}

// Close closes the connection pool.
func (s *TranscriptStore) Close() error {
	s.pool.Close()
	return nil
}

// wrapError tags connection-level failures.
func (s *TranscriptStore) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(ErrConnectionFailed, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

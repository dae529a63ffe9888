package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Host = %s, want localhost", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Port)
	}
	if cfg.Database != "nudge" {
		t.Errorf("Database = %s, want nudge", cfg.Database)
	}
	if cfg.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v, want 10s", cfg.ConnectTimeout)
	}
	if cfg.Schema != "public" {
		t.Errorf("Schema = %s, want public", cfg.Schema)
	}
	if cfg.Conversation != "default" {
		t.Errorf("Conversation = %s, want default", cfg.Conversation)
	}
}

func TestConfig_ConnectionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "default config",
			config:   DefaultConfig(),
			expected: "host=localhost port=5432 dbname=nudge user=postgres password= sslmode=disable",
		},
		{
			name: "custom fields",
			config: Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "turns",
				User:     "app",
				Password: "p@ss=word",
				SSLMode:  "require",
			},
			expected: "host=db.example.com port=5433 dbname=turns user=app password=p@ss=word sslmode=require",
		},
		{
			name:     "dsn wins",
			config:   Config{DSN: "postgres://u:p@db/nudge", Host: "ignored"},
			expected: "postgres://u:p@db/nudge",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.config.ConnectionString(); got != tt.expected {
				t.Errorf("ConnectionString() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestConfigOptions_Chaining(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for _, opt := range []ConfigOption{
		WithHost("db.example.com"),
		WithCredentials("admin", "secret"),
		WithPoolSize(2, 8),
		WithSchema("agents"),
		WithConversation("task-7"),
		WithDSN("postgres://db/nudge"),
	} {
		opt(&cfg)
	}

	if cfg.Host != "db.example.com" || cfg.User != "admin" || cfg.Password != "secret" {
		t.Errorf("connection fields = %+v", cfg)
	}
	if cfg.MinConns != 2 || cfg.MaxConns != 8 {
		t.Errorf("pool = %d/%d, want 2/8", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.Schema != "agents" || cfg.Conversation != "task-7" {
		t.Errorf("schema/conversation = %s/%s", cfg.Schema, cfg.Conversation)
	}
	if cfg.ConnectionString() != "postgres://db/nudge" {
		t.Errorf("ConnectionString() = %s", cfg.ConnectionString())
	}
}

func TestNewPool_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := NewPool(context.Background(), Config{DSN: "postgres://%zz"})
	if err == nil {
		t.Error("NewPool() should reject an unparsable DSN")
	}
}

func TestNewTranscriptStoreFromPool_Defaults(t *testing.T) {
	t.Parallel()

	s := NewTranscriptStoreFromPool(nil, "", "")
	if s.tableName() != "public.turns" {
		t.Errorf("tableName() = %s, want public.turns", s.tableName())
	}
	if s.conversation != "default" {
		t.Errorf("conversation = %s, want default", s.conversation)
	}
}

func TestTranscriptStore_GuardsBeforeNetwork(t *testing.T) {
	t.Parallel()

	s := NewTranscriptStoreFromPool(nil, "app", "c1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Append(ctx, transcript.NewPlain(transcript.RoleUser, "hi")); !errors.Is(err, context.Canceled) {
		t.Errorf("Append(cancelled) error = %v, want context.Canceled", err)
	}
	if _, err := s.Len(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Len(cancelled) error = %v, want context.Canceled", err)
	}
	if err := s.Append(context.Background(), transcript.NewPlain("narrator", "x")); !errors.Is(err, transcript.ErrInvalidRole) {
		t.Errorf("Append(invalid role) error = %v, want ErrInvalidRole", err)
	}

	turns, err := s.Recent(context.Background(), 0)
	if err != nil || len(turns) != 0 {
		t.Errorf("Recent(0) = %v, %v; want empty", turns, err)
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	s := NewTranscriptStoreFromPool(nil, "", "")

	if s.wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}
	if err := s.wrapError(context.DeadlineExceeded); errors.Is(err, ErrConnectionFailed) {
		t.Error("deadline errors should not be tagged as connection failures")
	}
	if err := s.wrapError(errors.New("dial tcp: refused")); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("wrapError() = %v, want ErrConnectionFailed", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: uniqueViolation}
	if !isUniqueViolation(fmt.Errorf("insert: %w", dup)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "42P01"}) {
		t.Error("42P01 is not a unique violation")
	}
	if isUniqueViolation(errors.New("duplicate key")) {
		t.Error("plain errors are not unique violations")
	}
}

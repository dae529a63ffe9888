package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// ErrConnectionFailed indicates the Redis server could not be reached.
var ErrConnectionFailed = errors.New("redis: connection failed")

// TranscriptStore is a Redis-backed implementation of transcript.Store.
// Each conversation is one list of JSON-encoded turns.
type TranscriptStore struct {
	client *redis.Client
	key    string
}

// NewTranscriptStore creates a store and verifies the connection.
func NewTranscriptStore(cfg Config, opts ...ConfigOption) (*TranscriptStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return NewTranscriptStoreFromClient(client, cfg.KeyPrefix, cfg.Conversation), nil
}

// NewTranscriptStoreFromClient creates a store from an existing Redis client.
func NewTranscriptStoreFromClient(client *redis.Client, keyPrefix, conversation string) *TranscriptStore {
	return &TranscriptStore{
		client: client,
		key:    transcriptKey(keyPrefix, conversation),
	}
}

func transcriptKey(prefix, conversation string) string {
	if conversation == "" {
		conversation = "default"
	}
	return prefix + "transcript:" + conversation
}

// Append pushes a turn onto the conversation list.
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
	return s.client.RPush(ctx, s.key, data).Err()
}

// Recent returns the last n turns in transcript order.
func (s *TranscriptStore) Recent(ctx context.Context, n int) ([]transcript.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []transcript.Turn{}, nil
	}

	raw, err := s.client.LRange(ctx, s.key, int64(-n), -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []transcript.Turn{}, nil
		}
		return nil, err
	}
	return decodeTurns(raw)
}

// Len returns the number of turns in the conversation.
func (s *TranscriptStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.client.LLen(ctx, s.key).Result()
	return int(n), err
}

// Clear deletes the conversation.
func (s *TranscriptStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close closes the Redis client.
func (s *TranscriptStore) Close() error {
	return s.client.Close()
}

func decodeTurns(raw []string) ([]transcript.Turn, error) {
	turns := make([]transcript.Turn, 0, len(raw))
	for _, item := range raw {
		var t transcript.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, nil
}

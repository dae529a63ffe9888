package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/logging"
)

// TranscriptStore is a BadgerDB-backed implementation of transcript.Store.
//
// Key layout, where <conv> is the conversation name preceded by its
// length as 4 bytes big-endian so no conversation is a prefix of another:
//
//	prefix transcript:<conv><seq, 8 bytes big-endian>  turn JSON
//	prefix seq:<conv>                                   last seq
//	prefix id:<conv><turn id>                           seq
type TranscriptStore struct {
	db           *badger.DB
	keyPrefix    string
	conversation string
	owned        bool
	gcStop       chan struct{}
	gcWg         sync.WaitGroup
	closeOnce    sync.Once
}

// NewTranscriptStore opens a database and returns a store on it.
func NewTranscriptStore(cfg Config, opts ...Option) (*TranscriptStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := NewTranscriptStoreFromDB(db, cfg.KeyPrefix, cfg.Conversation)
	s.owned = true
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.startGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// NewTranscriptStoreFromDB creates a store on an existing database.
// Close does not close a database it did not open.
func NewTranscriptStoreFromDB(db *badger.DB, keyPrefix, conversation string) *TranscriptStore {
	if conversation == "" {
		conversation = "default"
	}
	return &TranscriptStore{
		db:           db,
		keyPrefix:    keyPrefix,
		conversation: conversation,
		gcStop:       make(chan struct{}),
	}
}

func (s *TranscriptStore) startGC(interval time.Duration, ratio float64) {
	s.gcWg.Add(1)
	go func() {
		defer s.gcWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.gcStop:
				return
			case <-ticker.C:
				if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					logging.Warn().
						Add(logging.Component("badger")).
						Add(logging.ErrorField(err)).
						Msg("value log gc failed")
				}
			}
		}
	}()
}

// conversationKey returns prefix+kind followed by the length-prefixed conversation.
func (s *TranscriptStore) conversationKey(kind string) []byte {
	key := []byte(s.keyPrefix + kind)
	key = binary.BigEndian.AppendUint32(key, uint32(len(s.conversation)))
	return append(key, s.conversation...)
}

func (s *TranscriptStore) turnPrefix() []byte {
	return s.conversationKey("transcript:")
}

func (s *TranscriptStore) turnKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(s.turnPrefix(), seq)
}

func (s *TranscriptStore) seqKey() []byte {
	return s.conversationKey("seq:")
}

func (s *TranscriptStore) idKey(id string) []byte {
	return append(s.conversationKey("id:"), id...)
}

func readSeq(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) == 8 {
			seq = binary.BigEndian.Uint64(val)
		}
		return nil
	})
	return seq, err
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

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(s.idKey(turn.ID)); err == nil {
			return transcript.ErrTurnExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		seq, err := readSeq(txn, s.seqKey())
		if err != nil {
			return err
		}
		seq++

		seqBytes := binary.BigEndian.AppendUint64(nil, seq)
		if err := txn.Set(s.turnKey(seq), data); err != nil {
			return err
		}
		if err := txn.Set(s.idKey(turn.ID), seqBytes); err != nil {
			return err
		}
		return txn.Set(s.seqKey(), seqBytes)
	})
}

// Recent returns the last n turns in transcript order.
func (s *TranscriptStore) Recent(ctx context.Context, n int) ([]transcript.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []transcript.Turn{}, nil
	}

	var turns []transcript.Turn
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := s.turnPrefix()
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks from the largest possible key in the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(turns) < n; it.Next() {
			var t transcript.Turn
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			}); err != nil {
				return err
			}
			turns = append(turns, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	if turns == nil {
		turns = []transcript.Turn{}
	}
	return turns, nil
}

// Len returns the number of turns in the conversation.
func (s *TranscriptStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var seq uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		seq, err = readSeq(txn, s.seqKey())
		return err
	})
	return int(seq), err
}

// Close stops GC and closes the database if the store opened it.
func (s *TranscriptStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.gcStop)
		s.gcWg.Wait()
		if s.owned {
			err = s.db.Close()
		}
	})
	return err
}

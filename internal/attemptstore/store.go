// Package attemptstore keeps the append-only log of finalized attempts.
package attemptstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
)

// maxAppendRetries bounds optimistic transaction retries under contention.
const maxAppendRetries = 10

// ErrConflict is returned when concurrent writers exhaust the retry budget.
var ErrConflict = errors.New("attempt log modified concurrently")

// PersistenceError reports that the durable medium could not be read or written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("attempt store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the append-only attempt log.
type Store interface {
	Append(ctx context.Context, record model.AttemptRecord) error
	ListAll(ctx context.Context) ([]model.AttemptRecord, error)
	FindByEmail(ctx context.Context, email string) ([]model.AttemptRecord, error)
}

// RedisStore keeps every record in one JSON array under a fixed key.
type RedisStore struct {
	rdb   *redis.Client
	key   string
	queue string
	log   zerolog.Logger
}

// NewRedisStore creates a store on the configured attempt log key.
func NewRedisStore(rdb *redis.Client, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		rdb:   rdb,
		key:   config.CacheKey.AttemptLog,
		queue: config.WorkerKey.PersistAttemptsQueue,
		log:   log.With().Str("component", "attempt_store").Logger(),
	}
}

// Append adds the record at the end of the log. Concurrent appends are
// serialized with WATCH/MULTI so none is lost.
func (s *RedisStore) Append(ctx context.Context, record model.AttemptRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}

	txf := func(tx *redis.Tx) error {
		list, err := s.readRaw(ctx, tx)
		if err != nil {
			return err
		}
		list = append(list, payload)

		encoded, err := json.Marshal(list)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, encoded, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxAppendRetries; i++ {
		err = s.rdb.Watch(ctx, txf, s.key)
		if err == nil {
			s.enqueueArchive(ctx, payload)
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return &PersistenceError{Op: "append", Err: err}
	}
	return &PersistenceError{Op: "append", Err: ErrConflict}
}

// ListAll returns every record in completion order.
func (s *RedisStore) ListAll(ctx context.Context) ([]model.AttemptRecord, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.AttemptRecord{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}

	var records []model.AttemptRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	if records == nil {
		records = []model.AttemptRecord{}
	}
	return records, nil
}

// FindByEmail returns the candidate's records in completion order.
// Addresses are compared case-insensitively after trimming.
func (s *RedisStore) FindByEmail(ctx context.Context, email string) ([]model.AttemptRecord, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByEmail(all, email), nil
}

// FilterByEmail keeps the records belonging to email, preserving order.
func FilterByEmail(records []model.AttemptRecord, email string) []model.AttemptRecord {
	want := strings.ToLower(strings.TrimSpace(email))
	out := make([]model.AttemptRecord, 0)
	for _, r := range records {
		if strings.ToLower(strings.TrimSpace(r.Email)) == want {
			out = append(out, r)
		}
	}
	return out
}

func (s *RedisStore) readRaw(ctx context.Context, tx *redis.Tx) ([]json.RawMessage, error) {
	raw, err := tx.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode attempt log: %w", err)
	}
	return list, nil
}

// enqueueArchive hands the record to the archive worker. The log already
// holds it, so a failure here is only logged.
func (s *RedisStore) enqueueArchive(ctx context.Context, payload []byte) {
	if err := s.rdb.RPush(ctx, s.queue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to queue attempt for archive")
	}
}

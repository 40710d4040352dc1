package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
)

const (
	ArchiveBatchSize    = 50
	ArchiveBatchTimeout = 2 * time.Second
	ArchivePollTimeout  = 1 * time.Second
)

// AttemptArchive is the PostgreSQL side of the attempt log.
type AttemptArchive interface {
	BulkInsert(ctx context.Context, batch []model.AttemptRecord) error
	Insert(ctx context.Context, rec model.AttemptRecord) error
}

// AttemptArchiveWorker copies finalized attempts from the Redis queue into
// PostgreSQL so dashboards keep their history when the log is flushed.
type AttemptArchiveWorker struct {
	archive AttemptArchive
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewAttemptArchiveWorker(archive AttemptArchive, rdb *redis.Client, log zerolog.Logger) *AttemptArchiveWorker {
	return &AttemptArchiveWorker{
		archive: archive,
		rdb:     rdb,
		log:     log.With().Str("component", "attempt_archive_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled. Call in a goroutine.
func (w *AttemptArchiveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptArchiveWorker started")

	batch := make([]model.AttemptRecord, 0, ArchiveBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ArchiveBatchSize || time.Since(lastFlush) >= ArchiveBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, ArchivePollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(ArchivePollTimeout)
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.AttemptRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper
// ----------------------------------------------------------------

// flushSafe archives a batch, falling back to one insert per record.
// Records that still fail go back on the queue.
func (w *AttemptArchiveWorker) flushSafe(ctx context.Context, batch []model.AttemptRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.archive.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Archived attempts")
		return
	}
	w.log.Warn().Err(err).Msg("bulk archive failed, using fallback")

	for _, rec := range batch {
		if err := w.archive.Insert(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("email", rec.Email).Msg("single archive failed, requeueing")
			w.requeue(ctx, rec)
		}
	}
}

func (w *AttemptArchiveWorker) requeue(ctx context.Context, rec model.AttemptRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		w.log.Error().Err(err).Msg("Requeue marshal error")
		return
	}
	if err := w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("email", rec.Email).Msg("Requeue failed, attempt stays in the live log only")
	}
}

// drain archives whatever is left on the queue before shutdown.
func (w *AttemptArchiveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAttemptsQueue).Result()
		if err != nil {
			break
		}

		var rec model.AttemptRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.archive.Insert(ctx, rec); err != nil {
			w.log.Error().Err(err).Msg("Drain insert error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining attempts")
	}
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/mail"
)

const (
	MailPollTimeout  = 1 * time.Second
	MailMaxAttempts  = 5
	MailRetryBackoff = 30 * time.Second
	// mailIdleWait throttles the loop while only delayed messages are queued.
	mailIdleWait = 500 * time.Millisecond
)

// MailWorker consumes the mail queue and hands messages to a Sender.
// Delayed messages are rotated to the back of the queue until due.
type MailWorker struct {
	sender mail.Sender
	rdb    *redis.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewMailWorker creates a new MailWorker.
func NewMailWorker(sender mail.Sender, rdb *redis.Client, log zerolog.Logger) *MailWorker {
	return &MailWorker{
		sender: sender,
		rdb:    rdb,
		log:    log.With().Str("component", "mail_worker").Logger(),
		now:    time.Now,
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logBacklog()
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *MailWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, MailPollTimeout, config.WorkerKey.MailQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(MailPollTimeout)
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var msg mail.Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping message")
		return
	}

	if !msg.Due(w.now()) {
		w.requeue(&msg)
		time.Sleep(mailIdleWait)
		return
	}

	w.deliver(ctx, &msg)
}

// deliver sends one message and schedules a retry on failure.
func (w *MailWorker) deliver(ctx context.Context, msg *mail.Message) {
	err := w.sender.Send(ctx, msg)
	if err == nil {
		w.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("Mail sent")
		return
	}

	msg.Attempts++
	logEvt := w.log.With().Err(err).Strs("to", msg.To).Str("subject", msg.Subject).Int("attempts", msg.Attempts).Logger()

	if errors.Is(err, mail.ErrNoRecipients) || msg.Attempts >= MailMaxAttempts {
		logEvt.Error().Msg("Mail dropped")
		return
	}

	msg.NotBefore = w.now().Add(time.Duration(msg.Attempts) * MailRetryBackoff)
	logEvt.Warn().Time("retry_at", msg.NotBefore).Msg("Send failed, retrying later")
	w.requeue(msg)
}

// requeue pushes msg to the back of the queue. It uses a fresh context so
// a message popped just before shutdown is not lost.
func (w *MailWorker) requeue(msg *mail.Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		w.log.Error().Err(err).Msg("Requeue marshal error")
		return
	}
	if err := w.rdb.RPush(context.Background(), config.WorkerKey.MailQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Strs("to", msg.To).Msg("Requeue failed, message lost")
	}
}

// logBacklog reports messages left for the next start. The queue lives in
// Redis, so nothing is flushed here.
func (w *MailWorker) logBacklog() {
	n, err := w.rdb.LLen(context.Background(), config.WorkerKey.MailQueue).Result()
	if err == nil && n > 0 {
		w.log.Info().Int64("pending", n).Msg("Mail left in queue")
	}
}

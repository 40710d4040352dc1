package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/mail"
	"github.com/evpower/recruit-backend/internal/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// ─── Attempt archive ────────────────────────────────────────────────

type fakeArchive struct {
	mu       sync.Mutex
	bulkErr  error
	failFor  map[string]bool
	archived []model.AttemptRecord
}

func (f *fakeArchive) BulkInsert(_ context.Context, batch []model.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.archived = append(f.archived, batch...)
	return nil
}

func (f *fakeArchive) Insert(_ context.Context, rec model.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[rec.Email] {
		return errors.New("insert failed")
	}
	f.archived = append(f.archived, rec)
	return nil
}

func (f *fakeArchive) emails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.archived))
	for i, r := range f.archived {
		out[i] = r.Email
	}
	return out
}

func pushAttempt(t *testing.T, mr *miniredis.Miniredis, email string) {
	t.Helper()
	raw, err := json.Marshal(model.AttemptRecord{Email: email, TestDate: time.Now().UTC(), Score: 1, TotalQuestions: 2, Percentage: 50})
	require.NoError(t, err)
	_, err = mr.RPush(config.WorkerKey.PersistAttemptsQueue, string(raw))
	require.NoError(t, err)
}

func TestAttemptArchiveWorker_FallbackRequeuesFailures(t *testing.T) {
	mr, rdb := newTestRedis(t)
	archive := &fakeArchive{bulkErr: errors.New("bulk failed"), failFor: map[string]bool{"bad@example.com": true}}
	w := NewAttemptArchiveWorker(archive, rdb, zerolog.Nop())

	w.flushSafe(context.Background(), []model.AttemptRecord{
		{Email: "good@example.com"},
		{Email: "bad@example.com"},
	})

	assert.Equal(t, []string{"good@example.com"}, archive.emails())

	left, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	require.Len(t, left, 1)
	var rec model.AttemptRecord
	require.NoError(t, json.Unmarshal([]byte(left[0]), &rec))
	assert.Equal(t, "bad@example.com", rec.Email)
}

func TestAttemptArchiveWorker_ArchivesAndDrainsOnShutdown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	archive := &fakeArchive{}
	w := NewAttemptArchiveWorker(archive, rdb, zerolog.Nop())

	pushAttempt(t, mr, "a@example.com")
	pushAttempt(t, mr, "b@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(archive.emails()) == 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	pushAttempt(t, mr, "late@example.com")
	w.drain(context.Background())
	assert.Equal(t, []string{"a@example.com", "b@example.com", "late@example.com"}, archive.emails())
	assert.False(t, mr.Exists(config.WorkerKey.PersistAttemptsQueue))
}

// ─── Mail ───────────────────────────────────────────────────────────

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []*mail.Message
}

func (f *fakeSender) Send(_ context.Context, m *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func queuedMail(t *testing.T, mr *miniredis.Miniredis) []mail.Message {
	t.Helper()
	if !mr.Exists(config.WorkerKey.MailQueue) {
		return nil
	}
	raw, err := mr.List(config.WorkerKey.MailQueue)
	require.NoError(t, err)
	out := make([]mail.Message, len(raw))
	for i, r := range raw {
		require.NoError(t, json.Unmarshal([]byte(r), &out[i]))
	}
	return out
}

func TestMailWorker_SendsDueMessage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	sender := &fakeSender{}
	w := NewMailWorker(sender, rdb, zerolog.Nop())

	require.NoError(t, mail.NewQueue(rdb).Enqueue(context.Background(), &mail.Message{To: []string{"a@example.com"}, Subject: "Hi"}))

	w.processNext(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Hi", sender.sent[0].Subject)
	assert.Empty(t, queuedMail(t, mr))
}

func TestMailWorker_DefersMessageNotYetDue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	sender := &fakeSender{}
	w := NewMailWorker(sender, rdb, zerolog.Nop())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	require.NoError(t, mail.NewQueue(rdb).Enqueue(context.Background(), &mail.Message{
		To: []string{"a@example.com"}, Subject: "Invite", NotBefore: now.Add(2 * time.Minute),
	}))

	w.processNext(context.Background())
	assert.Empty(t, sender.sent)
	require.Len(t, queuedMail(t, mr), 1)

	now = now.Add(3 * time.Minute)
	w.processNext(context.Background())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Invite", sender.sent[0].Subject)
}

func TestMailWorker_RetriesThenDrops(t *testing.T) {
	mr, rdb := newTestRedis(t)
	sender := &fakeSender{err: errors.New("smtp down")}
	w := NewMailWorker(sender, rdb, zerolog.Nop())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	w.deliver(context.Background(), &mail.Message{To: []string{"a@example.com"}, Subject: "Hi"})

	queued := queuedMail(t, mr)
	require.Len(t, queued, 1)
	assert.Equal(t, 1, queued[0].Attempts)
	assert.True(t, now.Add(MailRetryBackoff).Equal(queued[0].NotBefore))

	mr.Del(config.WorkerKey.MailQueue)
	w.deliver(context.Background(), &mail.Message{To: []string{"a@example.com"}, Subject: "Hi", Attempts: MailMaxAttempts - 1})
	assert.Empty(t, queuedMail(t, mr), "last attempt is not requeued")
}

func TestMailWorker_DropsMessageWithoutRecipients(t *testing.T) {
	mr, rdb := newTestRedis(t)
	w := NewMailWorker(&fakeSender{err: mail.ErrNoRecipients}, rdb, zerolog.Nop())

	w.deliver(context.Background(), &mail.Message{Subject: "Hi"})
	assert.Empty(t, queuedMail(t, mr))
}

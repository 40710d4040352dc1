package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/model"
)

type harness struct {
	clock     *fakeClock
	loader    *staticLoader
	store     *memRecorder
	session   *Session
	ticks     chan int
	finalized chan Result
}

func newHarness(t *testing.T, limit time.Duration) *harness {
	t.Helper()
	h := &harness{
		clock:     newFakeClock(),
		loader:    &staticLoader{questions: sampleQuestions()},
		store:     &memRecorder{},
		ticks:     make(chan int, 128),
		finalized: make(chan Result, 4),
	}
	sess, err := NewSession("asha@example.com", h.loader, h.store,
		WithClock(h.clock),
		WithTimeLimit(limit),
		WithTickHandler(func(r int) { h.ticks <- r }),
		WithFinalizeHandler(func(r Result) { h.finalized <- r }),
	)
	require.NoError(t, err)
	h.session = sess
	return h
}

func (h *harness) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		h.clock.advance()
		select {
		case <-h.ticks:
		case <-time.After(time.Second):
			t.Fatal("tick was not processed")
		}
	}
}

func (h *harness) waitFinalized(t *testing.T) Result {
	t.Helper()
	select {
	case r := <-h.finalized:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finalize")
		return Result{}
	}
}

func TestNewSession_Validation(t *testing.T) {
	_, err := NewSession("", &staticLoader{}, &memRecorder{})
	assert.ErrorIs(t, err, ErrCandidateRequired)

	_, err = NewSession("a@b.co", &staticLoader{}, &memRecorder{}, WithTimeLimit(0))
	assert.ErrorIs(t, err, ErrInvalidTimeLimit)
}

func TestSession_StartAndSubmit(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, h.session.Start(ctx))
	assert.Equal(t, StateInProgress, h.session.State())
	assert.Equal(t, 60, h.session.Remaining())

	require.NoError(t, h.session.Select("q1", 1))
	require.NoError(t, h.session.Select("q2", 0))
	require.NoError(t, h.session.Select("q3", 2))

	h.tick(t, 10)
	assert.Equal(t, 50, h.session.Remaining())

	res, err := h.session.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, res.Persisted())

	rec := res.Record
	assert.Equal(t, "asha@example.com", rec.Email)
	assert.Equal(t, 2, rec.Score)
	assert.Equal(t, 3, rec.TotalQuestions)
	assert.Equal(t, 67, rec.Percentage)
	assert.Equal(t, 10, rec.TimeSpent)
	assert.Equal(t, model.AttemptOutcomeSubmitted, rec.Outcome)
	assert.Equal(t, h.clock.Now(), rec.TestDate)
	assert.Equal(t, StateFinalized, h.session.State())

	stored := h.store.all()
	require.Len(t, stored, 1)
	assert.Equal(t, rec, stored[0])

	got := h.waitFinalized(t)
	assert.Equal(t, rec, got.Record)

	ctxWait, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, h.session.Wait(ctxWait))
	assert.True(t, h.clock.last().isStopped())
}

func TestSession_TimeoutFinalizesExactlyOnce(t *testing.T) {
	h := newHarness(t, 3*time.Second)
	ctx := context.Background()

	require.NoError(t, h.session.Start(ctx))
	require.NoError(t, h.session.Select("q1", 1))

	h.tick(t, 2)
	h.clock.advance()

	res := h.waitFinalized(t)
	assert.Equal(t, model.AttemptOutcomeTimedOut, res.Record.Outcome)
	assert.Equal(t, 3, res.Record.TimeSpent)
	assert.Equal(t, 1, res.Record.Score)
	assert.Equal(t, 33, res.Record.Percentage)
	assert.Equal(t, 0, h.session.Remaining())

	_, err := h.session.Submit(ctx)
	assert.ErrorIs(t, err, ErrSessionFinalized)

	assert.Len(t, h.store.all(), 1)
}

func TestSession_TimeoutWithNoAnswers(t *testing.T) {
	h := newHarness(t, 3*time.Second)
	ctx := context.Background()

	require.NoError(t, h.session.Start(ctx))
	h.tick(t, 2)
	h.clock.advance()

	res := h.waitFinalized(t)
	rec := res.Record
	assert.Equal(t, model.AttemptOutcomeTimedOut, rec.Outcome)
	assert.Equal(t, 0, rec.Score)
	assert.Equal(t, 3, rec.TotalQuestions)
	assert.Equal(t, 0, rec.Percentage)
	assert.Equal(t, 3, rec.TimeSpent)
	assert.Empty(t, rec.SelectedAnswers)
	assert.True(t, res.Persisted())

	stored := h.store.all()
	require.Len(t, stored, 1)
	assert.Equal(t, rec, stored[0])
}

func TestSession_SelectionOverwrites(t *testing.T) {
	h := newHarness(t, time.Minute)
	require.NoError(t, h.session.Start(context.Background()))

	require.NoError(t, h.session.Select("q1", 0))
	require.NoError(t, h.session.Select("q1", 2))
	require.NoError(t, h.session.Select("q1", 1))

	assert.Equal(t, model.AnswerSelection{"q1": 1}, h.session.Answers())

	res, err := h.session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.SelectedAnswers["q1"])
	assert.Equal(t, 1, res.Record.Score)
}

func TestSession_SelectRejections(t *testing.T) {
	h := newHarness(t, time.Minute)

	assert.ErrorIs(t, h.session.Select("q1", 0), ErrNotStarted)

	require.NoError(t, h.session.Start(context.Background()))
	assert.ErrorIs(t, h.session.Select("missing", 0), ErrUnknownQuestion)
	assert.ErrorIs(t, h.session.Select("q2", 2), ErrOptionOutOfRange)
	assert.ErrorIs(t, h.session.Select("q2", -1), ErrOptionOutOfRange)

	res, err := h.session.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, h.session.Select("q1", 1), ErrSessionFinalized)
	final, ok := h.session.Result()
	require.True(t, ok)
	assert.Equal(t, res.Record.SelectedAnswers, final.Record.SelectedAnswers)
	assert.Empty(t, final.Record.SelectedAnswers)
}

func TestSession_RecordIsIsolatedFromCallers(t *testing.T) {
	h := newHarness(t, time.Minute)
	require.NoError(t, h.session.Start(context.Background()))
	require.NoError(t, h.session.Select("q1", 1))

	res, err := h.session.Submit(context.Background())
	require.NoError(t, err)

	res.Record.SelectedAnswers["q1"] = 0
	res.Record.Questions[0].Options[0] = "tampered"

	again, ok := h.session.Result()
	require.True(t, ok)
	assert.Equal(t, 1, again.Record.SelectedAnswers["q1"])
	assert.Equal(t, "3", again.Record.Questions[0].Options[0])
}

func TestSession_LoadErrorKeepsNotStarted(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.loader.err = errors.New("bank unavailable")

	err := h.session.Start(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, StateNotStarted, h.session.State())
	assert.Nil(t, h.clock.last())

	h.loader.err = nil
	require.NoError(t, h.session.Start(context.Background()))
	assert.Equal(t, StateInProgress, h.session.State())
	assert.Equal(t, 2, h.loader.calls)
}

func TestSession_EmptyQuestionSetIsLoadError(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.loader.questions = nil

	err := h.session.Start(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, StateNotStarted, h.session.State())
}

func TestSession_InvalidQuestionIsLoadError(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.loader.questions = []model.Question{{ID: "bad", Options: []string{"a"}, CorrectOptionIndex: 3}}

	err := h.session.Start(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidQuestion)
	assert.Equal(t, StateNotStarted, h.session.State())
}

func TestSession_StartTwice(t *testing.T) {
	h := newHarness(t, time.Minute)
	require.NoError(t, h.session.Start(context.Background()))
	assert.ErrorIs(t, h.session.Start(context.Background()), ErrAlreadyStarted)
	assert.Equal(t, 1, h.loader.calls)
}

func TestSession_PersistenceFailureStillReturnsRecord(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.store.err = errStoreDown
	require.NoError(t, h.session.Start(context.Background()))
	require.NoError(t, h.session.Select("q2", 0))

	res, err := h.session.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Persisted())

	var pe *attemptstore.PersistenceError
	require.ErrorAs(t, res.PersistErr, &pe)
	assert.ErrorIs(t, res.PersistErr, errStoreDown)

	assert.Equal(t, 1, res.Record.Score)
	assert.Equal(t, StateFinalized, h.session.State())
	assert.Empty(t, h.store.all())
}

func TestSession_AbandonRecordsNothing(t *testing.T) {
	h := newHarness(t, time.Minute)
	require.NoError(t, h.session.Start(context.Background()))
	require.NoError(t, h.session.Select("q1", 1))

	h.session.Abandon()
	assert.Equal(t, StateAbandoned, h.session.State())

	_, err := h.session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionAbandoned)
	assert.Empty(t, h.store.all())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.session.Wait(ctx))
}

func TestSession_SnapshotHidesAnswerKey(t *testing.T) {
	h := newHarness(t, time.Minute)
	require.NoError(t, h.session.Start(context.Background()))

	snap := h.session.Snapshot()
	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, 60, snap.TimeLimit)
	require.Len(t, snap.Questions, 3)
	assert.Equal(t, "q1", snap.Questions[0].ID)
	assert.NotNil(t, snap.StartedAt)
	assert.Nil(t, snap.Result)
}

package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(limit time.Duration) (*Manager, *fakeClock, *memRecorder) {
	clock := newFakeClock()
	store := &memRecorder{}
	m := NewManager(&staticLoader{questions: sampleQuestions()}, store, limit, clock, zerolog.Nop())
	return m, clock, store
}

func TestManager_StartIsIdempotentWhileInProgress(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	ctx := context.Background()

	first, err := m.Start(ctx, "ravi@example.com")
	require.NoError(t, err)
	second, err := m.Start(ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := m.Start(ctx, "meera@example.com")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	m.Shutdown()
}

func TestManager_SubmitAndRetake(t *testing.T) {
	m, _, store := newTestManager(time.Minute)
	ctx := context.Background()
	email := "ravi@example.com"

	_, err := m.Submit(ctx, email)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	first, err := m.Start(ctx, email)
	require.NoError(t, err)
	require.NoError(t, m.Select(email, "q1", 1))

	res, err := m.Submit(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.Score)

	// Finished session stays readable until the next start.
	got, err := m.Get(email)
	require.NoError(t, err)
	assert.Same(t, first, got)
	assert.Equal(t, StateFinalized, got.State())

	retake, err := m.Start(ctx, email)
	require.NoError(t, err)
	assert.NotSame(t, first, retake)
	_, err = m.Submit(ctx, email)
	require.NoError(t, err)

	assert.Len(t, store.all(), 2)
}

func TestManager_EventsAndHooks(t *testing.T) {
	m, clock, _ := newTestManager(2 * time.Second)
	ctx := context.Background()
	email := "ravi@example.com"

	var mu sync.Mutex
	var hooked []Result
	m.OnFinalize(func(r Result) {
		mu.Lock()
		hooked = append(hooked, r)
		mu.Unlock()
	})

	events, cancel := m.Subscribe(email)
	defer cancel()

	_, err := m.Start(ctx, email)
	require.NoError(t, err)

	clock.advance()
	ev := <-events
	assert.Equal(t, EventTick, ev.Type)
	assert.Equal(t, 1, ev.Remaining)

	clock.advance()
	select {
	case ev = <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no finalized event")
	}
	assert.Equal(t, EventFinalized, ev.Type)
	require.NotNil(t, ev.Result)
	assert.Equal(t, 2, ev.Result.Record.TimeSpent)

	mu.Lock()
	assert.Len(t, hooked, 1)
	mu.Unlock()
}

func TestManager_AbandonDropsSession(t *testing.T) {
	m, _, store := newTestManager(time.Minute)
	ctx := context.Background()
	email := "ravi@example.com"

	sess, err := m.Start(ctx, email)
	require.NoError(t, err)

	m.Abandon(email)
	assert.Equal(t, StateAbandoned, sess.State())
	_, err = m.Get(email)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, store.all())
}

func TestManager_SubscribeCancelClosesChannel(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	events, cancel := m.Subscribe("x@example.com")
	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestManager_FinalizedSessionExpires(t *testing.T) {
	m, _, store := newTestManager(time.Minute)
	m.retention = 20 * time.Millisecond
	ctx := context.Background()

	_, err := m.Start(ctx, "ravi@example.com")
	require.NoError(t, err)
	_, err = m.Submit(ctx, "ravi@example.com")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := m.Get("ravi@example.com")
		return errors.Is(err, ErrNoActiveSession)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, store.all(), 1, "the record outlives the session")
}

func TestManager_ExpiryKeepsRetake(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	m.retention = 50 * time.Millisecond
	ctx := context.Background()
	email := "meera@example.com"

	_, err := m.Start(ctx, email)
	require.NoError(t, err)
	_, err = m.Submit(ctx, email)
	require.NoError(t, err)

	retake, err := m.Start(ctx, email)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)
	got, err := m.Get(email)
	require.NoError(t, err)
	assert.Same(t, retake, got)
	m.Shutdown()
}

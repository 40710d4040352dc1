package assessment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/evpower/recruit-backend/internal/model"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// advance moves time forward one second and delivers a tick to the newest ticker.
func (c *fakeClock) advance() {
	c.mu.Lock()
	c.now = c.now.Add(time.Second)
	now := c.now
	t := c.tickers[len(c.tickers)-1]
	c.mu.Unlock()
	t.c <- now
}

type staticLoader struct {
	mu        sync.Mutex
	questions []model.Question
	err       error
	calls     int
}

func (l *staticLoader) LoadQuestions(context.Context) ([]model.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.questions, nil
}

type memRecorder struct {
	mu      sync.Mutex
	records []model.AttemptRecord
	err     error
}

func (r *memRecorder) Append(_ context.Context, rec model.AttemptRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *memRecorder) all() []model.AttemptRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CloneAttempts(r.records)
}

var errStoreDown = errors.New("store down")

func sampleQuestions() []model.Question {
	return []model.Question{
		{ID: "q1", Prompt: "2 + 2", Options: []string{"3", "4", "5"}, CorrectOptionIndex: 1},
		{ID: "q2", Prompt: "Capital of France", Options: []string{"Paris", "Rome"}, CorrectOptionIndex: 0},
		{ID: "q3", Prompt: "Ohm's law", Options: []string{"V=IR", "P=IV", "F=ma"}, CorrectOptionIndex: 0},
	}
}

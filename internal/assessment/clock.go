package assessment

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts wall time so countdowns can be driven by tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time { return t.t.C }
func (t *systemTicker) Stop()               { t.t.Stop() }

// Countdown is the cancellable timer handle owned by a session.
// tick is called once per interval until it returns false or Stop is called.
type Countdown struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func startCountdown(clock Clock, interval time.Duration, tick func() bool) *Countdown {
	ctx, cancel := context.WithCancel(context.Background())
	cd := &Countdown{cancel: cancel, done: make(chan struct{})}
	ticker := clock.NewTicker(interval)

	go func() {
		defer close(cd.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if !tick() {
					return
				}
			}
		}
	}()

	return cd
}

// Stop cancels the countdown. It is safe to call more than once and from
// inside the tick callback.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.once.Do(c.cancel)
}

// Done is closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

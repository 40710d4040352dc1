package assessment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType distinguishes session notifications.
type EventType string

const (
	EventTick      EventType = "tick"
	EventFinalized EventType = "finalized"
)

// Event is delivered to subscribers of a candidate's session.
type Event struct {
	Type      EventType `json:"type"`
	Email     string    `json:"email"`
	Remaining int       `json:"remaining_seconds"`
	Result    *Result   `json:"result,omitempty"`
}

// subscriberBuffer bounds per-listener backlog; slow listeners miss ticks.
const subscriberBuffer = 16

// FinalizedRetention is how long a finished session stays readable through
// Get before it is dropped from memory.
const FinalizedRetention = 10 * time.Minute

// Manager keeps at most one live session per candidate email.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	subs     map[string]map[chan Event]struct{}

	loader    QuestionLoader
	store     Recorder
	timeLimit time.Duration
	retention time.Duration
	clock     Clock
	log       zerolog.Logger

	finalizeHooks []func(Result)
}

// NewManager creates a Manager that builds sessions from loader and appends to store.
func NewManager(loader QuestionLoader, store Recorder, timeLimit time.Duration, clock Clock, log zerolog.Logger) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		subs:      make(map[string]map[chan Event]struct{}),
		loader:    loader,
		store:     store,
		timeLimit: timeLimit,
		retention: FinalizedRetention,
		clock:     clock,
		log:       log.With().Str("component", "assessment_manager").Logger(),
	}
}

// OnFinalize registers a hook run for every finalized session. Register before serving traffic.
func (m *Manager) OnFinalize(fn func(Result)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeHooks = append(m.finalizeHooks, fn)
}

// Start returns the candidate's in-progress session or begins a new one.
// A finished or abandoned session is replaced, so retakes produce new records.
func (m *Manager) Start(ctx context.Context, email string) (*Session, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[email]; ok {
		// NotStarted means another request is still loading questions for it.
		if st := existing.State(); st == StateInProgress || st == StateNotStarted {
			m.mu.Unlock()
			return existing, nil
		}
	}

	var sess *Session
	sess, err := NewSession(email, m.loader, m.store,
		WithClock(m.clock),
		WithTimeLimit(m.timeLimit),
		WithLogger(m.log),
		WithTickHandler(func(remaining int) {
			m.publish(email, Event{Type: EventTick, Email: email, Remaining: remaining})
		}),
		WithFinalizeHandler(func(res Result) {
			m.finalized(email, res)
			m.expire(email, sess)
		}),
	)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.sessions[email] = sess
	m.mu.Unlock()

	if err := sess.Start(ctx); err != nil {
		m.mu.Lock()
		if m.sessions[email] == sess {
			delete(m.sessions, email)
		}
		m.mu.Unlock()
		return nil, err
	}
	return sess, nil
}

// Get returns the candidate's most recent session.
func (m *Manager) Get(email string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[email]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

// Select records an answer on the candidate's session.
func (m *Manager) Select(email, questionID string, optionIndex int) error {
	sess, err := m.Get(email)
	if err != nil {
		return err
	}
	return sess.Select(questionID, optionIndex)
}

// Submit finalizes the candidate's session.
func (m *Manager) Submit(ctx context.Context, email string) (Result, error) {
	sess, err := m.Get(email)
	if err != nil {
		return Result{}, err
	}
	return sess.Submit(ctx)
}

// Abandon drops the candidate's session without recording an attempt.
func (m *Manager) Abandon(email string) {
	m.mu.Lock()
	sess, ok := m.sessions[email]
	delete(m.sessions, email)
	m.mu.Unlock()
	if ok {
		sess.Abandon()
	}
}

// Subscribe streams events for one candidate until cancel is called.
func (m *Manager) Subscribe(email string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	m.mu.Lock()
	set, ok := m.subs[email]
	if !ok {
		set = make(map[chan Event]struct{})
		m.subs[email] = set
	}
	set[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			if set, ok := m.subs[email]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(m.subs, email)
				}
			}
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Shutdown stops every live countdown. In-progress sessions are not recorded.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	live := 0
	for _, s := range sessions {
		if s.State() == StateInProgress {
			live++
		}
		s.Abandon()
	}
	if live > 0 {
		m.log.Warn().Int("sessions", live).Msg("Shutdown discarded in-progress assessments")
	}
}

func (m *Manager) finalized(email string, res Result) {
	m.mu.Lock()
	hooks := append([]func(Result){}, m.finalizeHooks...)
	m.mu.Unlock()

	for _, h := range hooks {
		h(res)
	}
	m.publish(email, Event{Type: EventFinalized, Email: email, Result: &res})
}

// expire drops sess after the retention window unless a retake replaced it.
func (m *Manager) expire(email string, sess *Session) {
	time.AfterFunc(m.retention, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.sessions[email] == sess {
			delete(m.sessions, email)
		}
	})
}

func (m *Manager) publish(email string, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs[email] {
		select {
		case ch <- ev:
		default:
		}
	}
}

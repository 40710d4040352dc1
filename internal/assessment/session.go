package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/model"
)

// DefaultTimeLimit is the aptitude test duration.
const DefaultTimeLimit = 30 * time.Minute

// finalizeTimeout bounds the store append on the timeout path, which has no caller context.
const finalizeTimeout = 10 * time.Second

// State is the lifecycle position of a session.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateSubmitted  State = "SUBMITTED"
	StateTimedOut   State = "TIMED_OUT"
	StateFinalized  State = "FINALIZED"
	StateAbandoned  State = "ABANDONED"
)

// QuestionLoader supplies the question set for a new session.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]model.Question, error)
}

// Recorder appends finalized attempts to durable storage.
type Recorder interface {
	Append(ctx context.Context, record model.AttemptRecord) error
}

// Result is the outcome of finalization. Record is always populated;
// PersistErr is a *attemptstore.PersistenceError when the append failed.
type Result struct {
	Record     model.AttemptRecord `json:"record"`
	PersistErr error               `json:"-"`
}

// Persisted reports whether the record reached the store.
func (r Result) Persisted() bool { return r.PersistErr == nil }

// Snapshot is a read-only view of a session for clients.
type Snapshot struct {
	ID               string                       `json:"id"`
	Email            string                       `json:"email"`
	State            State                        `json:"state"`
	TimeLimit        int                          `json:"time_limit"`
	RemainingSeconds int                          `json:"remaining_seconds"`
	Questions        []model.QuestionForCandidate `json:"questions"`
	Answers          model.AnswerSelection        `json:"answers"`
	StartedAt        *time.Time                   `json:"started_at,omitempty"`
	Result           *model.AttemptRecord         `json:"result,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithTimeLimit sets the countdown length.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Session) { s.limit = int(d / time.Second) }
}

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithTickHandler registers a callback run after every countdown tick.
func WithTickHandler(fn func(remaining int)) Option {
	return func(s *Session) { s.onTick = fn }
}

// WithFinalizeHandler registers a callback run once after finalization.
func WithFinalizeHandler(fn func(Result)) Option {
	return func(s *Session) { s.onFinalize = fn }
}

// Session is one candidate's timed run through the question set.
type Session struct {
	mu sync.Mutex

	id        string
	email     string
	limit     int
	remaining int
	state     State
	startedAt time.Time

	questions []model.Question
	index     map[string]int
	answers   model.AnswerSelection

	countdown *Countdown
	result    *Result

	loader QuestionLoader
	store  Recorder
	clock  Clock
	log    zerolog.Logger

	onTick     func(int)
	onFinalize func(Result)
}

// NewSession creates a NotStarted session for the candidate.
func NewSession(email string, loader QuestionLoader, store Recorder, opts ...Option) (*Session, error) {
	if email == "" {
		return nil, ErrCandidateRequired
	}
	s := &Session{
		id:      uuid.NewString(),
		email:   email,
		limit:   int(DefaultTimeLimit / time.Second),
		state:   StateNotStarted,
		answers: model.AnswerSelection{},
		loader:  loader,
		store:   store,
		clock:   SystemClock{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limit <= 0 {
		return nil, ErrInvalidTimeLimit
	}
	s.log = s.log.With().Str("component", "assessment_session").Str("session_id", s.id).Str("email", email).Logger()
	return s, nil
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Email() string { return s.email }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Answers returns a copy of the current selections.
func (s *Session) Answers() model.AnswerSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Result returns the finalized outcome, if any.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return Result{Record: s.result.Record.Clone(), PersistErr: s.result.PersistErr}, true
}

// Snapshot returns the client view of the session. The answer key is never included.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:               s.id,
		Email:            s.email,
		State:            s.state,
		TimeLimit:        s.limit,
		RemainingSeconds: s.remaining,
		Questions:        make([]model.QuestionForCandidate, len(s.questions)),
		Answers:          s.answers.Clone(),
	}
	for i, q := range s.questions {
		snap.Questions[i] = q.ForCandidate()
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		snap.StartedAt = &t
	}
	if s.result != nil {
		rec := s.result.Record.Clone()
		snap.Result = &rec
	}
	return snap
}

// Start loads the question set and begins the countdown.
// On a load failure the session stays NotStarted and a *LoadError is returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrAlreadyStarted, st)
	}
	s.mu.Unlock()

	questions, err := s.loader.LoadQuestions(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load questions")
		return &LoadError{Err: err}
	}
	if len(questions) == 0 {
		return &LoadError{Err: ErrNoQuestions}
	}

	owned := make([]model.Question, len(questions))
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return &LoadError{Err: err}
		}
		owned[i] = q.Clone()
		index[q.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent Start may have won while loading.
	if s.state != StateNotStarted {
		return fmt.Errorf("%w: state %s", ErrAlreadyStarted, s.state)
	}

	s.questions = owned
	s.index = index
	s.remaining = s.limit
	s.startedAt = s.clock.Now()
	s.state = StateInProgress
	s.countdown = startCountdown(s.clock, time.Second, s.tick)

	s.log.Info().Int("questions", len(owned)).Int("time_limit", s.limit).Msg("Assessment started")
	return nil
}

// Select records an option for a question. The last selection wins.
func (s *Session) Select(questionID string, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}

	i, ok := s.index[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if !s.questions[i].HasOption(optionIndex) {
		return fmt.Errorf("%w: %d", ErrOptionOutOfRange, optionIndex)
	}

	s.answers[questionID] = optionIndex
	return nil
}

// Submit finalizes the session on the candidate's request.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if err := s.requireInProgress(); err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	s.state = StateSubmitted
	rec := s.sealLocked(model.AttemptOutcomeSubmitted)
	s.mu.Unlock()

	return s.persist(ctx, rec), nil
}

// Abandon stops the countdown without recording anything. Progress is lost.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalized || s.state == StateAbandoned {
		return
	}
	s.countdown.Stop()
	s.state = StateAbandoned
	s.log.Info().Msg("Assessment abandoned")
}

// Wait blocks until the countdown goroutine exits or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	cd := s.countdown
	s.mu.Unlock()
	if cd == nil {
		return nil
	}
	select {
	case <-cd.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) requireInProgress() error {
	switch s.state {
	case StateInProgress:
		return nil
	case StateNotStarted:
		return ErrNotStarted
	case StateAbandoned:
		return ErrSessionAbandoned
	default:
		return ErrSessionFinalized
	}
}

// tick runs on the countdown goroutine. It returns false once the countdown should end.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return false
	}

	s.remaining--
	if s.remaining > 0 {
		remaining := s.remaining
		onTick := s.onTick
		s.mu.Unlock()
		if onTick != nil {
			onTick(remaining)
		}
		return true
	}

	s.state = StateTimedOut
	rec := s.sealLocked(model.AttemptOutcomeTimedOut)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	s.persist(ctx, rec)
	return false
}

// sealLocked stops the countdown, scores the attempt and moves to Finalized.
// Callers hold s.mu and have already checked the session was InProgress.
func (s *Session) sealLocked(outcome model.AttemptOutcome) model.AttemptRecord {
	s.countdown.Stop()

	if s.remaining < 0 {
		s.remaining = 0
	}

	answers := s.answers.Clone()
	score, total, pct := Score(s.questions, answers)

	questions := make([]model.Question, len(s.questions))
	for i, q := range s.questions {
		questions[i] = q.Clone()
	}

	rec := model.AttemptRecord{
		Email:           s.email,
		TestDate:        s.clock.Now().UTC(),
		Questions:       questions,
		SelectedAnswers: answers,
		Score:           score,
		TotalQuestions:  total,
		Percentage:      pct,
		TimeSpent:       s.limit - s.remaining,
		Outcome:         outcome,
	}

	s.state = StateFinalized
	s.result = &Result{Record: rec}

	s.log.Info().
		Str("outcome", string(outcome)).
		Int("score", score).
		Int("total", total).
		Int("time_spent", rec.TimeSpent).
		Msg("Assessment finalized")

	return rec.Clone()
}

// persist appends the record outside the lock and notifies the finalize handler.
func (s *Session) persist(ctx context.Context, rec model.AttemptRecord) Result {
	var persistErr error
	if s.store != nil {
		if err := s.store.Append(ctx, rec.Clone()); err != nil {
			var pe *attemptstore.PersistenceError
			if !errors.As(err, &pe) {
				pe = &attemptstore.PersistenceError{Op: "append", Err: err}
			}
			persistErr = pe
			s.log.Warn().Err(err).Msg("Attempt could not be persisted")
		}
	}

	s.mu.Lock()
	s.result.PersistErr = persistErr
	onFinalize := s.onFinalize
	s.mu.Unlock()

	res := Result{Record: rec, PersistErr: persistErr}
	if onFinalize != nil {
		onFinalize(res)
	}
	return res
}

package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrNoQuestions       = errors.New("question set is empty")
	ErrAlreadyStarted    = errors.New("assessment already started")
	ErrNotStarted        = errors.New("assessment not started")
	ErrSessionFinalized  = errors.New("assessment already finalized")
	ErrSessionAbandoned  = errors.New("assessment was abandoned")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrOptionOutOfRange  = errors.New("option index out of range")
	ErrNoActiveSession   = errors.New("no assessment session for candidate")
	ErrInvalidTimeLimit  = errors.New("time limit must be positive")
	ErrCandidateRequired = errors.New("candidate email is required")
)

// LoadError reports that the question set could not be loaded.
// The session stays NotStarted; retrying is left to the caller.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load questions: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

package intake

import (
	"errors"
	"fmt"
)

// Kind classifies a failed submission.
type Kind string

const (
	KindNetworkUnreachable Kind = "network_unreachable"
	KindServerRejected     Kind = "server_rejected"
	KindUnknown            Kind = "unknown"
)

var (
	ErrNetworkUnreachable = errors.New("intake server unreachable")
	ErrServerRejected     = errors.New("application rejected by server")
	ErrUnknown            = errors.New("application submission failed")
)

const (
	msgNetworkUnreachable = "Cannot connect to server. Please check your connection and try again."
	msgSubmissionFailed   = "Submission failed. Please try again."
)

// SubmissionError is returned by the intake client for every failed call.
type SubmissionError struct {
	Kind   Kind
	Detail string
	Status int
	Err    error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return string(e.Kind)
	}
}

// Is matches the Kind sentinels.
func (e *SubmissionError) Is(target error) bool {
	switch target {
	case ErrNetworkUnreachable:
		return e.Kind == KindNetworkUnreachable
	case ErrServerRejected:
		return e.Kind == KindServerRejected
	case ErrUnknown:
		return e.Kind == KindUnknown
	}
	return false
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Message is the text shown to the applicant.
func (e *SubmissionError) Message() string {
	switch e.Kind {
	case KindNetworkUnreachable:
		return msgNetworkUnreachable
	case KindServerRejected:
		if e.Detail != "" {
			return e.Detail
		}
	case KindUnknown:
		if e.Detail != "" {
			return e.Detail
		}
	}
	return msgSubmissionFailed
}

// UserMessage returns the applicant-facing text for any error.
func UserMessage(err error) string {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Message()
	}
	return msgSubmissionFailed
}

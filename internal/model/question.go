package model

import (
	"errors"
	"fmt"
)

// ErrInvalidQuestion is returned when a question cannot be scored.
var ErrInvalidQuestion = errors.New("invalid question")

// Question represents a single aptitude test item.
type Question struct {
	ID                 string   `json:"id"`
	Prompt             string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctAnswer"`
}

// Validate checks that the question can be presented and scored.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidQuestion)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: %s has no options", ErrInvalidQuestion, q.ID)
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return fmt.Errorf("%w: %s correct index %d out of range", ErrInvalidQuestion, q.ID, q.CorrectOptionIndex)
	}
	return nil
}

// HasOption reports whether idx addresses one of the question's options.
func (q Question) HasOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// QuestionForCandidate is a question without the correct answer, sent to candidates.
type QuestionForCandidate struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// ForCandidate strips the answer key.
func (q Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: append([]string(nil), q.Options...),
	}
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	Prompt             string   `json:"question" binding:"required,nonblank,max=2000"`
	Options            []string `json:"options" binding:"required,min=2,max=8,dive,required,nonblank"`
	CorrectOptionIndex *int     `json:"correctAnswer" binding:"required,min=0"`
}

package model

import "time"

// AttemptOutcome records how an assessment session ended.
type AttemptOutcome string

const (
	AttemptOutcomeSubmitted AttemptOutcome = "submitted"
	AttemptOutcomeTimedOut  AttemptOutcome = "timed_out"
)

// AnswerSelection maps a question id to the chosen option index.
// A missing key means the question was left unanswered.
type AnswerSelection map[string]int

// Clone returns an independent copy of the selection.
func (a AnswerSelection) Clone() AnswerSelection {
	out := make(AnswerSelection, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Lookup returns the chosen option for a question, if any.
func (a AnswerSelection) Lookup(questionID string) (int, bool) {
	v, ok := a[questionID]
	return v, ok
}

// Percentage returns score/total*100 rounded to the nearest integer, halves up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*200 + total) / (2 * total)
}

// AttemptRecord is the persisted outcome of one completed assessment.
// Records are never mutated after construction; readers receive clones.
type AttemptRecord struct {
	Email           string          `json:"email"`
	TestDate        time.Time       `json:"testDate"`
	Questions       []Question      `json:"questions"`
	SelectedAnswers AnswerSelection `json:"selectedAnswers"`
	Score           int             `json:"score"`
	TotalQuestions  int             `json:"totalQuestions"`
	Percentage      int             `json:"percentage"`
	TimeSpent       int             `json:"timeSpent"`
	Outcome         AttemptOutcome  `json:"outcome,omitempty"`
}

// Clone returns a deep copy of the record.
func (r AttemptRecord) Clone() AttemptRecord {
	qs := make([]Question, len(r.Questions))
	for i, q := range r.Questions {
		qs[i] = q.Clone()
	}
	r.Questions = qs
	r.SelectedAnswers = r.SelectedAnswers.Clone()
	return r
}

// CloneAttempts deep-copies a slice of records.
func CloneAttempts(in []AttemptRecord) []AttemptRecord {
	out := make([]AttemptRecord, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// AttemptHandoff is an in-memory bundle passed by a caller that already holds
// attempts, bypassing the durable store.
type AttemptHandoff struct {
	Attempts []AttemptRecord `json:"allTests,omitempty"`
	Selected *AttemptRecord  `json:"selectedTest,omitempty"`
}

// SelectAnswerRequest is the payload for choosing an option.
type SelectAnswerRequest struct {
	QuestionID  string `json:"question_id" binding:"required,max=64"`
	OptionIndex *int   `json:"option_index" binding:"required,min=0"`
}

// AttemptsQuery filters the staff attempt list.
type AttemptsQuery struct {
	Email string `json:"email" form:"email" binding:"omitempty,max=255"`
}

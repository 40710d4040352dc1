// Package results projects a finalized attempt into a reviewable view.
package results

import (
	"fmt"
	"time"

	"github.com/evpower/recruit-backend/internal/model"
)

// Band groups percentages the way dashboards colour them.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// BandFor classifies a percentage.
func BandFor(percentage int) Band {
	switch {
	case percentage >= 70:
		return BandHigh
	case percentage >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

// QuestionView is one reviewed question.
type QuestionView struct {
	Number        int      `json:"number"`
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	Chosen        *int     `json:"chosen"`
	ChosenText    string   `json:"chosen_text,omitempty"`
	CorrectOption int      `json:"correct_option"`
	CorrectText   string   `json:"correct_text"`
	IsCorrect     bool     `json:"is_correct"`
}

// Answered reports whether the candidate picked an option.
func (q QuestionView) Answered() bool { return q.Chosen != nil }

// View is the full review of one attempt.
type View struct {
	Email      string               `json:"email"`
	TestDate   time.Time            `json:"test_date"`
	Outcome    model.AttemptOutcome `json:"outcome,omitempty"`
	Questions  []QuestionView       `json:"questions"`
	Score      int                  `json:"score"`
	Total      int                  `json:"total"`
	Percentage int                  `json:"percentage"`
	Band       Band                 `json:"band"`
	Minutes    int                  `json:"minutes"`
	Seconds    int                  `json:"seconds"`
	Elapsed    string               `json:"elapsed"`
	Answered   int                  `json:"answered"`
}

// Render builds the view. Score, total and percentage are recomputed from the
// questions and selections, so bundles without stored aggregates render the
// same as log entries. It never mutates rec and returns the same view for the
// same record.
func Render(rec model.AttemptRecord) View {
	v := View{
		Email:     rec.Email,
		TestDate:  rec.TestDate,
		Outcome:   rec.Outcome,
		Questions: make([]QuestionView, len(rec.Questions)),
		Total:     len(rec.Questions),
	}
	v.Minutes, v.Seconds = SplitElapsed(rec.TimeSpent)
	v.Elapsed = FormatElapsed(rec.TimeSpent)

	for i, q := range rec.Questions {
		qv := QuestionView{
			Number:        i + 1,
			ID:            q.ID,
			Prompt:        q.Prompt,
			Options:       append([]string(nil), q.Options...),
			CorrectOption: q.CorrectOptionIndex,
			CorrectText:   optionText(q.Options, q.CorrectOptionIndex),
		}
		if chosen, ok := rec.SelectedAnswers.Lookup(q.ID); ok {
			c := chosen
			qv.Chosen = &c
			qv.ChosenText = optionText(q.Options, chosen)
			qv.IsCorrect = chosen == q.CorrectOptionIndex
			v.Answered++
		}
		if qv.IsCorrect {
			v.Score++
		}
		v.Questions[i] = qv
	}
	v.Percentage = model.Percentage(v.Score, v.Total)
	v.Band = BandFor(v.Percentage)
	return v
}

// SplitElapsed returns whole minutes and remaining seconds.
func SplitElapsed(seconds int) (int, int) {
	if seconds < 0 {
		seconds = 0
	}
	return seconds / 60, seconds % 60
}

// FormatElapsed renders seconds as "Xm Ys".
func FormatElapsed(seconds int) string {
	m, s := SplitElapsed(seconds)
	return fmt.Sprintf("%dm %ds", m, s)
}

func optionText(options []string, idx int) string {
	if idx < 0 || idx >= len(options) {
		return ""
	}
	return options[idx]
}

package assessment

import "github.com/evpower/recruit-backend/internal/model"

// Score counts exact matches between the selections and the answer key.
// Unanswered questions count as incorrect.
func Score(questions []model.Question, answers model.AnswerSelection) (score, total, percentage int) {
	total = len(questions)
	for _, q := range questions {
		if chosen, ok := answers.Lookup(q.ID); ok && chosen == q.CorrectOptionIndex {
			score++
		}
	}
	return score, total, model.Percentage(score, total)
}

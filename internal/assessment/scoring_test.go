package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evpower/recruit-backend/internal/model"
)

func TestScore(t *testing.T) {
	qs := sampleQuestions()

	t.Run("all correct", func(t *testing.T) {
		score, total, pct := Score(qs, model.AnswerSelection{"q1": 1, "q2": 0, "q3": 0})
		assert.Equal(t, 3, score)
		assert.Equal(t, 3, total)
		assert.Equal(t, 100, pct)
	})

	t.Run("unanswered counts as incorrect", func(t *testing.T) {
		score, total, pct := Score(qs, model.AnswerSelection{"q1": 1})
		assert.Equal(t, 1, score)
		assert.Equal(t, 3, total)
		assert.Equal(t, 33, pct)
	})

	t.Run("answers for unknown questions are ignored", func(t *testing.T) {
		score, _, _ := Score(qs, model.AnswerSelection{"nope": 0, "q2": 1})
		assert.Equal(t, 0, score)
	})

	t.Run("empty question set", func(t *testing.T) {
		score, total, pct := Score(nil, nil)
		assert.Zero(t, score)
		assert.Zero(t, total)
		assert.Zero(t, pct)
	})
}

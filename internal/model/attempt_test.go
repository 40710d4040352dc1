package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{1, 8, 13},
		{3, 8, 38},
		{5, 10, 50},
		{7, 10, 70},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percentage(tc.score, tc.total), "%d/%d", tc.score, tc.total)
	}
}

func TestAnswerSelection_Clone(t *testing.T) {
	a := AnswerSelection{"q1": 2}
	b := a.Clone()
	b["q1"] = 0

	got, ok := a.Lookup("q1")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
	_, ok = a.Lookup("q2")
	assert.False(t, ok)
}

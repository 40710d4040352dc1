package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/evpower/recruit-backend/internal/assessment"
	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/repository"
	"github.com/evpower/recruit-backend/internal/results"
)

func sampleAttempt(email string, pct int) model.AttemptRecord {
	return model.AttemptRecord{
		Email:           email,
		TestDate:        time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Questions:       []model.Question{{ID: "q1", Prompt: "?", Options: []string{"a", "b"}, CorrectOptionIndex: 0}},
		SelectedAnswers: model.AnswerSelection{"q1": 0},
		Score:           1,
		TotalQuestions:  1,
		Percentage:      pct,
		TimeSpent:       61,
	}
}

func TestAttemptService_ListAndView(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := attemptstore.NewRedisStore(rdb, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, sampleAttempt("a@example.com", 90)))
	require.NoError(t, store.Append(ctx, sampleAttempt("b@example.com", 40)))
	require.NoError(t, store.Append(ctx, sampleAttempt("A@Example.com", 60)))

	svc := NewAttemptService(store, rdb, zerolog.Nop())

	all, err := svc.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.List(ctx, nil, " a@example.com ")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, 0, mine[0].Index)
	assert.Equal(t, 2, mine[1].Index, "filtered entries keep their log index")

	v, err := svc.View(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", v.Email)
	assert.Equal(t, 100, v.Percentage, "aggregates follow the answers, not the stored percentage")
	assert.Equal(t, results.BandHigh, v.Band)
	assert.Equal(t, "1m 1s", v.Elapsed)

	_, err = svc.View(ctx, nil, 9)
	assert.ErrorIs(t, err, attemptstore.ErrAttemptNotFound)
}

func TestAttemptService_HandoffBypassesStore(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := attemptstore.NewRedisStore(rdb, zerolog.Nop())
	svc := NewAttemptService(store, rdb, zerolog.Nop())

	selected := sampleAttempt("handoff@example.com", 75)
	h := &model.AttemptHandoff{
		Attempts: []model.AttemptRecord{sampleAttempt("x@example.com", 10)},
		Selected: &selected,
	}

	list, err := svc.List(context.Background(), h, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "x@example.com", list[0].Record.Email)

	v, err := svc.View(context.Background(), h, 0)
	require.NoError(t, err)
	assert.Equal(t, "handoff@example.com", v.Email)
	assert.Equal(t, results.BandHigh, v.Band)
}

func TestAttemptService_Export(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := attemptstore.NewRedisStore(rdb, zerolog.Nop())
	require.NoError(t, store.Append(context.Background(), sampleAttempt("a@example.com", 90)))
	svc := NewAttemptService(store, rdb, zerolog.Nop())

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf, ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(results.SheetAttempts)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAttemptService_Feed(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := attemptstore.NewRedisStore(rdb, zerolog.Nop())
	svc := NewAttemptService(store, rdb, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)

	svc.PublishFinalized(assessment.Result{Record: sampleAttempt("live@example.com", 80)})

	select {
	case rec := <-feed:
		assert.Equal(t, "live@example.com", rec.Email)
		assert.Equal(t, 80, rec.Percentage)
	case <-time.After(2 * time.Second):
		t.Fatal("feed message not received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-feed
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSummarizeAttempts(t *testing.T) {
	sum := SummarizeAttempts([]model.AttemptRecord{
		sampleAttempt("a", 90), sampleAttempt("b", 70), sampleAttempt("c", 55), sampleAttempt("d", 10),
	})
	assert.Equal(t, AttemptSummary{Total: 4, AvgPercentage: 56.3, High: 2, Medium: 1, Low: 1, Source: "live"}, sum)

	empty := SummarizeAttempts(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0.0, empty.AvgPercentage)
}

func TestPositionShares(t *testing.T) {
	shares := PositionShares([]repository.PositionCount{
		{Position: "Data Analyst", Count: 1},
		{Position: "Software Engineer", Count: 2},
	})
	require.Len(t, shares, 2)
	assert.Equal(t, PositionShare{Position: "Software Engineer", Count: 2, Percentage: 67}, shares[0])
	assert.Equal(t, PositionShare{Position: "Data Analyst", Count: 1, Percentage: 33}, shares[1])

	assert.Empty(t, PositionShares(nil))
}

func TestRecentAttempts(t *testing.T) {
	recs := []model.AttemptRecord{sampleAttempt("1", 1), sampleAttempt("2", 2), sampleAttempt("3", 3)}
	got := recentAttempts(recs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].Email)
	assert.Equal(t, "2", got[1].Email)
}

package attemptstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
)

func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, zerolog.Nop()), mr
}

func sampleRecord(email string, score int) model.AttemptRecord {
	return model.AttemptRecord{
		Email:    email,
		TestDate: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Questions: []model.Question{
			{ID: "q1", Prompt: "2 + 2", Options: []string{"3", "4"}, CorrectOptionIndex: 1},
			{ID: "q2", Prompt: "Unit of current", Options: []string{"Volt", "Ampere"}, CorrectOptionIndex: 1},
		},
		SelectedAnswers: model.AnswerSelection{"q1": 1},
		Score:           score,
		TotalQuestions:  2,
		Percentage:      score * 50,
		TimeSpent:       125,
		Outcome:         model.AttemptOutcomeSubmitted,
	}
}

func TestRedisStore_EmptyLog(t *testing.T) {
	store, _ := setupTestStore(t)

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)
}

func TestRedisStore_AppendRoundTrip(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	first := sampleRecord("asha@example.com", 1)
	second := sampleRecord("ravi@example.com", 2)
	retake := sampleRecord("asha@example.com", 2)

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))
	require.NoError(t, store.Append(ctx, retake))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.AttemptRecord{first, second, retake}, all)

	// The medium keeps the original persisted field names.
	raw, err := mr.Get(config.CacheKey.AttemptLog)
	require.NoError(t, err)
	var generic []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &generic))
	require.Len(t, generic, 3)
	for _, field := range []string{"email", "testDate", "questions", "selectedAnswers", "score", "totalQuestions", "percentage", "timeSpent"} {
		assert.Contains(t, generic[0], field)
	}
}

func TestRedisStore_FindByEmail(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRecord("asha@example.com", 1)))
	require.NoError(t, store.Append(ctx, sampleRecord("ravi@example.com", 2)))
	require.NoError(t, store.Append(ctx, sampleRecord("Asha@Example.com", 2)))

	got, err := store.FindByEmail(ctx, " asha@example.com ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Score)
	assert.Equal(t, 2, got[1].Score)

	none, err := store.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisStore_AppendQueuesArchive(t *testing.T) {
	store, mr := setupTestStore(t)
	rec := sampleRecord("asha@example.com", 2)

	require.NoError(t, store.Append(context.Background(), rec))

	queued, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var decoded model.AttemptRecord
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &decoded))
	assert.Equal(t, rec, decoded)
}

func TestRedisStore_ConcurrentAppendsLoseNothing(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Append(ctx, sampleRecord(fmt.Sprintf("c%d@example.com", i), 1))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers)

	seen := make(map[string]bool)
	for _, r := range all {
		seen[r.Email] = true
	}
	assert.Len(t, seen, writers)
}

func TestRedisStore_CorruptLogIsPersistenceError(t *testing.T) {
	store, mr := setupTestStore(t)
	require.NoError(t, mr.Set(config.CacheKey.AttemptLog, "not json"))

	_, err := store.ListAll(context.Background())
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "decode", pe.Op)

	err = store.Append(context.Background(), sampleRecord("asha@example.com", 1))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "append", pe.Op)
}

func TestRedisStore_UnavailableIsPersistenceError(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.Close()

	err := store.Append(context.Background(), sampleRecord("asha@example.com", 1))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)

	_, err = store.ListAll(context.Background())
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "read", pe.Op)
}

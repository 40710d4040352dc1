package attemptstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpower/recruit-backend/internal/model"
)

type countingReader struct {
	records []model.AttemptRecord
	calls   int
}

func (r *countingReader) ListAll(context.Context) ([]model.AttemptRecord, error) {
	r.calls++
	return model.CloneAttempts(r.records), nil
}

func TestResolveList(t *testing.T) {
	ctx := context.Background()
	stored := []model.AttemptRecord{sampleRecord("stored@example.com", 1)}

	t.Run("handoff bypasses the store", func(t *testing.T) {
		r := &countingReader{records: stored}
		bundle := &model.AttemptHandoff{Attempts: []model.AttemptRecord{sampleRecord("bundle@example.com", 2)}}

		got, err := ResolveList(ctx, r, bundle)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "bundle@example.com", got[0].Email)
		assert.Zero(t, r.calls)
	})

	t.Run("empty handoff list is still a handoff", func(t *testing.T) {
		r := &countingReader{records: stored}
		got, err := ResolveList(ctx, r, &model.AttemptHandoff{Attempts: []model.AttemptRecord{}})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, r.calls)
	})

	t.Run("no handoff reads the store", func(t *testing.T) {
		r := &countingReader{records: stored}
		got, err := ResolveList(ctx, r, nil)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		assert.Equal(t, 1, r.calls)
	})
}

func TestResolveSelected(t *testing.T) {
	ctx := context.Background()
	r := &countingReader{records: []model.AttemptRecord{
		sampleRecord("a@example.com", 1),
		sampleRecord("b@example.com", 2),
	}}

	got, err := ResolveSelected(ctx, r, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", got.Email)

	_, err = ResolveSelected(ctx, r, nil, 2)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = ResolveSelected(ctx, r, nil, -1)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	selected := sampleRecord("picked@example.com", 2)
	calls := r.calls
	got, err = ResolveSelected(ctx, r, &model.AttemptHandoff{Selected: &selected}, 99)
	require.NoError(t, err)
	assert.Equal(t, "picked@example.com", got.Email)
	assert.Equal(t, calls, r.calls)
}

func TestFilterByEmail(t *testing.T) {
	recs := []model.AttemptRecord{
		sampleRecord("x@example.com", 1),
		sampleRecord("y@example.com", 1),
	}
	assert.Len(t, FilterByEmail(recs, "X@EXAMPLE.COM"), 1)
	assert.Empty(t, FilterByEmail(nil, "x@example.com"))
}

package attemptstore

import (
	"context"
	"errors"

	"github.com/evpower/recruit-backend/internal/model"
)

// ErrAttemptNotFound is returned when a selection index has no record.
var ErrAttemptNotFound = errors.New("attempt not found")

// Reader is the read side of the attempt log.
type Reader interface {
	ListAll(ctx context.Context) ([]model.AttemptRecord, error)
}

// ResolveList returns the bundle's attempts when the caller supplied them,
// otherwise it reads the store.
func ResolveList(ctx context.Context, r Reader, h *model.AttemptHandoff) ([]model.AttemptRecord, error) {
	if h != nil && h.Attempts != nil {
		return model.CloneAttempts(h.Attempts), nil
	}
	return r.ListAll(ctx)
}

// ResolveSelected returns the bundle's selected attempt when present,
// otherwise the record at index in the store.
func ResolveSelected(ctx context.Context, r Reader, h *model.AttemptHandoff, index int) (model.AttemptRecord, error) {
	if h != nil && h.Selected != nil {
		return h.Selected.Clone(), nil
	}

	all, err := ResolveList(ctx, r, h)
	if err != nil {
		return model.AttemptRecord{}, err
	}
	if index < 0 || index >= len(all) {
		return model.AttemptRecord{}, ErrAttemptNotFound
	}
	return all[index], nil
}

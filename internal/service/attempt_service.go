package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/assessment"
	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/results"
)

// feedPublishTimeout bounds the publish done from a finalize hook.
const feedPublishTimeout = 3 * time.Second

// IndexedAttempt pairs a record with its position in the full attempt log.
type IndexedAttempt struct {
	Index  int                 `json:"index"`
	Record model.AttemptRecord `json:"record"`
}

// AttemptService serves the attempt log to staff dashboards.
type AttemptService struct {
	store attemptstore.Store
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(store attemptstore.Store, rdb *redis.Client, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "attempt_service").Logger(),
	}
}

// List returns attempts in completion order, optionally filtered by email.
// A hand-off bundle replaces the store as the source.
func (s *AttemptService) List(ctx context.Context, h *model.AttemptHandoff, email string) ([]IndexedAttempt, error) {
	all, err := attemptstore.ResolveList(ctx, s.store, h)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	out := make([]IndexedAttempt, 0, len(all))
	for i, rec := range all {
		if email != "" && !strings.EqualFold(strings.TrimSpace(rec.Email), email) {
			continue
		}
		out = append(out, IndexedAttempt{Index: i, Record: rec})
	}
	return out, nil
}

// Records returns the raw attempt list, optionally filtered by email.
func (s *AttemptService) Records(ctx context.Context, email string) ([]model.AttemptRecord, error) {
	if strings.TrimSpace(email) != "" {
		return s.store.FindByEmail(ctx, email)
	}
	return s.store.ListAll(ctx)
}

// View renders the selected attempt. The bundle's selected record wins over index.
func (s *AttemptService) View(ctx context.Context, h *model.AttemptHandoff, index int) (results.View, error) {
	rec, err := attemptstore.ResolveSelected(ctx, s.store, h, index)
	if err != nil {
		return results.View{}, err
	}
	return results.Render(rec), nil
}

// Export writes the attempts as an .xlsx workbook.
func (s *AttemptService) Export(ctx context.Context, w io.Writer, email string) error {
	recs, err := s.Records(ctx, email)
	if err != nil {
		return err
	}
	return results.WriteWorkbook(w, recs)
}

// PublishFinalized announces a finalized attempt on the staff feed channel.
// It is registered as an assessment finalize hook.
func (s *AttemptService) PublishFinalized(res assessment.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), feedPublishTimeout)
	defer cancel()

	data, err := json.Marshal(res.Record)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal feed record")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.AttemptFeedChannel, data).Err(); err != nil {
		s.log.Warn().Err(err).Str("email", res.Record.Email).Msg("Failed to publish attempt feed")
	}
}

// Feed streams finalized attempts until ctx is cancelled.
func (s *AttemptService) Feed(ctx context.Context) (<-chan model.AttemptRecord, error) {
	sub := s.rdb.Subscribe(ctx, config.CacheKey.AttemptFeedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan model.AttemptRecord)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var rec model.AttemptRecord
				if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					s.log.Warn().Err(err).Msg("Skipping malformed feed message")
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

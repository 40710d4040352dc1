package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/repository"
)

// ErrPositionExists is returned when a position title is already taken.
var ErrPositionExists = errors.New("position already exists")

// positionCacheTTL bounds how stale the public position list may get.
const positionCacheTTL = 10 * time.Minute

// PositionService manages open job positions.
type PositionService struct {
	repo *repository.JobPositionRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewPositionService creates a new PositionService.
func NewPositionService(repo *repository.JobPositionRepository, rdb *redis.Client, log zerolog.Logger) *PositionService {
	return &PositionService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "position_service").Logger(),
	}
}

// List returns all positions, served from cache when warm.
func (s *PositionService) List(ctx context.Context) ([]model.JobPosition, error) {
	if data, err := s.rdb.Get(ctx, config.CacheKey.PositionList).Bytes(); err == nil {
		var positions []model.JobPosition
		if err := json.Unmarshal(data, &positions); err == nil {
			return positions, nil
		}
	}

	positions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(positions); err == nil {
		if err := s.rdb.Set(ctx, config.CacheKey.PositionList, data, positionCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache position list")
		}
	}
	return positions, nil
}

// Create stores a new position and drops the cached list.
func (s *PositionService) Create(ctx context.Context, req *model.CreateJobPositionRequest) (*model.JobPosition, error) {
	p := &model.JobPosition{Title: strings.TrimSpace(req.Title), Description: req.Description}
	if err := s.repo.Create(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPositionExists
		}
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// EnsureDefaults seeds the standard open roles.
func (s *PositionService) EnsureDefaults(ctx context.Context) error {
	if err := s.repo.EnsureDefaults(ctx, model.DefaultPositions); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *PositionService) invalidate(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.PositionList).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to drop position cache")
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
)

// QuestionBank is the durable aptitude question source.
type QuestionBank interface {
	ListAll(ctx context.Context) ([]model.Question, error)
	ReplaceAll(ctx context.Context, questions []model.Question) error
}

// QuestionService serves the aptitude question bank from a Redis payload
// cache backed by PostgreSQL. It is the assessment question loader.
type QuestionService struct {
	bank QuestionBank
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(bank QuestionBank, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		bank: bank,
		rdb:  rdb,
		log:  log.With().Str("component", "question_service").Logger(),
	}
}

// LoadQuestions returns the full bank, answer key included. A cache miss
// falls through to the database and rewarms the payload.
func (s *QuestionService) LoadQuestions(ctx context.Context) ([]model.Question, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.QuestionPayload).Bytes()
	switch {
	case err == nil:
		var questions []model.Question
		if err := json.Unmarshal(data, &questions); err == nil {
			return questions, nil
		}
		s.log.Warn().Msg("Corrupt question payload in cache, reloading")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Msg("Question cache read failed, using database")
	}

	questions, err := s.bank.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if err := s.cache(ctx, questions); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache question payload")
	}
	return questions, nil
}

// Warm loads the bank from the database into the cache.
func (s *QuestionService) Warm(ctx context.Context) (int, error) {
	questions, err := s.bank.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}
	if err := s.cache(ctx, questions); err != nil {
		return 0, err
	}
	s.log.Info().Int("questions", len(questions)).Msg("Question payload warmed")
	return len(questions), nil
}

// ReplaceAll validates and stores a new bank, then refreshes the cache.
func (s *QuestionService) ReplaceAll(ctx context.Context, questions []model.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	if err := s.bank.ReplaceAll(ctx, questions); err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}
	return s.cache(ctx, questions)
}

// Add appends one question to the bank.
func (s *QuestionService) Add(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := model.Question{
		ID:      uuid.New().String(),
		Prompt:  req.Prompt,
		Options: append([]string(nil), req.Options...),
	}
	if req.CorrectOptionIndex != nil {
		q.CorrectOptionIndex = *req.CorrectOptionIndex
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	questions, err := s.bank.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if err := s.ReplaceAll(ctx, append(questions, q)); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *QuestionService) cache(ctx context.Context, questions []model.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuestionPayload, data, 0).Err(); err != nil {
		return fmt.Errorf("cache payload: %w", err)
	}
	return nil
}

// DefaultQuestionBank is the general aptitude set used to seed a fresh install.
func DefaultQuestionBank() []model.Question {
	return []model.Question{
		{ID: "q1", Prompt: "If a car travels 60 km in 1.5 hours, what is its average speed?",
			Options: []string{"30 km/h", "40 km/h", "45 km/h", "90 km/h"}, CorrectOptionIndex: 1},
		{ID: "q2", Prompt: "What is the next number in the series 2, 6, 12, 20, 30, ...?",
			Options: []string{"36", "40", "42", "44"}, CorrectOptionIndex: 2},
		{ID: "q3", Prompt: "A battery pack rated 48 V and 20 Ah stores how much energy?",
			Options: []string{"68 Wh", "480 Wh", "960 Wh", "2.4 kWh"}, CorrectOptionIndex: 2},
		{ID: "q4", Prompt: "Which word is the odd one out?",
			Options: []string{"Volt", "Ampere", "Ohm", "Kilogram"}, CorrectOptionIndex: 3},
		{ID: "q5", Prompt: "If 5 workers build a wall in 12 days, how many days do 6 workers need?",
			Options: []string{"8", "10", "12", "14"}, CorrectOptionIndex: 1},
		{ID: "q6", Prompt: "A price rises by 20% and then falls by 20%. The net change is:",
			Options: []string{"No change", "4% decrease", "4% increase", "2% decrease"}, CorrectOptionIndex: 1},
		{ID: "q7", Prompt: "Choose the word closest in meaning to \"efficient\".",
			Options: []string{"Productive", "Expensive", "Careless", "Slow"}, CorrectOptionIndex: 0},
		{ID: "q8", Prompt: "What is 15% of 240?",
			Options: []string{"24", "32", "36", "40"}, CorrectOptionIndex: 2},
		{ID: "q9", Prompt: "If all chargers are devices and some devices are portable, which statement must be true?",
			Options: []string{"All chargers are portable", "Some chargers are portable", "No charger is portable", "None of these"}, CorrectOptionIndex: 3},
		{ID: "q10", Prompt: "A motor draws 10 A at 230 V. What power does it consume?",
			Options: []string{"23 W", "230 W", "2.3 kW", "23 kW"}, CorrectOptionIndex: 2},
	}
}

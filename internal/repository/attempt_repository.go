package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evpower/recruit-backend/internal/model"
)

// AttemptRepository handles the PostgreSQL archive of finalized attempts.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// BulkInsert archives a batch in one statement. Records already archived
// (same email and test date) are skipped so requeued batches are harmless.
func (r *AttemptRepository) BulkInsert(ctx context.Context, batch []model.AttemptRecord) error {
	n := len(batch)
	emails := make([]string, 0, n)
	dates := make([]time.Time, 0, n)
	scores := make([]int32, 0, n)
	totals := make([]int32, 0, n)
	percentages := make([]int32, 0, n)
	spent := make([]int32, 0, n)
	outcomes := make([]string, 0, n)
	questions := make([]string, 0, n)
	answers := make([]string, 0, n)

	for _, rec := range batch {
		qs, err := json.Marshal(rec.Questions)
		if err != nil {
			return err
		}
		sel, err := json.Marshal(rec.SelectedAnswers)
		if err != nil {
			return err
		}
		outcome := rec.Outcome
		if outcome == "" {
			outcome = model.AttemptOutcomeSubmitted
		}

		emails = append(emails, rec.Email)
		dates = append(dates, rec.TestDate)
		scores = append(scores, int32(rec.Score))
		totals = append(totals, int32(rec.TotalQuestions))
		percentages = append(percentages, int32(rec.Percentage))
		spent = append(spent, int32(rec.TimeSpent))
		outcomes = append(outcomes, string(outcome))
		questions = append(questions, string(qs))
		answers = append(answers, string(sel))
	}

	query := `
		INSERT INTO assessment_attempts
			(email, test_date, score, total_questions, percentage, time_spent, outcome, questions, selected_answers)
		SELECT
			u.email, u.test_date, u.score, u.total, u.percentage, u.spent, u.outcome,
			u.questions::jsonb, u.answers::jsonb
		FROM UNNEST(
			$1::text[],
			$2::timestamptz[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::int[],
			$7::text[],
			$8::text[],
			$9::text[]
		) AS u (email, test_date, score, total, percentage, spent, outcome, questions, answers)
		ON CONFLICT (email, test_date) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, emails, dates, scores, totals, percentages, spent, outcomes, questions, answers)
	return err
}

// Insert archives one record.
func (r *AttemptRepository) Insert(ctx context.Context, rec model.AttemptRecord) error {
	return r.BulkInsert(ctx, []model.AttemptRecord{rec})
}

// AttemptStats aggregates the archive for dashboards.
type AttemptStats struct {
	Total         int     `json:"total"`
	AvgPercentage float64 `json:"average_percentage"`
	High          int     `json:"high"`
	Medium        int     `json:"medium"`
	Low           int     `json:"low"`
}

// Stats returns counts per band and the average percentage.
func (r *AttemptRepository) Stats(ctx context.Context) (AttemptStats, error) {
	var s AttemptStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COALESCE(AVG(percentage), 0)::float8,
			COUNT(*) FILTER (WHERE percentage >= 70),
			COUNT(*) FILTER (WHERE percentage >= 50 AND percentage < 70),
			COUNT(*) FILTER (WHERE percentage < 50)
		 FROM assessment_attempts`,
	).Scan(&s.Total, &s.AvgPercentage, &s.High, &s.Medium, &s.Low)
	return s, err
}

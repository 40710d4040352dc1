package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evpower/recruit-backend/internal/model"
)

// AptitudeQuestionRepository handles the aptitude question bank.
type AptitudeQuestionRepository struct {
	pool *pgxpool.Pool
}

// NewAptitudeQuestionRepository creates a new AptitudeQuestionRepository.
func NewAptitudeQuestionRepository(pool *pgxpool.Pool) *AptitudeQuestionRepository {
	return &AptitudeQuestionRepository{pool: pool}
}

// ListAll retrieves the bank in presentation order.
func (r *AptitudeQuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, prompt, options, correct_option_index
		 FROM aptitude_questions
		 ORDER BY order_number, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		var q model.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.Prompt, &options, &q.CorrectOptionIndex); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceAll swaps the whole bank inside one transaction.
func (r *AptitudeQuestionRepository) ReplaceAll(ctx context.Context, questions []model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM aptitude_questions`); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, q := range questions {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			batch.Queue(
				`INSERT INTO aptitude_questions (id, prompt, options, correct_option_index, order_number)
				 VALUES ($1, $2, $3, $4, $5)`,
				q.ID, q.Prompt, options, q.CorrectOptionIndex, i+1,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// Count returns the number of questions in the bank.
func (r *AptitudeQuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM aptitude_questions`).Scan(&n)
	return n, err
}

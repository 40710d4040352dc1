package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles staff dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalApplications, totalCandidates, totalPositions, totalQuestions int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM aptitude_users),
			(SELECT COUNT(*) FROM job_positions),
			(SELECT COUNT(*) FROM aptitude_questions)`,
	).Scan(&totalApplications, &totalCandidates, &totalPositions, &totalQuestions)
	return
}

// PositionCount is the number of applications for one role.
type PositionCount struct {
	Position string `json:"position"`
	Count    int    `json:"count"`
}

// GetApplicationsByPosition retrieves the distribution of applications by role.
func (r *DashboardRepository) GetApplicationsByPosition(ctx context.Context) ([]PositionCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT position, COUNT(*) FROM applications GROUP BY position ORDER BY COUNT(*) DESC, position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]PositionCount, 0)
	for rows.Next() {
		var pc PositionCount
		if err := rows.Scan(&pc.Position, &pc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

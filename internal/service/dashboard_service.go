package service

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/repository"
	"github.com/evpower/recruit-backend/internal/results"
)

// recentAttemptsLimit is how many of the latest attempts the dashboard shows.
const recentAttemptsLimit = 5

// PositionShare is one role's slice of the application count.
type PositionShare struct {
	Position   string `json:"position"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// AttemptSummary aggregates attempt results by band. Source is "live" for
// the attempt log and "archive" for PostgreSQL.
type AttemptSummary struct {
	Total         int     `json:"total"`
	AvgPercentage float64 `json:"average_percentage"`
	High          int     `json:"high"`
	Medium        int     `json:"medium"`
	Low           int     `json:"low"`
	Source        string  `json:"source"`
}

// DashboardData consolidates all metrics for the staff dashboard.
type DashboardData struct {
	Viewer            model.SessionContext  `json:"viewer"`
	TotalApplications int                   `json:"total_applications"`
	TotalCandidates   int                   `json:"total_candidates"`
	TotalPositions    int                   `json:"total_positions"`
	TotalQuestions    int                   `json:"total_questions"`
	Attempts          AttemptSummary        `json:"attempts"`
	PositionBreakdown []PositionShare       `json:"position_breakdown"`
	RecentAttempts    []model.AttemptRecord `json:"recent_attempts"`
}

// DashboardService handles staff dashboard business logic.
type DashboardService struct {
	repo        *repository.DashboardRepository
	attemptRepo *repository.AttemptRepository
	store       attemptstore.Reader
	log         zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	repo *repository.DashboardRepository,
	attemptRepo *repository.AttemptRepository,
	store attemptstore.Reader,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		repo:        repo,
		attemptRepo: attemptRepo,
		store:       store,
		log:         log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetDashboardData gathers the dashboard metrics for the signed-in viewer.
// Attempt figures come from the live log; the archive is used when the log
// is unreachable.
func (s *DashboardService) GetDashboardData(ctx context.Context, viewer model.SessionContext) (*DashboardData, error) {
	apps, candidates, positions, questions, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	byPosition, err := s.repo.GetApplicationsByPosition(ctx)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		Viewer:            viewer,
		TotalApplications: apps,
		TotalCandidates:   candidates,
		TotalPositions:    positions,
		TotalQuestions:    questions,
		PositionBreakdown: PositionShares(byPosition),
		RecentAttempts:    []model.AttemptRecord{},
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Attempt log unavailable, using archive stats")
		stats, err := s.attemptRepo.Stats(ctx)
		if err != nil {
			return nil, err
		}
		data.Attempts = AttemptSummary{
			Total:         stats.Total,
			AvgPercentage: round1(stats.AvgPercentage),
			High:          stats.High,
			Medium:        stats.Medium,
			Low:           stats.Low,
			Source:        "archive",
		}
		return data, nil
	}

	data.Attempts = SummarizeAttempts(records)
	data.RecentAttempts = recentAttempts(records, recentAttemptsLimit)
	return data, nil
}

// SummarizeAttempts counts attempts per band and averages their percentages.
func SummarizeAttempts(records []model.AttemptRecord) AttemptSummary {
	sum := AttemptSummary{Total: len(records), Source: "live"}
	if len(records) == 0 {
		return sum
	}

	total := 0
	for _, r := range records {
		total += r.Percentage
		switch results.BandFor(r.Percentage) {
		case results.BandHigh:
			sum.High++
		case results.BandMedium:
			sum.Medium++
		default:
			sum.Low++
		}
	}
	sum.AvgPercentage = round1(float64(total) / float64(len(records)))
	return sum
}

// PositionShares converts raw counts into whole-number percentages of the total.
func PositionShares(counts []repository.PositionCount) []PositionShare {
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	shares := make([]PositionShare, 0, len(counts))
	for _, c := range counts {
		shares = append(shares, PositionShare{
			Position:   c.Position,
			Count:      c.Count,
			Percentage: model.Percentage(c.Count, total),
		})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Count > shares[j].Count })
	return shares
}

// recentAttempts returns the newest n records, newest first.
func recentAttempts(records []model.AttemptRecord, n int) []model.AttemptRecord {
	out := make([]model.AttemptRecord, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i])
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

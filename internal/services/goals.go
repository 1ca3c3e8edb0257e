package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/pkg/logger"
)

// GoalSummary is the result of one recalculation run.
type GoalSummary struct {
	Evaluated int `json:"evaluated"`
	Updated   int `json:"updated"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Errors    int `json:"errors"`
}

// GoalService recomputes goal progress from appointments, clients and reviews.
type GoalService struct {
	goals   repository.GoalRepository
	stats   repository.StatsRepository
	metrics metrics.JobMetrics
	log     *logger.Logger
	now     func() time.Time
}

func NewGoalService(goals repository.GoalRepository, stats repository.StatsRepository, m metrics.JobMetrics, log *logger.Logger) *GoalService {
	return &GoalService{
		goals:   goals,
		stats:   stats,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Recalculate updates every active goal. A goal that fails to compute or
// persist is logged and counted; the rest proceed.
func (s *GoalService) Recalculate(ctx context.Context) (GoalSummary, error) {
	var summary GoalSummary

	goals, err := s.goals.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("goals: list active: %w", err)
	}

	now := s.now()
	for _, g := range goals {
		summary.Evaluated++

		current, err := s.currentValue(ctx, g)
		if err != nil {
			summary.Errors++
			s.log.Errorw("Failed to compute goal progress", "error", err, "goalID", g.ID, "type", g.Type)
			continue
		}

		status := GoalStatusAt(g, current, now)
		if current.Equal(g.CurrentValue) && status == g.Status {
			continue
		}

		if err := s.goals.UpdateProgress(ctx, g.ID, current, status); err != nil {
			summary.Errors++
			s.log.Errorw("Failed to update goal", "error", err, "goalID", g.ID)
			continue
		}
		summary.Updated++
		switch status {
		case models.GoalCompleted:
			summary.Completed++
		case models.GoalFailed:
			summary.Failed++
		}
		s.metrics.IncGoalUpdate(string(g.Type), string(status))
	}

	s.log.Infow("Goal recalculation finished",
		"evaluated", summary.Evaluated,
		"updated", summary.Updated,
		"completed", summary.Completed,
		"failed", summary.Failed,
		"errors", summary.Errors)
	return summary, nil
}

func (s *GoalService) currentValue(ctx context.Context, g models.Goal) (decimal.Decimal, error) {
	w := g.Window()
	switch g.Type {
	case models.GoalRevenue:
		return s.stats.SumCompletedRevenue(ctx, w)
	case models.GoalAppointments:
		n, err := s.stats.CountCompletedAppointments(ctx, w)
		return decimal.NewFromInt(n), err
	case models.GoalNewClients:
		n, err := s.stats.CountNewClients(ctx, w)
		return decimal.NewFromInt(n), err
	case models.GoalRating:
		return s.stats.AverageRating(ctx, w)
	default:
		return decimal.Zero, fmt.Errorf("unknown goal type %q", g.Type)
	}
}

// GoalStatusAt closes a goal whose window ended before now.
func GoalStatusAt(g models.Goal, current decimal.Decimal, now time.Time) models.GoalStatus {
	if !g.EndDate.Before(now) {
		return models.GoalActive
	}
	if current.GreaterThanOrEqual(g.TargetValue) {
		return models.GoalCompleted
	}
	return models.GoalFailed
}

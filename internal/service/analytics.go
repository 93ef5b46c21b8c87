package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// AnalyticsSummary is the tenant dashboard aggregate.
type AnalyticsSummary struct {
	SeatedEmployees    int64    `json:"seatedEmployees"`
	SeatLimit          int      `json:"seatLimit"` // -1 means unlimited
	OpenFeedback       int64    `json:"openFeedbackRequests"`
	FeedbackResponses  int64    `json:"feedbackResponses"`
	ResponsesLast30Day int64    `json:"feedbackResponsesLast30Days"`
	FinalizedReviews   int64    `json:"finalizedReviews"`
	AverageRating      *float64 `json:"averageRating"` // nil until a review is finalized
	ActiveGoals        int64    `json:"activeGoals"`
	CompletedGoals     int64    `json:"completedGoals"`
	GeneratedAt        string   `json:"generatedAt"`
}

// AnalyticsService computes tenant-level aggregates.
type AnalyticsService interface {
	Summary(ctx context.Context, tenantID uuid.UUID) (*AnalyticsSummary, error)
}

type analyticsService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(queries *repository.Queries, logger *slog.Logger) AnalyticsService {
	return &analyticsService{queries: queries, logger: logger}
}

func (s *analyticsService) Summary(ctx context.Context, tenantID uuid.UUID) (*AnalyticsSummary, error) {
	const op = "analytics.summary"

	tenant, err := s.queries.GetTenantByID(ctx, tenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "tenant", tenantID.String())
		}
		return nil, domain.Internal(err, op, "failed to load tenant")
	}

	now := time.Now()
	raw, err := s.queries.GetTenantAnalytics(ctx, tenantID, now)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to compute analytics")
	}

	summary := &AnalyticsSummary{
		SeatedEmployees:    raw.SeatedEmployees,
		SeatLimit:          tenant.SeatLimit(),
		OpenFeedback:       raw.OpenFeedback,
		FeedbackResponses:  raw.FeedbackResponses,
		ResponsesLast30Day: raw.ResponsesLast30Day,
		FinalizedReviews:   raw.FinalizedReviews,
		ActiveGoals:        raw.ActiveGoals,
		CompletedGoals:     raw.CompletedGoals,
		GeneratedAt:        now.UTC().Format(time.RFC3339),
	}
	if raw.AverageRating.Valid {
		avg := math.Round(raw.AverageRating.Float64*100) / 100
		summary.AverageRating = &avg
	}
	return summary, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// ReviewService manages performance reviews.
type ReviewService interface {
	Create(ctx context.Context, params domain.ReviewCreateParams) (*domain.Review, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Review, error)
	List(ctx context.Context, tenantID uuid.UUID, employeeID *uuid.UUID) ([]*domain.Review, error)

	// Update applies partial updates. Finalized reviews reject content
	// edits; the only way forward is reopening to draft first.
	Update(ctx context.Context, params domain.ReviewUpdateParams) (*domain.Review, error)

	// Finalize locks a review. The review must be in_review with a
	// rating and summary.
	Finalize(ctx context.Context, tenantID, id uuid.UUID) (*domain.Review, error)
}

type reviewService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(queries *repository.Queries, logger *slog.Logger) ReviewService {
	return &reviewService{queries: queries, logger: logger}
}

func (s *reviewService) Create(ctx context.Context, params domain.ReviewCreateParams) (*domain.Review, error) {
	const op = "review.create"

	if strings.TrimSpace(params.Period) == "" {
		return nil, domain.NewValidationError(op, "period", "period is required")
	}

	review, err := s.queries.CreateReview(ctx, &domain.Review{
		ID:         uuid.New(),
		TenantID:   params.TenantID,
		EmployeeID: params.EmployeeID,
		ReviewerID: params.ReviewerID,
		Period:     strings.TrimSpace(params.Period),
		Status:     domain.ReviewStatusDraft,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "a review for this employee and period already exists")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, domain.Invalid(op, "employee does not exist in this organization")
		}
		return nil, domain.Internal(err, op, "failed to create review")
	}
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Review, error) {
	const op = "review.get"
	review, err := s.queries.GetReviewByID(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "review", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load review")
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, tenantID uuid.UUID, employeeID *uuid.UUID) ([]*domain.Review, error) {
	const op = "review.list"
	reviews, err := s.queries.ListReviewsByTenant(ctx, tenantID, employeeID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list reviews")
	}
	return reviews, nil
}

func (s *reviewService) Update(ctx context.Context, params domain.ReviewUpdateParams) (*domain.Review, error) {
	const op = "review.update"

	review, err := s.Get(ctx, params.TenantID, params.ID)
	if err != nil {
		return nil, err
	}

	if params.Status != nil {
		if err := review.TransitionTo(*params.Status); err != nil {
			return nil, err
		}
		if *params.Status != domain.ReviewStatusFinalized {
			review.FinalizedAt = nil
		}
	}

	if review.Status == domain.ReviewStatusFinalized && (params.Summary != nil || params.Rating != nil) {
		return nil, domain.Invalid(op, "finalized reviews cannot be edited; reopen to draft first")
	}
	if params.Summary != nil {
		review.Summary = *params.Summary
	}
	if params.Rating != nil {
		if *params.Rating < 1 || *params.Rating > 5 {
			return nil, domain.NewValidationError(op, "rating", "rating must be between 1 and 5")
		}
		review.Rating = *params.Rating
	}

	updated, err := s.queries.SaveReview(ctx, review)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save review")
	}
	return updated, nil
}

func (s *reviewService) Finalize(ctx context.Context, tenantID, id uuid.UUID) (*domain.Review, error) {
	const op = "review.finalize"

	review, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := review.CanFinalize(); err != nil {
		return nil, err
	}
	if err := review.TransitionTo(domain.ReviewStatusFinalized); err != nil {
		return nil, err
	}
	now := time.Now()
	review.FinalizedAt = &now

	updated, err := s.queries.SaveReview(ctx, review)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to finalize review")
	}

	s.logger.Info("review finalized",
		"tenant_id", tenantID,
		"review_id", id,
		"period", updated.Period,
	)
	return updated, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// GoalService manages per-employee goals and their progress.
type GoalService interface {
	Create(ctx context.Context, params domain.GoalCreateParams) (*domain.Goal, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Goal, error)
	List(ctx context.Context, tenantID uuid.UUID, employeeID *uuid.UUID) ([]*domain.Goal, error)

	// Update applies partial updates. Status changes go through the
	// domain transition rules; progress 100 on an active goal completes
	// it automatically.
	Update(ctx context.Context, params domain.GoalUpdateParams) (*domain.Goal, error)
}

type goalService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewGoalService creates a new GoalService.
func NewGoalService(queries *repository.Queries, logger *slog.Logger) GoalService {
	return &goalService{queries: queries, logger: logger}
}

func (s *goalService) Create(ctx context.Context, params domain.GoalCreateParams) (*domain.Goal, error) {
	const op = "goal.create"

	if strings.TrimSpace(params.Title) == "" {
		return nil, domain.NewValidationError(op, "title", "title is required")
	}

	goal, err := s.queries.CreateGoal(ctx, &domain.Goal{
		ID:          uuid.New(),
		TenantID:    params.TenantID,
		EmployeeID:  params.EmployeeID,
		CreatedBy:   params.CreatedBy,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Status:      domain.GoalStatusDraft,
		DueAt:       params.DueAt,
	})
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, domain.Invalid(op, "employee does not exist in this organization")
		}
		return nil, domain.Internal(err, op, "failed to create goal")
	}
	return goal, nil
}

func (s *goalService) Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Goal, error) {
	const op = "goal.get"
	goal, err := s.queries.GetGoalByID(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "goal", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load goal")
	}
	return goal, nil
}

func (s *goalService) List(ctx context.Context, tenantID uuid.UUID, employeeID *uuid.UUID) ([]*domain.Goal, error) {
	const op = "goal.list"
	goals, err := s.queries.ListGoalsByTenant(ctx, tenantID, employeeID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list goals")
	}
	return goals, nil
}

func (s *goalService) Update(ctx context.Context, params domain.GoalUpdateParams) (*domain.Goal, error) {
	const op = "goal.update"

	goal, err := s.Get(ctx, params.TenantID, params.ID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		if strings.TrimSpace(*params.Title) == "" {
			return nil, domain.NewValidationError(op, "title", "title is required")
		}
		goal.Title = strings.TrimSpace(*params.Title)
	}
	if params.Description != nil {
		goal.Description = *params.Description
	}
	if params.DueAt != nil {
		goal.DueAt = params.DueAt
	}
	if params.Status != nil {
		if err := goal.TransitionTo(*params.Status); err != nil {
			return nil, err
		}
	}
	if params.Progress != nil {
		if err := goal.SetProgress(*params.Progress); err != nil {
			return nil, err
		}
	}

	updated, err := s.queries.SaveGoal(ctx, goal)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save goal")
	}
	return updated, nil
}

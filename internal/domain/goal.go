package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusDraft     GoalStatus = "draft"
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// Goal is a per-employee objective with tracked progress.
type Goal struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	EmployeeID  uuid.UUID
	CreatedBy   uuid.UUID
	Title       string
	Description string
	Status      GoalStatus
	Progress    int // 0..100
	DueAt       *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// goalTransitions defines the allowed status edges. Terminal states
// can be reopened to active (a completed goal can be reopened when the
// bar moves).
var goalTransitions = map[GoalStatus][]GoalStatus{
	GoalStatusDraft:     {GoalStatusActive, GoalStatusAbandoned},
	GoalStatusActive:    {GoalStatusCompleted, GoalStatusAbandoned},
	GoalStatusCompleted: {GoalStatusActive},
	GoalStatusAbandoned: {GoalStatusActive},
}

// TransitionTo moves the goal to a new status, enforcing the allowed
// edges. The status is unchanged on error.
func (g *Goal) TransitionTo(to GoalStatus) error {
	if g.Status == to {
		return nil
	}
	for _, allowed := range goalTransitions[g.Status] {
		if allowed == to {
			g.Status = to
			return nil
		}
	}
	return Invalid("goal.transition", fmt.Sprintf("cannot transition goal from %q to %q", g.Status, to))
}

// SetProgress updates progress, clamping is deliberately not done:
// out-of-range input is a caller error.
func (g *Goal) SetProgress(p int) error {
	if p < 0 || p > 100 {
		return NewValidationError("goal.progress", "progress", "progress must be between 0 and 100")
	}
	g.Progress = p
	if p == 100 && g.Status == GoalStatusActive {
		g.Status = GoalStatusCompleted
	}
	return nil
}

// GoalCreateParams contains validated goal creation input.
type GoalCreateParams struct {
	TenantID    uuid.UUID
	EmployeeID  uuid.UUID
	CreatedBy   uuid.UUID
	Title       string
	Description string
	DueAt       *time.Time
}

// GoalUpdateParams contains goal update input. Nil fields are left
// untouched.
type GoalUpdateParams struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Title       *string
	Description *string
	Status      *GoalStatus
	Progress    *int
	DueAt       *time.Time
}

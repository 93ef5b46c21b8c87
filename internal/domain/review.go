package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the lifecycle state of a performance review.
type ReviewStatus string

const (
	ReviewStatusDraft     ReviewStatus = "draft"
	ReviewStatusInReview  ReviewStatus = "in_review"
	ReviewStatusFinalized ReviewStatus = "finalized"
)

// Review is a manager-authored performance review for one employee
// over one period. Finalized reviews are immutable except for the
// reopen edge back to draft.
type Review struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	EmployeeID  uuid.UUID
	ReviewerID  uuid.UUID
	Period      string // e.g. "2026-H1"
	Summary     string
	Rating      int // 1..5, 0 while drafting
	Status      ReviewStatus
	FinalizedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var reviewTransitions = map[ReviewStatus][]ReviewStatus{
	ReviewStatusDraft:     {ReviewStatusInReview},
	ReviewStatusInReview:  {ReviewStatusFinalized, ReviewStatusDraft},
	ReviewStatusFinalized: {ReviewStatusDraft},
}

// TransitionTo moves the review to a new status, enforcing allowed
// edges. The status is unchanged on error.
func (r *Review) TransitionTo(to ReviewStatus) error {
	if r.Status == to {
		return nil
	}
	for _, allowed := range reviewTransitions[r.Status] {
		if allowed == to {
			r.Status = to
			return nil
		}
	}
	return Invalid("review.transition", fmt.Sprintf("cannot transition review from %q to %q", r.Status, to))
}

// CanFinalize reports whether the review has everything a finalized
// review requires.
func (r *Review) CanFinalize() error {
	if r.Status != ReviewStatusInReview {
		return Invalid("review.finalize", "review must be in review before finalizing")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("review.finalize", "rating", "a rating between 1 and 5 is required")
	}
	if r.Summary == "" {
		return NewValidationError("review.finalize", "summary", "a summary is required")
	}
	return nil
}

// ReviewCreateParams contains validated review creation input.
type ReviewCreateParams struct {
	TenantID   uuid.UUID
	EmployeeID uuid.UUID
	ReviewerID uuid.UUID
	Period     string
}

// ReviewUpdateParams contains review update input. Nil fields are left
// untouched. Updates are rejected for finalized reviews.
type ReviewUpdateParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Summary  *string
	Rating   *int
	Status   *ReviewStatus
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

const reviewColumns = `id, tenant_id, employee_id, reviewer_id, period, summary, rating, status, finalized_at, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*domain.Review, error) {
	var r domain.Review
	var summary sql.NullString
	var status string
	var finalizedAt sql.NullTime
	err := row.Scan(&r.ID, &r.TenantID, &r.EmployeeID, &r.ReviewerID, &r.Period, &summary,
		&r.Rating, &status, &finalizedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Summary = fromNullString(summary)
	r.Status = domain.ReviewStatus(status)
	r.FinalizedAt = fromNullTime(finalizedAt)
	return &r, nil
}

// CreateReview inserts a review and returns the stored record.
func (q *Queries) CreateReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, tenant_id, employee_id, reviewer_id, period, summary, rating, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+reviewColumns,
		r.ID, r.TenantID, r.EmployeeID, r.ReviewerID, r.Period, toNullString(r.Summary), r.Rating, string(r.Status),
	)
	return scanReview(row)
}

// GetReviewByID fetches a review scoped to its tenant.
func (q *Queries) GetReviewByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Review, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	return scanReview(row)
}

// ListReviewsByTenant returns a tenant's reviews, optionally filtered
// by employee, newest first.
func (q *Queries) ListReviewsByTenant(ctx context.Context, tenantID uuid.UUID, employeeID *uuid.UUID) ([]*domain.Review, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE tenant_id = $1 AND ($2::uuid IS NULL OR employee_id = $2)
		ORDER BY created_at DESC`,
		tenantID, toNullUUID(employeeID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// SaveReview persists summary, rating and status of an already-loaded
// review whose fields the service mutated.
func (q *Queries) SaveReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE reviews SET
			summary      = $3,
			rating       = $4,
			status       = $5,
			finalized_at = $6,
			updated_at   = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+reviewColumns,
		r.TenantID, r.ID, toNullString(r.Summary), r.Rating, string(r.Status), toNullTime(r.FinalizedAt),
	)
	return scanReview(row)
}

// TenantAnalytics is the aggregate snapshot behind the analytics
// endpoint.
type TenantAnalytics struct {
	SeatedEmployees    int64
	OpenFeedback       int64
	FeedbackResponses  int64
	FinalizedReviews   int64
	AverageRating      sql.NullFloat64
	ActiveGoals        int64
	CompletedGoals     int64
	ResponsesLast30Day int64
}

// GetTenantAnalytics computes the analytics summary in one round trip.
func (q *Queries) GetTenantAnalytics(ctx context.Context, tenantID uuid.UUID, now time.Time) (*TenantAnalytics, error) {
	var a TenantAnalytics
	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM employees WHERE tenant_id = $1 AND status <> 'offboarded'),
			(SELECT COUNT(*) FROM feedback_requests WHERE tenant_id = $1 AND status = 'open'),
			(SELECT COUNT(*) FROM feedback_responses r JOIN feedback_requests fr ON fr.id = r.request_id WHERE fr.tenant_id = $1),
			(SELECT COUNT(*) FROM reviews WHERE tenant_id = $1 AND status = 'finalized'),
			(SELECT AVG(rating) FROM reviews WHERE tenant_id = $1 AND status = 'finalized'),
			(SELECT COUNT(*) FROM goals WHERE tenant_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM goals WHERE tenant_id = $1 AND status = 'completed'),
			(SELECT COUNT(*) FROM feedback_responses r JOIN feedback_requests fr ON fr.id = r.request_id
				WHERE fr.tenant_id = $1 AND r.created_at > $2)`,
		tenantID, now.Add(-30*24*time.Hour),
	).Scan(&a.SeatedEmployees, &a.OpenFeedback, &a.FeedbackResponses, &a.FinalizedReviews,
		&a.AverageRating, &a.ActiveGoals, &a.CompletedGoals, &a.ResponsesLast30Day)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

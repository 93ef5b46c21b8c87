package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

const feedbackRequestColumns = `fr.id, fr.tenant_id, fr.employee_id, fr.created_by, fr.subject, fr.prompt,
	fr.token_hash, fr.status, fr.expires_at, fr.created_at, fr.closed_at,
	(SELECT COUNT(*) FROM feedback_responses r WHERE r.request_id = fr.id) AS response_count`

func scanFeedbackRequest(row interface{ Scan(...any) error }) (*domain.FeedbackRequest, error) {
	var fr domain.FeedbackRequest
	var status string
	var closedAt sql.NullTime
	err := row.Scan(&fr.ID, &fr.TenantID, &fr.EmployeeID, &fr.CreatedBy, &fr.Subject, &fr.Prompt,
		&fr.TokenHash, &status, &fr.ExpiresAt, &fr.CreatedAt, &closedAt, &fr.ResponseCnt)
	if err != nil {
		return nil, err
	}
	fr.Status = domain.FeedbackRequestStatus(status)
	fr.ClosedAt = fromNullTime(closedAt)
	return &fr, nil
}

// CreateFeedbackRequest inserts a feedback request.
func (q *Queries) CreateFeedbackRequest(ctx context.Context, fr *domain.FeedbackRequest) (*domain.FeedbackRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO feedback_requests AS fr (id, tenant_id, employee_id, created_by, subject, prompt, token_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+feedbackRequestColumns,
		fr.ID, fr.TenantID, fr.EmployeeID, fr.CreatedBy, fr.Subject, fr.Prompt,
		fr.TokenHash, string(fr.Status), fr.ExpiresAt,
	)
	return scanFeedbackRequest(row)
}

// GetFeedbackRequestByID fetches a request scoped to its tenant.
func (q *Queries) GetFeedbackRequestByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.FeedbackRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+feedbackRequestColumns+` FROM feedback_requests fr WHERE fr.tenant_id = $1 AND fr.id = $2`,
		tenantID, id,
	)
	return scanFeedbackRequest(row)
}

// GetFeedbackRequestByTokenHash resolves a public share link. Not
// tenant-scoped: the link itself is the credential.
func (q *Queries) GetFeedbackRequestByTokenHash(ctx context.Context, tokenHash string) (*domain.FeedbackRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+feedbackRequestColumns+` FROM feedback_requests fr WHERE fr.token_hash = $1`,
		tokenHash,
	)
	return scanFeedbackRequest(row)
}

// ListFeedbackRequestsByTenant returns a tenant's requests, newest first.
func (q *Queries) ListFeedbackRequestsByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.FeedbackRequest, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+feedbackRequestColumns+` FROM feedback_requests fr WHERE fr.tenant_id = $1 ORDER BY fr.created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.FeedbackRequest
	for rows.Next() {
		fr, err := scanFeedbackRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, fr)
	}
	return requests, rows.Err()
}

// CloseFeedbackRequest marks a request closed.
func (q *Queries) CloseFeedbackRequest(ctx context.Context, tenantID, id uuid.UUID, closedAt time.Time) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE feedback_requests SET status = 'closed', closed_at = $3
		WHERE tenant_id = $1 AND id = $2 AND status = 'open'`,
		tenantID, id, closedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// CloseExpiredFeedbackRequests closes every open request past expiry
// and returns the number closed. Used by the background worker.
func (q *Queries) CloseExpiredFeedbackRequests(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE feedback_requests SET status = 'closed', closed_at = $1
		WHERE status = 'open' AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateFeedbackResponse inserts an anonymous response.
func (q *Queries) CreateFeedbackResponse(ctx context.Context, r *domain.FeedbackResponse) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO feedback_responses (id, request_id, rating, strengths, improvement)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.RequestID, r.Rating, toNullString(r.Strengths), toNullString(r.Improvement),
	)
	return err
}

// ListFeedbackResponsesByRequest returns all responses for a request.
func (q *Queries) ListFeedbackResponsesByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.FeedbackResponse, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, request_id, rating, strengths, improvement, created_at
		FROM feedback_responses WHERE request_id = $1 ORDER BY created_at`,
		requestID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []*domain.FeedbackResponse
	for rows.Next() {
		var r domain.FeedbackResponse
		var strengths, improvement sql.NullString
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Rating, &strengths, &improvement, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Strengths = fromNullString(strengths)
		r.Improvement = fromNullString(improvement)
		responses = append(responses, &r)
	}
	return responses, rows.Err()
}

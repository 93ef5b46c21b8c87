package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

const goalColumns = `id, tenant_id, employee_id, created_by, title, description, status, progress, due_at, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*domain.Goal, error) {
	var g domain.Goal
	var description sql.NullString
	var status string
	var dueAt sql.NullTime
	err := row.Scan(&g.ID, &g.TenantID, &g.EmployeeID, &g.CreatedBy, &g.Title, &description,
		&status, &g.Progress, &dueAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.Description = fromNullString(description)
	g.Status = domain.GoalStatus(status)
	g.DueAt = fromNullTime(dueAt)
	return &g, nil
}

// CreateGoal inserts a goal and returns the stored record.
func (q *Queries) CreateGoal(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO goals (id, tenant_id, employee_id, created_by, title, description, status, progress, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+goalColumns,
		g.ID, g.TenantID, g.EmployeeID, g.CreatedBy, g.Title, toNullString(g.Description),
		string(g.Status), g.Progress, toNullTime(g.DueAt),
	)
	return scanGoal(row)
}

// GetGoalByID fetches a goal scoped to its tenant.
func (q *Queries) GetGoalByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Goal, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	return scanGoal(row)
}

// ListGoalsByTenant returns a tenant's goals, optionally filtered by
// employee when employeeID is non-nil.
func (q *Queries) ListGoalsByTenant(ctx context.Context, tenantID uuid.UUID, employeeID *uuid.UUID) ([]*domain.Goal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM goals
		WHERE tenant_id = $1 AND ($2::uuid IS NULL OR employee_id = $2)
		ORDER BY created_at DESC`,
		tenantID, toNullUUID(employeeID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SaveGoal persists title, description, status, progress and due date
// of an already-loaded goal whose fields the service mutated.
func (q *Queries) SaveGoal(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE goals SET
			title       = $3,
			description = $4,
			status      = $5,
			progress    = $6,
			due_at      = $7,
			updated_at  = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+goalColumns,
		g.TenantID, g.ID, g.Title, toNullString(g.Description), string(g.Status), g.Progress, toNullTime(g.DueAt),
	)
	return scanGoal(row)
}

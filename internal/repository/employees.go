package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

const employeeColumns = `id, tenant_id, user_id, manager_id, name, email, title, department, status, avatar_key, hired_at, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*domain.Employee, error) {
	var e domain.Employee
	var userID, managerID uuid.NullUUID
	var title, department, avatarKey sql.NullString
	var status string
	var hiredAt sql.NullTime
	err := row.Scan(&e.ID, &e.TenantID, &userID, &managerID, &e.Name, &e.Email,
		&title, &department, &status, &avatarKey, &hiredAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.UserID = fromNullUUID(userID)
	e.ManagerID = fromNullUUID(managerID)
	e.Title = fromNullString(title)
	e.Department = fromNullString(department)
	e.Status = domain.EmployeeStatus(status)
	e.AvatarKey = fromNullString(avatarKey)
	e.HiredAt = fromNullTime(hiredAt)
	return &e, nil
}

// CreateEmployee inserts an employee and returns the stored record.
func (q *Queries) CreateEmployee(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO employees (id, tenant_id, user_id, manager_id, name, email, title, department, status, hired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+employeeColumns,
		e.ID, e.TenantID, toNullUUID(e.UserID), toNullUUID(e.ManagerID), e.Name, e.Email,
		toNullString(e.Title), toNullString(e.Department), string(e.Status), toNullTime(e.HiredAt),
	)
	return scanEmployee(row)
}

// GetEmployeeByID fetches an employee scoped to its tenant. The tenant
// filter is part of the query so cross-tenant reads are impossible at
// this layer, not just in the handlers.
func (q *Queries) GetEmployeeByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Employee, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	return scanEmployee(row)
}

// ListEmployeesByTenant returns a tenant's employees ordered by name.
func (q *Queries) ListEmployeesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Employee, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 ORDER BY name`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// CountSeatedEmployees counts employees consuming a seat (everything
// except offboarded).
func (q *Queries) CountSeatedEmployees(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE tenant_id = $1 AND status <> 'offboarded'`,
		tenantID,
	).Scan(&count)
	return count, err
}

// UpdateEmployee applies a partial update using COALESCE semantics.
func (q *Queries) UpdateEmployee(ctx context.Context, p domain.EmployeeUpdateParams) (*domain.Employee, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	row := q.db.QueryRowContext(ctx, `
		UPDATE employees SET
			name       = COALESCE($3, name),
			email      = COALESCE($4, email),
			title      = COALESCE($5, title),
			department = COALESCE($6, department),
			manager_id = COALESCE($7, manager_id),
			status     = COALESCE($8, status),
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+employeeColumns,
		p.TenantID, p.ID, p.Name, p.Email, p.Title, p.Department, toNullUUID(p.ManagerID), status,
	)
	return scanEmployee(row)
}

// UpdateEmployeeAvatar stores the object key of the employee's avatar.
func (q *Queries) UpdateEmployeeAvatar(ctx context.Context, tenantID, id uuid.UUID, avatarKey string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE employees SET avatar_key = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, avatarKey,
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

// DeleteEmployee removes an employee record entirely. Offboarding is
// the normal flow; hard delete exists for data-removal requests.
func (q *Queries) DeleteEmployee(ctx context.Context, tenantID, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM employees WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
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

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

const userColumns = `id, email, password_hash, name, role, tenant_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var tenantID uuid.NullUUID
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &tenantID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.TenantID = fromNullUUID(tenantID)
	return &u, nil
}

// CreateUser inserts a new user and returns the stored record.
func (q *Queries) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), toNullUUID(u.TenantID),
	)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email (emails are unique).
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	return err
}

// CreateSession inserts a session row.
func (q *Queries) CreateSession(ctx context.Context, s *domain.Session) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.TokenHash, s.ExpiresAt,
	)
	return err
}

// GetUserBySessionTokenHash resolves an unexpired session to its user.
func (q *Queries) GetUserBySessionTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password_hash, u.name, u.role, u.tenant_id, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.expires_at > $2`,
		tokenHash, now,
	)
	return scanUser(row)
}

// DeleteSessionByTokenHash removes a single session (logout).
func (q *Queries) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteSessionsByUserID removes all sessions for a user, e.g. after a
// password change.
func (q *Queries) DeleteSessionsByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry and returns
// the number deleted.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

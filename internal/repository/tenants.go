package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

const tenantColumns = `id, name, subscription_tier, is_active, max_employees, stripe_customer_id, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (*domain.Tenant, error) {
	var t domain.Tenant
	var tier string
	var maxEmployees sql.NullInt32
	var stripeID sql.NullString
	err := row.Scan(&t.ID, &t.Name, &tier, &t.IsActive, &maxEmployees, &stripeID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.SubscriptionTier = domain.SubscriptionTier(tier)
	t.MaxEmployees = fromNullInt32(maxEmployees)
	t.StripeCustomerID = fromNullString(stripeID)
	return &t, nil
}

// CreateTenant inserts a new tenant and returns the stored record.
func (q *Queries) CreateTenant(ctx context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO tenants (id, name, subscription_tier, is_active, max_employees, stripe_customer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+tenantColumns,
		t.ID, t.Name, string(t.SubscriptionTier), t.IsActive, toNullInt32(t.MaxEmployees), toNullString(t.StripeCustomerID),
	)
	return scanTenant(row)
}

// GetTenantByID fetches a tenant by primary key.
func (q *Queries) GetTenantByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

// GetTenantByStripeCustomerID fetches a tenant by its billing customer.
func (q *Queries) GetTenantByStripeCustomerID(ctx context.Context, customerID string) (*domain.Tenant, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE stripe_customer_id = $1`, customerID)
	return scanTenant(row)
}

// ListTenants returns all tenants ordered by creation (platform admin
// surface; tenant counts are small enough to skip pagination for now).
func (q *Queries) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// UpdateTenant applies a partial update using COALESCE semantics.
func (q *Queries) UpdateTenant(ctx context.Context, p domain.TenantUpdateParams) (*domain.Tenant, error) {
	var tier *string
	if p.SubscriptionTier != nil {
		s := string(*p.SubscriptionTier)
		tier = &s
	}
	row := q.db.QueryRowContext(ctx, `
		UPDATE tenants SET
			name              = COALESCE($2, name),
			subscription_tier = COALESCE($3, subscription_tier),
			is_active         = COALESCE($4, is_active),
			max_employees     = COALESCE($5, max_employees),
			updated_at        = now()
		WHERE id = $1
		RETURNING `+tenantColumns,
		p.ID, p.Name, tier, p.IsActive, toNullInt32(p.MaxEmployees),
	)
	return scanTenant(row)
}

// UpdateTenantSubscription sets the tier from a billing event.
func (q *Queries) UpdateTenantSubscription(ctx context.Context, id uuid.UUID, tier domain.SubscriptionTier, active bool) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE tenants SET subscription_tier = $2, is_active = $3, updated_at = now()
		WHERE id = $1`,
		id, string(tier), active,
	)
	return err
}

// UpdateTenantStripeCustomer records the billing customer ID.
func (q *Queries) UpdateTenantStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE tenants SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`,
		id, customerID,
	)
	return err
}

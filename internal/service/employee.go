package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// EmployeeService manages the tenant-scoped employee directory.
// Creation enforces the tenant's seat limit (tier limit or explicit
// override); the limit is re-read on every create so tier changes
// apply immediately.
type EmployeeService interface {
	Create(ctx context.Context, params domain.EmployeeCreateParams) (*domain.Employee, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Employee, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Employee, error)
	Update(ctx context.Context, params domain.EmployeeUpdateParams) (*domain.Employee, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// SeatUsage returns seats used and the effective limit
	// (domain.UnlimitedSeats when uncapped).
	SeatUsage(ctx context.Context, tenantID uuid.UUID) (used int64, limit int, err error)

	// SetAvatar records the storage key of an uploaded avatar.
	SetAvatar(ctx context.Context, tenantID, id uuid.UUID, avatarKey string) error
}

type employeeService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(queries *repository.Queries, logger *slog.Logger) EmployeeService {
	return &employeeService{queries: queries, logger: logger}
}

func (s *employeeService) Create(ctx context.Context, params domain.EmployeeCreateParams) (*domain.Employee, error) {
	const op = "employee.create"

	name := strings.TrimSpace(params.Name)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError(op, "email", "a valid email is required")
	}

	used, limit, err := s.SeatUsage(ctx, params.TenantID)
	if err != nil {
		return nil, err
	}
	if !domain.SeatsUnlimited(limit) && used >= int64(limit) {
		s.logger.Info("seat limit reached",
			"tenant_id", params.TenantID,
			"used", used,
			"limit", limit,
		)
		return nil, domain.SeatLimitExceeded(op, int(used), limit)
	}

	employee, err := s.queries.CreateEmployee(ctx, &domain.Employee{
		ID:         uuid.New(),
		TenantID:   params.TenantID,
		ManagerID:  params.ManagerID,
		Name:       name,
		Email:      email,
		Title:      strings.TrimSpace(params.Title),
		Department: strings.TrimSpace(params.Department),
		Status:     domain.EmployeeStatusActive,
		HiredAt:    params.HiredAt,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "an employee with this email already exists")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, domain.Invalid(op, "manager does not exist in this organization")
		}
		return nil, domain.Internal(err, op, "failed to create employee")
	}
	return employee, nil
}

func (s *employeeService) Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.Employee, error) {
	const op = "employee.get"
	employee, err := s.queries.GetEmployeeByID(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "employee", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load employee")
	}
	return employee, nil
}

func (s *employeeService) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Employee, error) {
	const op = "employee.list"
	employees, err := s.queries.ListEmployeesByTenant(ctx, tenantID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list employees")
	}
	return employees, nil
}

func (s *employeeService) Update(ctx context.Context, params domain.EmployeeUpdateParams) (*domain.Employee, error) {
	const op = "employee.update"

	if params.Status != nil {
		switch *params.Status {
		case domain.EmployeeStatusActive, domain.EmployeeStatusOnLeave, domain.EmployeeStatusOffboard:
		default:
			return nil, domain.Invalid(op, "unknown employee status "+string(*params.Status))
		}
	}

	employee, err := s.queries.UpdateEmployee(ctx, params)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "employee", params.ID.String())
		}
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "an employee with this email already exists")
		}
		return nil, domain.Internal(err, op, "failed to update employee")
	}
	return employee, nil
}

func (s *employeeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	const op = "employee.delete"
	if err := s.queries.DeleteEmployee(ctx, tenantID, id); err != nil {
		if repository.IsNotFound(err) {
			return domain.NotFound(op, "employee", id.String())
		}
		return domain.Internal(err, op, "failed to delete employee")
	}
	return nil
}

func (s *employeeService) SeatUsage(ctx context.Context, tenantID uuid.UUID) (int64, int, error) {
	const op = "employee.seats"

	tenant, err := s.queries.GetTenantByID(ctx, tenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, 0, domain.NotFound(op, "tenant", tenantID.String())
		}
		return 0, 0, domain.Internal(err, op, "failed to load tenant")
	}

	used, err := s.queries.CountSeatedEmployees(ctx, tenantID)
	if err != nil {
		return 0, 0, domain.Internal(err, op, "failed to count employees")
	}
	return used, tenant.SeatLimit(), nil
}

func (s *employeeService) SetAvatar(ctx context.Context, tenantID, id uuid.UUID, avatarKey string) error {
	const op = "employee.avatar"
	if err := s.queries.UpdateEmployeeAvatar(ctx, tenantID, id, avatarKey); err != nil {
		if repository.IsNotFound(err) {
			return domain.NotFound(op, "employee", id.String())
		}
		return domain.Internal(err, op, "failed to update avatar")
	}
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeStatus is the lifecycle state of an employee record.
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusOnLeave  EmployeeStatus = "on_leave"
	EmployeeStatusOffboard EmployeeStatus = "offboarded"
)

// Employee is a tenant-scoped directory record. Employees are distinct
// from login users: most employees never log in, but every employee
// counts against the tenant's seat limit while active.
type Employee struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	UserID     *uuid.UUID // Linked login account, if any
	ManagerID  *uuid.UUID // Reporting line within the same tenant
	Name       string
	Email      string
	Title      string
	Department string
	Status     EmployeeStatus
	AvatarKey  string // Object storage key, empty if no avatar
	HiredAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CountsAgainstSeats returns true if the employee consumes a seat.
// Offboarded employees free their seat immediately.
func (e *Employee) CountsAgainstSeats() bool {
	return e.Status != EmployeeStatusOffboard
}

// EmployeeCreateParams contains validated employee creation input.
type EmployeeCreateParams struct {
	TenantID   uuid.UUID
	Name       string
	Email      string
	Title      string
	Department string
	ManagerID  *uuid.UUID
	HiredAt    *time.Time
}

// EmployeeUpdateParams contains employee update input. Nil fields are
// left untouched.
type EmployeeUpdateParams struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	Name       *string
	Email      *string
	Title      *string
	Department *string
	ManagerID  *uuid.UUID
	Status     *EmployeeStatus
}

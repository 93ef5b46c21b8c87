// Package domain contains core business types and interfaces.
//
// This file defines the User domain type and related types for
// authentication. These types are separate from the repository row
// types so business logic never depends on the database layer.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's role within the platform.
type Role string

const (
	// RolePlatformAdmin is the platform operator super-scope. Platform
	// admins bypass tier-based feature checks entirely; they are never
	// feature-gated.
	RolePlatformAdmin Role = "platform_admin"
	RoleTenantAdmin   Role = "tenant_admin"
	RoleManager       Role = "manager"
	RoleEmployee      Role = "employee"
)

// ParseRole validates an inbound role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePlatformAdmin, RoleTenantAdmin, RoleManager, RoleEmployee:
		return Role(s), nil
	}
	return "", Invalid("role.parse", "unknown role "+s)
}

// User represents a registered user of the Tandem platform.
//
// A user belongs to at most one tenant. Platform admins have no tenant
// (TenantID is nil for them, but a nil TenantID alone does not make a
// user a platform admin).
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Never expose this in API responses
	Name         string
	Role         Role
	TenantID     *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPlatformAdmin returns true for platform operators.
func (u *User) IsPlatformAdmin() bool {
	return u.Role == RolePlatformAdmin
}

// CanManageTenant returns true if the user can administer tenant
// settings (employees, billing).
func (u *User) CanManageTenant() bool {
	return u.Role == RolePlatformAdmin || u.Role == RoleTenantAdmin
}

// CanManageEmployees returns true if the user can create and edit
// employee records and reviews.
func (u *User) CanManageEmployees() bool {
	return u.Role == RolePlatformAdmin || u.Role == RoleTenantAdmin || u.Role == RoleManager
}

// DisplayName returns the user's name, or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session represents an authenticated session.
//
// Sessions are stored with a SHA-256 hash of the token; the raw token
// is only given to the client once at login.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// RegisterParams contains the validated parameters for user registration.
type RegisterParams struct {
	Email      string
	Password   string // Raw password, hashed by the service
	Name       string
	TenantName string // Creates a new tenant when registering an org
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	User  *User
	Token string // Raw session token, only returned once
}

// PasswordChangeParams contains parameters for changing a password.
type PasswordChangeParams struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

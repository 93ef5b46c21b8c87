package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/middleware"
)

// pathUUID parses a UUID path value from a Go 1.22 route pattern.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("", "invalid "+name)
	}
	return id, nil
}

// requireTenant resolves the caller's tenant. Platform admins have no
// tenant of their own and cannot use tenant-scoped routes directly.
func requireTenant(r *http.Request) (*domain.User, uuid.UUID, error) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		return nil, uuid.Nil, domain.Unauthorized("", "authentication required")
	}
	if user.TenantID == nil {
		return nil, uuid.Nil, domain.Forbidden("", "this operation requires a tenant account")
	}
	return user, *user.TenantID, nil
}

// optionalEmployeeFilter reads an optional ?employeeId= query param.
func optionalEmployeeFilter(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("employeeId")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.Invalid("", "invalid employeeId filter")
	}
	return &id, nil
}

package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/storage"
)

// MaxAvatarUploadBytes caps raw avatar uploads.
const MaxAvatarUploadBytes = 5 << 20

// EmployeeHandler serves the tenant employee directory.
type EmployeeHandler struct {
	employees service.EmployeeService
	avatars   service.AvatarProcessor
	store     storage.Storage
	logger    *slog.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(employees service.EmployeeService, avatars service.AvatarProcessor, store storage.Storage, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employees: employees,
		avatars:   avatars,
		store:     store,
		logger:    logger,
	}
}

type employeeResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Title      string     `json:"title,omitempty"`
	Department string     `json:"department,omitempty"`
	ManagerID  *uuid.UUID `json:"managerId,omitempty"`
	Status     string     `json:"status"`
	HasAvatar  bool       `json:"hasAvatar"`
	HiredAt    *time.Time `json:"hiredAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toEmployeeResponse(e *domain.Employee) employeeResponse {
	return employeeResponse{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Title:      e.Title,
		Department: e.Department,
		ManagerID:  e.ManagerID,
		Status:     string(e.Status),
		HasAvatar:  e.AvatarKey != "",
		HiredAt:    e.HiredAt,
		CreatedAt:  e.CreatedAt,
	}
}

// List handles GET /api/employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	employees, err := h.employees.List(r.Context(), tenantID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	used, limit, err := h.employees.SeatUsage(r.Context(), tenantID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employees": out,
		"seatsUsed": used,
		"seatLimit": limit,
	})
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		Name       string     `json:"name"`
		Email      string     `json:"email"`
		Title      string     `json:"title"`
		Department string     `json:"department"`
		ManagerID  *uuid.UUID `json:"managerId"`
		HiredAt    *time.Time `json:"hiredAt"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	employee, err := h.employees.Create(r.Context(), domain.EmployeeCreateParams{
		TenantID:   tenantID,
		Name:       req.Name,
		Email:      req.Email,
		Title:      req.Title,
		Department: req.Department,
		ManagerID:  req.ManagerID,
		HiredAt:    req.HiredAt,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(employee))
}

// Get handles GET /api/employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	employee, err := h.employees.Get(r.Context(), tenantID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

// Update handles PATCH /api/employees/{id}.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		Name       *string                `json:"name"`
		Email      *string                `json:"email"`
		Title      *string                `json:"title"`
		Department *string                `json:"department"`
		ManagerID  *uuid.UUID             `json:"managerId"`
		Status     *domain.EmployeeStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	employee, err := h.employees.Update(r.Context(), domain.EmployeeUpdateParams{
		ID:         id,
		TenantID:   tenantID,
		Name:       req.Name,
		Email:      req.Email,
		Title:      req.Title,
		Department: req.Department,
		ManagerID:  req.ManagerID,
		Status:     req.Status,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

// Delete handles DELETE /api/employees/{id}.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.employees.Delete(r.Context(), tenantID, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar handles PUT /api/employees/{id}/avatar. The upload is
// normalized to a bounded JPEG before it reaches storage.
func (h *EmployeeHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !storage.AllowedAvatarTypes[contentType] {
		ErrorResponse(w, r, h.logger, domain.Invalid("employee.avatar", "avatar must be a JPEG, PNG or WebP image"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxAvatarUploadBytes))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("employee.avatar", "avatar upload too large"))
		return
	}

	processed, err := h.avatars.Process(bytes.NewReader(body))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("employee.avatar", "could not process image"))
		return
	}

	key := storage.AvatarKey(tenantID, "avatar.jpg")
	err = h.store.Put(r.Context(), key, bytes.NewReader(processed), storage.PutOptions{
		ContentType: "image/jpeg",
		Overwrite:   true,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, "employee.avatar", "failed to store avatar"))
		return
	}

	if err := h.employees.SetAvatar(r.Context(), tenantID, id, key); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hasAvatar": true})
}

// GetAvatar handles GET /api/employees/{id}/avatar.
func (h *EmployeeHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	employee, err := h.employees.Get(r.Context(), tenantID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if employee.AvatarKey == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}

	obj, info, err := h.store.Get(r.Context(), employee.AvatarKey)
	if err != nil {
		if storage.IsNotFound(err) {
			NotFoundResponse(w, r, h.logger)
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, "employee.avatar", "failed to load avatar"))
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = io.Copy(w, obj)
}

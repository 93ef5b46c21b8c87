package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/service"
)

// GoalHandler serves goal tracking endpoints.
type GoalHandler struct {
	goals  service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goals service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logger}
}

type goalResponse struct {
	ID          uuid.UUID  `json:"id"`
	EmployeeID  uuid.UUID  `json:"employeeId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toGoalResponse(g *domain.Goal) goalResponse {
	return goalResponse{
		ID:          g.ID,
		EmployeeID:  g.EmployeeID,
		Title:       g.Title,
		Description: g.Description,
		Status:      string(g.Status),
		Progress:    g.Progress,
		DueAt:       g.DueAt,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// Create handles POST /api/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		EmployeeID  uuid.UUID  `json:"employeeId"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		DueAt       *time.Time `json:"dueAt"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), domain.GoalCreateParams{
		TenantID:    tenantID,
		EmployeeID:  req.EmployeeID,
		CreatedBy:   user.ID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(goal))
}

// List handles GET /api/goals with an optional employeeId filter.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	employeeID, err := optionalEmployeeFilter(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goals, err := h.goals.List(r.Context(), tenantID, employeeID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

// Get handles GET /api/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	goal, err := h.goals.Get(r.Context(), tenantID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

// Update handles PATCH /api/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Status      *domain.GoalStatus `json:"status"`
		Progress    *int               `json:"progress"`
		DueAt       *time.Time         `json:"dueAt"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Update(r.Context(), domain.GoalUpdateParams{
		ID:          id,
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Progress:    req.Progress,
		DueAt:       req.DueAt,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

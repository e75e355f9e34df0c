package lead

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

// List serves GET /api/leads/assign.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), internal.DefaultTimeout)
	defer cancel()

	assignments, err := h.Service.List(ctx)
	if err != nil {
		h.Logger.Error("failed to read lead assignments", "error", err)
		h.WriteAppError(w, internal.NewStorageError("Failed to read lead assignments", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"leads": assignments})
}

// Assign serves POST /api/leads/assign.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var dto AssignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	actor := "system"
	if session, ok := internal.SessionFromContext(r.Context()); ok {
		actor = session.Username
	}

	ctx, cancel := internal.WithTimeout(r.Context(), internal.DefaultTimeout)
	defer cancel()

	assignment, err := h.Service.Assign(ctx, dto.LeadName, dto.EmployeeID, dto.EmployeeName, dto.Source, actor)
	if err != nil {
		h.Logger.Error("failed to assign lead", "error", err)
		h.WriteAppError(w, internal.NewStorageError("Failed to assign lead", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"assignment": assignment,
		"message":    fmt.Sprintf("Lead %q successfully assigned to %s", assignment.LeadName, assignment.EmployeeName),
	})
}

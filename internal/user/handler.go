package user

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/audit"
	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Audit   *audit.Service
}

func NewHandler(svc *Service, auditSvc *audit.Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
		Audit:       auditSvc,
	}
}

// List serves GET /api/users. Manager only (route-level gate).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	sanitized := make([]datamodel.User, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitized()
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": sanitized})
}

// Create serves POST /api/users. Manager only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := internal.SessionFromContext(r.Context())

	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.Audit.TryRecord(r.Context(), auditmodel.Entry{
		Action:  auditmodel.ActionCreateUser,
		User:    session.Username,
		Source:  "admin-dashboard",
		Details: fmt.Sprintf("Created new %s user: %s (%s)", created.Role, created.Name, created.Username),
	})

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": created.Sanitized()})
}

// Get serves GET /api/users/{id}. Manager, or the user themselves.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := internal.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if session.Role != string(datamodel.RoleManager) && session.UserID != id {
		h.WriteAppError(w, internal.ErrInsufficientRole)
		return
	}

	u, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": u.Sanitized()})
}

// Update serves PUT /api/users/{id}. Managers may change any field;
// everyone else only password and email on their own record.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	session, _ := internal.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	isManager := session.Role == string(datamodel.RoleManager)
	isSelf := session.UserID == id
	if !isManager && !isSelf {
		h.WriteAppError(w, internal.ErrInsufficientRole)
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source := "admin-dashboard"
	if !isManager {
		dto = dto.SelfServiceOnly()
		source = "profile"
	}

	updated, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	details := fmt.Sprintf("Updated user: %s (%s)", updated.Name, updated.Username)
	if !isManager {
		details = "Updated own profile"
	}
	h.Audit.TryRecord(r.Context(), auditmodel.Entry{
		Action:  auditmodel.ActionUpdateUser,
		User:    session.Username,
		Source:  source,
		Details: details,
	})

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": updated.Sanitized()})
}

// Delete serves DELETE /api/users/{id}. Manager only; self-deletion is
// rejected here, not in the directory.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	session, _ := internal.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if id == session.UserID {
		h.WriteAppError(w, internal.ErrSelfDelete)
		return
	}

	target, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	removed, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !removed {
		h.WriteAppError(w, internal.ErrUserNotFound)
		return
	}

	h.Audit.TryRecord(r.Context(), auditmodel.Entry{
		Action:  auditmodel.ActionDeleteUser,
		User:    session.Username,
		Source:  "admin-dashboard",
		Details: fmt.Sprintf("Deleted user: %s (%s)", target.Name, target.Username),
	})

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// TemporaryInactive serves POST /api/users/{id}/temporary-inactive.
// Allowed for bdc/manager on anyone, and for a salesperson on themselves.
func (h *Handler) TemporaryInactive(w http.ResponseWriter, r *http.Request) {
	session, _ := internal.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var dto TemporaryInactiveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	target, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	isSelf := session.UserID == id
	isBDCOrManager := datamodel.Role(session.Role).Level() >= datamodel.RoleBDC.Level()
	if !(isSelf && target.Role == datamodel.RoleSalesperson) && !isBDCOrManager {
		h.WriteAppError(w, internal.ErrInsufficientRole)
		return
	}

	updated, err := h.Service.SetTemporaryInactive(r.Context(), id, dto.Minutes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	source := "admin-dashboard"
	if isSelf {
		source = "self-action"
	}
	h.Audit.TryRecord(r.Context(), auditmodel.Entry{
		Action: auditmodel.ActionTemporaryInactive,
		User:   session.Username,
		Source: source,
		Details: fmt.Sprintf("%s set to inactive for %d minutes (until %s)",
			updated.Name, dto.Minutes, updated.TemporaryInactiveUntil.Format("15:04:05")),
	})

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":                     updated.ID,
			"name":                   updated.Name,
			"isActive":               false,
			"temporaryInactiveUntil": updated.TemporaryInactiveUntil,
		},
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.Logger.Error("user directory error", "error", err)
	h.WriteAppError(w, internal.NewInternalError("Internal server error", err))
}

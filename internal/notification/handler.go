package notification

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service    *Service
	Dispatcher *Dispatcher
}

func NewHandler(svc *Service, dispatcher *Dispatcher) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
		Dispatcher:  dispatcher,
	}
}

// GetSettings serves GET /api/notifications/settings. Manager only.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Settings(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

// UpdateSettings serves PUT /api/notifications/settings. Manager only.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	updated, err := h.Service.Update(r.Context(), dto.ToModel())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": updated,
	})
}

// SendTest serves POST /api/notifications/test. Manager only.
func (h *Handler) SendTest(w http.ResponseWriter, r *http.Request) {
	if err := h.Dispatcher.SendTest(r.Context()); err != nil {
		h.Logger.Error("test notification failed", "error", err)
		h.WriteAppError(w, internal.NewInternalError("Failed to send test notification", err))
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test notification sent",
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.Logger.Error("notification settings error", "error", err)
	h.WriteAppError(w, internal.NewInternalError("Internal server error", err))
}

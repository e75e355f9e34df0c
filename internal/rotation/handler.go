package rotation

import (
	"encoding/json"
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

// GetState serves GET /api/system-state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), internal.DefaultTimeout)
	defer cancel()

	state, err := h.Service.GetState(ctx)
	if err != nil {
		h.Logger.Error("failed to read system state", "error", err)
		h.writeServiceError(w, err, "Failed to read system state")
		return
	}

	h.WriteJSON(w, http.StatusOK, state)
}

// Apply serves POST /api/system-state.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var dto ActionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := "system"
	if session, ok := internal.SessionFromContext(r.Context()); ok {
		actor = session.Username
	}

	ctx, cancel := internal.WithTimeout(r.Context(), internal.DefaultTimeout)
	defer cancel()

	state, err := h.Service.Apply(ctx, dto, actor)
	if err != nil {
		h.Logger.Error("failed to apply rotation action", "action", dto.Action, "error", err)
		h.writeServiceError(w, err, "Failed to update system state")
		return
	}

	h.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteAppError(w, internal.NewStorageError(fallback, err))
}

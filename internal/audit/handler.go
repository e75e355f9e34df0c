package audit

import (
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

// List serves GET /api/audit-log.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to read audit log", "error", err)
		h.WriteAppError(w, internal.NewStorageError("Failed to read audit log", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

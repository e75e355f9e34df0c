package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/transport"
)

// CookieName is the httpOnly session cookie set alongside the bearer
// token, so both browser and API clients can authenticate.
const CookieName = "auth-token"

type Handler struct {
	*transport.BaseHandler
	Service    *Service
	CookieTTL  time.Duration
	SecureMode bool
}

func NewHandler(svc *Service, cookieTTL time.Duration, secureMode bool) *Handler {
	if cookieTTL <= 0 {
		cookieTTL = 24 * time.Hour
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
		CookieTTL:   cookieTTL,
		SecureMode:  secureMode,
	}
}

// Login serves POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteAppError(w, appErr)
			return
		}
		h.Logger.Error("login failed", "error", err)
		h.WriteAppError(w, internal.NewInternalError("Login failed", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureMode,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    u.Sanitized(),
		"token":   token,
	})
}

// Logout serves POST /api/auth/logout: clears the cookie and audits. The
// route runs behind OptionalSession, so the audit entry names the acting
// user when the token is still valid.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	username := ""
	if session, ok := internal.SessionFromContext(r.Context()); ok {
		username = session.Username
	}

	h.Service.Logout(r.Context(), username)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureMode,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Check serves GET /api/auth/check: bearer header first, then cookie.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractToken(r, CookieName)
	if token == "" {
		h.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{"authenticated": false})
		return
	}

	session, err := h.Service.Verify(token)
	if err != nil {
		h.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{"authenticated": false})
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": map[string]interface{}{
			"userId":   session.UserID,
			"username": session.Username,
			"role":     session.Role,
			"name":     session.Name,
		},
	})
}

package middleware

import (
	"net/http"

	"github.com/frahmantamala/lead-rotation/internal"
	usermodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
)

// SessionVerifier turns a raw token into a session, or errors when the
// token is missing, malformed or expired.
type SessionVerifier interface {
	Verify(token string) (*internal.Session, error)
}

const sessionCookieName = "auth-token"

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// RequireSession rejects anonymous requests and puts the verified
// session into the request context for handlers downstream.
func RequireSession(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "Authentication required")
				return
			}

			session, err := verifier.Verify(token)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := internal.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree on a minimum role level. Must be mounted
// after RequireSession.
func RequireRole(minimum usermodel.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := internal.SessionFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "Authentication required")
				return
			}

			if usermodel.Role(session.Role).Level() < minimum.Level() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"type":"forbidden","code":"insufficient_role","message":"Insufficient permissions"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OptionalSession attaches a session when a valid token is present but
// never rejects the request. Public endpoints use it so audit entries
// can still name the acting user.
func OptionalSession(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if session, err := verifier.Verify(token); err == nil {
					r = r.WithContext(internal.ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"type":"unauthorized","code":"invalid_token","message":"` + message + `"}}`))
}

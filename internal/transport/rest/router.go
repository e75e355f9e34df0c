package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/lead-rotation/internal/audit"
	"github.com/frahmantamala/lead-rotation/internal/auth"
	usermodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/lead"
	"github.com/frahmantamala/lead-rotation/internal/notification"
	"github.com/frahmantamala/lead-rotation/internal/rotation"
	"github.com/frahmantamala/lead-rotation/internal/storage"
	"github.com/frahmantamala/lead-rotation/internal/transport/middleware"
	"github.com/frahmantamala/lead-rotation/internal/transport/swagger"
	"github.com/frahmantamala/lead-rotation/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	store storage.Store,
	authHandler *auth.Handler,
	authService *auth.Service,
	rotationHandler *rotation.Handler,
	streamHandler *rotation.StreamHandler,
	auditHandler *audit.Handler,
	leadHandler *lead.Handler,
	userHandler *user.Handler,
	notificationHandler *notification.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(store)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		// Health check routes
		r.Get("/storage/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.With(middleware.OptionalSession(authService)).Post("/logout", authHandler.Logout)
			sr.Get("/check", authHandler.Check)
		})

		// Public read access: the rotation board is a wall display
		r.Get("/system-state", rotationHandler.GetState)
		r.Get("/system-state/stream", streamHandler.ServeHTTP)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireSession(authService))

			// Mutating rotation, audit and lead routes need bdc or above
			pr.Group(func(br chi.Router) {
				br.Use(middleware.RequireRole(usermodel.RoleBDC))

				br.Post("/system-state", rotationHandler.Apply)
				br.Get("/audit-log", auditHandler.List)

				br.Route("/leads", func(lr chi.Router) {
					lr.Get("/assign", leadHandler.List)
					lr.Post("/assign", leadHandler.Assign)
				})
			})

			// User directory: list/create/delete are manager-only, the
			// per-user routes enforce manager-or-self inside the handler
			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(mr chi.Router) {
					mr.Use(middleware.RequireRole(usermodel.RoleManager))
					mr.Get("/", userHandler.List)
					mr.Post("/", userHandler.Create)
					mr.Delete("/{id}", userHandler.Delete)
				})

				ur.Get("/{id}", userHandler.Get)
				ur.Put("/{id}", userHandler.Update)
				ur.Post("/{id}/temporary-inactive", userHandler.TemporaryInactive)
			})

			// Notification settings are manager-only
			pr.Group(func(mr chi.Router) {
				mr.Use(middleware.RequireRole(usermodel.RoleManager))

				mr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/settings", notificationHandler.GetSettings)
					nr.Put("/settings", notificationHandler.UpdateSettings)
					nr.Post("/test", notificationHandler.SendTest)
				})
			})
		})
	})
}

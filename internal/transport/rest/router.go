package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/satyapradip/employee-task-management/internal/auth"
	"github.com/satyapradip/employee-task-management/internal/passwordreset"
	"github.com/satyapradip/employee-task-management/internal/task"
	"github.com/satyapradip/employee-task-management/internal/transport/middleware"
	"github.com/satyapradip/employee-task-management/internal/transport/swagger"
	"github.com/satyapradip/employee-task-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, resetHandler *passwordreset.Handler, userHandler *user.Handler, taskHandler *task.Handler, roles *auth.RoleAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/logout", authHandler.Logout)
		})

		// Password reset lifecycle: request, pre-validate, complete. All
		// public; the token in the path is the credential.
		r.Post("/forgot-password", resetHandler.ForgotPassword)
		r.Get("/reset-password/{token}", resetHandler.VerifyResetToken)
		r.Post("/reset-password/{token}", resetHandler.ResetPassword)

		// Public lookup for the category picker
		r.Get("/categories", taskHandler.ListCategories)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", authHandler.Me)
			pr.Post("/users/me/password", authHandler.ChangePassword)

			// User management. Single-account reads allow the owner as well
			// as admins; the handler checks the principal against the path
			// id. Everything else is admin-only.
			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/{id}", userHandler.GetUser)

				ur.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Post("/", userHandler.CreateUser)
					ar.Get("/", userHandler.ListUsers)
					ar.Patch("/{id}", userHandler.UpdateUser)
					ar.Delete("/{id}", userHandler.DeactivateUser)
					ar.Post("/{id}/reactivate", userHandler.ReactivateUser)
				})
			})

			// Task routes. The service scopes reads and guards transitions,
			// so only the admin-only writes carry the role middleware.
			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", taskHandler.ListTasks)
				tr.Get("/{id}", taskHandler.GetTask)

				tr.Patch("/{id}/accept", taskHandler.AcceptTask)
				tr.Patch("/{id}/complete", taskHandler.CompleteTask)
				tr.Patch("/{id}/fail", taskHandler.FailTask)

				tr.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Post("/", taskHandler.CreateTask)
					ar.Patch("/{id}", taskHandler.UpdateTask)
					ar.Delete("/{id}", taskHandler.DeleteTask)
					ar.Get("/stats", taskHandler.TaskStats)
				})
			})
		})
	})
}

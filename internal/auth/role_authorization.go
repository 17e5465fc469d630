package auth

import (
	"log/slog"
	"net/http"

	"github.com/satyapradip/employee-task-management/internal"
)

// RoleAuthorization gates routes on exact role match. There is no hierarchy:
// RequireRole("employee") rejects admins, and admin-only routes use
// RequireAdmin explicitly.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				ra.logger.Warn("authorization check failed: principal not in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if principal.Role != role {
				ra.logger.WarnContext(r.Context(), "access denied: role mismatch",
					"user_id", principal.ID,
					"required_role", role,
					"user_role", principal.Role)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRole("admin")
}

func (ra *RoleAuthorization) RequireEmployee() func(http.Handler) http.Handler {
	return ra.RequireRole("employee")
}

package middleware

import (
	"net/http"

	"github.com/acme/identity-service/internal/domain"
)

// RequireAtLeast enforces the role hierarchy: ADMIN >= USER.
// Assumes Auth() has already injected the role into context.
func RequireAtLeast(minRole string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				// Auth not applied or context missing
				writeErr(w, r, domain.ErrAccessTokenInvalid())
				return
			}

			if !domain.IsValidRole(domain.NormalizeRole(role)) || !domain.IsValidRole(minRole) {
				writeErr(w, r, domain.ErrForbidden())
				return
			}

			if domain.RoleRank(role) < domain.RoleRank(minRole) {
				writeErr(w, r, domain.ErrInsufficientRole(minRole))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

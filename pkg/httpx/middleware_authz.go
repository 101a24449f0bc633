package httpx

import (
	"net/http"
	"slices"
)

// RequireRole lets the request through only if the authenticated caller has
// one of roles. It must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteUnauthorized(w, "authentication required")
				return
			}

			if !slices.Contains(roles, id.Role) {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

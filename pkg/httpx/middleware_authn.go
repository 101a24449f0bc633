package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

// TokenValidatorFunc checks a raw session token and returns who it belongs to.
type TokenValidatorFunc func(ctx context.Context, token string) (Identity, error)

// ErrorWriter renders a validation failure. Implementations decide the
// status code for each error class.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// AuthnMiddleware authenticates requests with a bearer token or, failing
// that, the named cookie. A nil onError answers every failure with 401.
func AuthnMiddleware(validate TokenValidatorFunc, cookieName string, onError ErrorWriter) Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			WriteUnauthorized(w, "unauthorized")
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := TokenFromRequest(r, cookieName)
			if raw == "" {
				WriteUnauthorized(w, "authentication required")
				return
			}

			id, err := validate(ctx, raw)
			if err != nil {
				log.Warn("token validation failed", "err", err)
				onError(w, r, err)
				return
			}

			ctx = ContextWithIdentity(ctx, id)
			ctx = slogx.With(ctx, "user_id", id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest returns the bearer token from the Authorization header or
// the value of cookieName. The header wins when both are present.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, token, ok := strings.Cut(authz, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WriteUnauthorized writes a 401 envelope with an RFC 6750 challenge.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, message)
}

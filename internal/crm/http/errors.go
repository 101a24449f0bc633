package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

// writeServiceError maps the service error taxonomy onto status codes.
// Unexpected errors are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, httpx.ErrBadBody):
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, service.ErrDuplicateAccount):
		httpx.WriteError(w, http.StatusBadRequest, service.ErrDuplicateAccount.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteUnauthorized(w, service.ErrInvalidToken.Error())
	case errors.Is(err, service.ErrSessionRevoked):
		httpx.WriteUnauthorized(w, service.ErrSessionRevoked.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Error("storage unavailable", "err", err)
		w.Header().Set("Retry-After", "5")
		httpx.WriteError(w, http.StatusServiceUnavailable, service.ErrStorageUnavailable.Error())
	case errors.Is(err, service.ErrOverloaded):
		log.Warn("request shed", "err", err)
		w.Header().Set("Retry-After", "1")
		httpx.WriteError(w, http.StatusServiceUnavailable, service.ErrOverloaded.Error())
	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeAuthnError renders token validation failures for AuthnMiddleware.
// Storage outages surface as 503 so clients do not discard a valid token.
func writeAuthnError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrStorageUnavailable):
		writeServiceError(w, r, err)
	case errors.Is(err, service.ErrSessionRevoked):
		httpx.WriteUnauthorized(w, service.ErrSessionRevoked.Error())
	default:
		httpx.WriteUnauthorized(w, service.ErrInvalidToken.Error())
	}
}

// actorFromRequest returns the authenticated caller set by AuthnMiddleware.
func actorFromRequest(r *http.Request) (service.Actor, bool) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id.UserID, Role: domainRole(id.Role)}, true
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/pkg/crmsdk"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
)

type UsersHandler struct {
	AuthService *service.AuthService
}

// HandleUpdate lets an administrator change another account.
//
//	@Summary		Update user
//	@Description	Changes the role or active flag of an account. Deactivating an account revokes its sessions.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"User ID"
//	@Param			request	body		crmsdk.AdminUpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	crmsdk.UserEnvelope
//	@Failure		400		{object}	crmsdk.ErrorResponse
//	@Failure		401		{object}	crmsdk.ErrorResponse
//	@Failure		403		{object}	crmsdk.ErrorResponse
//	@Failure		404		{object}	crmsdk.ErrorResponse
//	@Router			/api/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.AdminUpdateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var role *domain.Role
	if req.Role != nil {
		rl := domain.Role(*req.Role)
		role = &rl
	}

	u, err := h.AuthService.AdminUpdateUser(r.Context(), r.PathValue("id"), role, req.Active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toSDKUser(u))
}

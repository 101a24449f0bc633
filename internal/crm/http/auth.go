package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/pkg/crmsdk"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
)

// DefaultCookieName carries the session token for browser clients.
const DefaultCookieName = "auth_token"

type AuthHandler struct {
	AuthService  *service.AuthService
	CookieName   string
	SecureCookie bool
}

func domainRole(s string) domain.Role { return domain.Role(s) }

func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{IP: httpx.IPKeyExtractor(r), UserAgent: r.UserAgent()}
}

func toSDKUser(u domain.PublicUser) crmsdk.User {
	return crmsdk.User{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          string(u.Role),
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

func toAuthResponse(res service.AuthResult) crmsdk.AuthResponse {
	return crmsdk.AuthResponse{User: toSDKUser(res.User), Token: res.Token, ExpiresAt: res.ExpiresAt}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleSignUp registers an account.
//
//	@Summary		Sign up
//	@Description	Creates an account and signs it in. The session token is returned and set as the auth_token cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		crmsdk.SignUpRequest	true	"Account details"
//	@Success		201		{object}	crmsdk.AuthEnvelope
//	@Failure		400		{object}	crmsdk.ErrorResponse	"Validation error or duplicate account"
//	@Failure		429		{object}	crmsdk.ErrorResponse
//	@Failure		503		{object}	crmsdk.ErrorResponse
//	@Router			/api/auth/signup [post].
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.SignUpRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password, req.DisplayName, clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	httpx.WriteSuccess(w, http.StatusCreated, toAuthResponse(res))
}

// HandleSignIn checks credentials and issues a session.
//
//	@Summary		Sign in
//	@Description	Issues a session token and deactivates any earlier session of the account.
//	@Description	Unknown emails and wrong passwords produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		crmsdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	crmsdk.AuthEnvelope
//	@Failure		400		{object}	crmsdk.ErrorResponse
//	@Failure		401		{object}	crmsdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	crmsdk.ErrorResponse
//	@Failure		503		{object}	crmsdk.ErrorResponse
//	@Router			/api/auth/signin [post].
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.SignInRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.AuthService.SignIn(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	httpx.WriteSuccess(w, http.StatusOK, toAuthResponse(res))
}

// HandleSignOut revokes all sessions of the caller.
//
//	@Summary	Sign out
//	@Tags		Auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	crmsdk.SuccessResponse
//	@Failure	401	{object}	crmsdk.ErrorResponse
//	@Router		/api/auth/signout [post].
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.AuthService.SignOut(r.Context(), actor.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, crmsdk.SuccessResponse{Success: true})
}

// HandleMe returns the caller's account.
//
//	@Summary	Current user
//	@Tags		Auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	crmsdk.UserEnvelope
//	@Failure	401	{object}	crmsdk.ErrorResponse
//	@Failure	404	{object}	crmsdk.ErrorResponse
//	@Router		/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	u, err := h.AuthService.Me(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toSDKUser(u))
}

// HandleUpdateMe changes the caller's display name.
//
//	@Summary	Update profile
//	@Tags		Auth
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		crmsdk.UpdateProfileRequest	true	"Profile fields"
//	@Success	200		{object}	crmsdk.UserEnvelope
//	@Failure	400		{object}	crmsdk.ErrorResponse
//	@Failure	401		{object}	crmsdk.ErrorResponse
//	@Router		/api/auth/me [patch].
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	var req crmsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	u, err := h.AuthService.UpdateProfile(r.Context(), actor.UserID, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toSDKUser(u))
}

// HandleChangePassword replaces the caller's password and revokes every
// session, including the one used for this request.
//
//	@Summary	Change password
//	@Tags		Auth
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		crmsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success	200		{object}	crmsdk.SuccessResponse
//	@Failure	400		{object}	crmsdk.ErrorResponse
//	@Failure	401		{object}	crmsdk.ErrorResponse
//	@Router		/api/auth/password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	var req crmsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, crmsdk.SuccessResponse{Success: true})
}

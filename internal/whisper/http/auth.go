package http

import (
	"net/http"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/service"
	"github.com/aussiebroadwan/whisper/pkg/httpx"
	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	UserService *service.UserService
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account and returns a session token for it. Every field is required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		whispersdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	whispersdk.TokenResponse
//	@Failure		400		{object}	whispersdk.APIError	"missing or invalid fields"
//	@Failure		409		{object}	whispersdk.APIError	"username already taken"
//	@Failure		429		{object}	whispersdk.APIError
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req whispersdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	token, _, err := h.UserService.Register(r.Context(), domain.Registration{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, whispersdk.TokenResponse{Token: token})
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Exchanges a username and password for a new session token.
//	@Description	Unknown users and wrong passwords get the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		whispersdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	whispersdk.TokenResponse
//	@Failure		400		{object}	whispersdk.APIError
//	@Failure		401		{object}	whispersdk.APIError	"invalid username or password"
//	@Failure		429		{object}	whispersdk.APIError
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req whispersdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	token, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, whispersdk.TokenResponse{Token: token})
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented token. Other tokens of the same user stay valid.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	whispersdk.LogoutResponse
//	@Failure		401	{object}	whispersdk.APIError
//	@Failure		404	{object}	whispersdk.APIError	"user no longer exists"
//	@Security		BearerAuth
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, domain.ErrMissingCredential)
		return
	}

	username, err := h.UserService.Logout(r.Context(), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, whispersdk.LogoutResponse{
		Username: username,
		Message:  "logged out",
	})
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/service"
	"github.com/aussiebroadwan/whisper/pkg/httpx"
	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
)

// UsersHandler serves the user directory and each user's mailboxes.
type UsersHandler struct {
	UserService    *service.UserService
	MessageService *service.MessageService
}

// HandleList godoc
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	whispersdk.UsersResponse
//	@Failure	401	{object}	whispersdk.APIError
//	@Security	BearerAuth
//	@Router		/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := whispersdk.UsersResponse{Users: make([]whispersdk.UserSummary, len(users))}
	for i, u := range users {
		resp.Users[i] = toSDKSummary(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Param		username	path		string	true	"Username"
//	@Success	200			{object}	whispersdk.UserResponse
//	@Failure	401			{object}	whispersdk.APIError
//	@Failure	404			{object}	whispersdk.APIError
//	@Security	BearerAuth
//	@Router		/users/{username} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, whispersdk.UserResponse{User: whispersdk.User{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinedAt:    u.JoinedAt,
		LastLoginAt: u.LastLoginAt,
	}})
}

// HandleInbox godoc
//
//	@Summary		List received messages
//	@Description	Only the user themselves may list their inbox.
//	@Tags			Users
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	whispersdk.MessagesResponse
//	@Failure		401			{object}	whispersdk.APIError
//	@Failure		403			{object}	whispersdk.APIError
//	@Security		BearerAuth
//	@Router			/users/{username}/to [get].
func (h *UsersHandler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.MessageService.ListTo(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := whispersdk.MessagesResponse{Messages: make([]whispersdk.MessageListItem, len(msgs))}
	for i, m := range msgs {
		from := toSDKSummary(m.FromUser)
		resp.Messages[i] = whispersdk.MessageListItem{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: &from,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleOutbox godoc
//
//	@Summary		List sent messages
//	@Description	Only the user themselves may list their outbox.
//	@Tags			Users
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	whispersdk.MessagesResponse
//	@Failure		401			{object}	whispersdk.APIError
//	@Failure		403			{object}	whispersdk.APIError
//	@Security		BearerAuth
//	@Router			/users/{username}/from [get].
func (h *UsersHandler) HandleOutbox(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.MessageService.ListFrom(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := whispersdk.MessagesResponse{Messages: make([]whispersdk.MessageListItem, len(msgs))}
	for i, m := range msgs {
		to := toSDKSummary(m.ToUser)
		resp.Messages[i] = whispersdk.MessageListItem{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: &to,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func toSDKSummary(u domain.UserSummary) whispersdk.UserSummary {
	return whispersdk.UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

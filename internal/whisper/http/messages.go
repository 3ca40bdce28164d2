package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/service"
	"github.com/aussiebroadwan/whisper/pkg/httpx"
	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
)

// MessagesHandler serves sending, reading and marking messages.
type MessagesHandler struct {
	MessageService *service.MessageService
}

// HandleSend godoc
//
//	@Summary		Send a message
//	@Description	The sender is always the authenticated user.
//	@Tags			Messages
//	@Accept			json
//	@Produce		json
//	@Param			request	body		whispersdk.SendMessageRequest	true	"Message"
//	@Success		201		{object}	whispersdk.SendMessageResponse
//	@Failure		400		{object}	whispersdk.APIError
//	@Failure		401		{object}	whispersdk.APIError
//	@Failure		404		{object}	whispersdk.APIError	"recipient does not exist"
//	@Security		BearerAuth
//	@Router			/messages [post].
func (h *MessagesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req whispersdk.SendMessageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	m, err := h.MessageService.Send(r.Context(), identity(r), domain.NewMessage{
		ToUsername: req.ToUsername,
		Body:       req.Body,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, whispersdk.SendMessageResponse{Message: whispersdk.SentMessage{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       m.SentAt,
	}})
}

// HandleGet godoc
//
//	@Summary		Get a message
//	@Description	Only the sender and the recipient can see a message. Anyone else gets 404.
//	@Tags			Messages
//	@Produce		json
//	@Param			id	path		int	true	"Message ID"
//	@Success		200	{object}	whispersdk.MessageResponse
//	@Failure		401	{object}	whispersdk.APIError
//	@Failure		404	{object}	whispersdk.APIError
//	@Security		BearerAuth
//	@Router			/messages/{id} [get].
func (h *MessagesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	m, err := h.MessageService.Get(r.Context(), identity(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, whispersdk.MessageResponse{Message: whispersdk.MessageDetail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: toSDKSummary(m.FromUser),
		ToUser:   toSDKSummary(m.ToUser),
	}})
}

// HandleMarkRead godoc
//
//	@Summary		Mark a message read
//	@Description	Only the recipient can mark a message read. Repeated calls keep the first read time.
//	@Tags			Messages
//	@Produce		json
//	@Param			id	path		int	true	"Message ID"
//	@Success		200	{object}	whispersdk.MarkReadResponse
//	@Failure		401	{object}	whispersdk.APIError
//	@Failure		403	{object}	whispersdk.APIError
//	@Failure		404	{object}	whispersdk.APIError
//	@Security		BearerAuth
//	@Router			/messages/{id}/read [post].
func (h *MessagesHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	m, err := h.MessageService.MarkRead(r.Context(), identity(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	receipt := whispersdk.ReadReceipt{ID: m.ID}
	if m.ReadAt != nil {
		receipt.ReadAt = *m.ReadAt
	}
	httpx.WriteJSON(w, http.StatusOK, whispersdk.MarkReadResponse{Message: receipt})
}

func messageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "message id must be a positive integer")
		return 0, false
	}
	return id, true
}

// identity is the username bound by the authn middleware. Every route that
// calls it sits behind that middleware.
func identity(r *http.Request) string {
	username, _ := httpx.UsernameFromContext(r.Context())
	return username
}

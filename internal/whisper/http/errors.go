package http

import (
	"net/http"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/pkg/slogx"
	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
)

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:            http.StatusBadRequest,
	domain.KindDuplicateUser:         http.StatusConflict,
	domain.KindAuthenticationFailure: http.StatusUnauthorized,
	domain.KindMissingCredential:     http.StatusUnauthorized,
	domain.KindInvalidToken:          http.StatusUnauthorized,
	domain.KindForbidden:             http.StatusForbidden,
	domain.KindNotFound:              http.StatusNotFound,
}

// toAPIError converts a service error to its wire form. Unclassified
// errors become a generic server error.
func toAPIError(err error) *whispersdk.APIError {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		return whispersdk.ErrServerError
	}

	desc := err.Error()
	if kind == domain.KindInvalidToken {
		// Verification detail stays in the logs
		desc = domain.ErrInvalidToken.Message
	}
	return whispersdk.NewAPIError(status, string(kind), desc)
}

// writeServiceError writes err and logs it when it is not one of ours.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}
	apiErr.WriteError(w)
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	whispersdk.NewAPIError(http.StatusBadRequest, whispersdk.ErrorCodeValidation, desc).WriteError(w)
}

package whispersdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/whisper/pkg/httpx"
)

// Error codes sent in the "error" field of a failed response.
const (
	ErrorCodeValidation        = "validation_error"
	ErrorCodeDuplicateUser     = "duplicate_user"
	ErrorCodeAuthFailed        = "authentication_failed"
	ErrorCodeMissingCredential = "missing_credential"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeForbidden         = "forbidden"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// APIError is a failed request. The server writes it and the client parses
// it back.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as a JSON response. 401 responses carry a
// Bearer challenge.
func (e *APIError) WriteError(w http.ResponseWriter) {
	if e.StatusCode == http.StatusUnauthorized {
		httpx.WriteBearerError(w, e.Code, e.Description)
		return
	}
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ErrServerError hides the details of anything unexpected.
var ErrServerError = NewAPIError(http.StatusInternalServerError, ErrorCodeServerError, "internal server error")

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies
// that are not in the expected shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp httpx.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

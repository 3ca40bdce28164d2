package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/whisper/pkg/jwtx"
	"github.com/aussiebroadwan/whisper/pkg/slogx"
)

// ErrInvalidToken classifies a token the validator rejected. Validators
// wrap it for bad, foreign or revoked tokens; any other error is treated as
// a server failure and the token is left alone.
var ErrInvalidToken = errors.New("httpx: invalid token")

// TokenValidator checks a raw session token and returns its claims.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (jwtx.Claims, error)
}

// AuthnMiddleware requires a valid session token. On success the username
// and claims are attached to the request context and to the request logger.
func AuthnMiddleware(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, err := ExtractToken(r)
			if err != nil {
				desc := "authentication required"
				if errors.Is(err, ErrMalformedCredential) {
					desc = "malformed authorization header"
				}
				WriteBearerError(w, "missing_credential", desc)
				return
			}

			claims, err := v.Validate(ctx, raw)
			switch {
			case errors.Is(err, ErrInvalidToken):
				log.Warn("token validation failed", "err", err)
				WriteBearerError(w, "invalid_token", "invalid or revoked token")
				return
			case err != nil:
				log.Error("token validation errored", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
				return
			}

			ctx = WithIdentity(ctx, claims)
			ctx = slogx.WithUsername(ctx, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnsureCorrectUser only lets a request through when the authenticated
// username equals the {param} path value. It must run after
// AuthnMiddleware.
func EnsureCorrectUser(param string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := UsernameFromContext(r.Context())
			if !ok {
				WriteBearerError(w, "missing_credential", "authentication required")
				return
			}
			if r.PathValue(param) != username {
				WriteError(w, http.StatusForbidden, "forbidden", "you can only access your own messages")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteBearerError writes an RFC 6750 challenge with a JSON body.
func WriteBearerError(w http.ResponseWriter, code, desc string) {
	challenge := `Bearer realm="whisper"`
	if code == "invalid_token" {
		challenge += `, error="invalid_token", error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	WriteError(w, http.StatusUnauthorized, code, desc)
}

package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// TokenField is the query parameter and JSON body field accepted as a
// fallback when no Authorization header is sent.
const TokenField = "_token"

// MaxBodyBytes caps every JSON request body we read.
const MaxBodyBytes = 1 << 20

var (
	ErrNoCredential        = errors.New("httpx: no credential presented")
	ErrMalformedCredential = errors.New("httpx: malformed authorization header")
)

// ExtractToken finds the bearer token of r. The Authorization header wins,
// then the _token query parameter, then a _token field of a JSON body. The
// body is put back so handlers can still decode it.
func ExtractToken(r *http.Request) (string, error) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, raw, ok := strings.Cut(authz, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", ErrMalformedCredential
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return "", ErrMalformedCredential
		}
		return raw, nil
	}

	if raw := strings.TrimSpace(r.URL.Query().Get(TokenField)); raw != "" {
		return raw, nil
	}

	if raw := tokenFromBody(r); raw != "" {
		return raw, nil
	}
	return "", ErrNoCredential
}

func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return ""
		}
	}

	// Put back what was read ahead of whatever is left, so an oversized
	// body still looks oversized to DecodeJSON.
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(body), r.Body), Closer: r.Body}
	if err != nil || len(body) > MaxBodyBytes {
		return ""
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	var raw string
	if err := json.Unmarshal(probe[TokenField], &raw); err != nil {
		return ""
	}
	return strings.TrimSpace(raw)
}

type replayBody struct {
	io.Reader
	io.Closer
}

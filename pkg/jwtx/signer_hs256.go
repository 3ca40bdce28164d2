package jwtx

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecretSize is the shortest secret we accept for HS256. Anything
// shorter than the hash output weakens the MAC.
const MinHMACSecretSize = 32

// HS256Signer signs tokens with a shared HMAC secret. The same secret
// verifies them, so it never leaves the service and is not published.
type HS256Signer struct {
	kid    string
	secret []byte
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHMACSecretSize {
		return nil, errors.New("jwtx: HS256 secret too short")
	}
	if kid == "" {
		kid = hmacKeyID(secret)
	}
	return &HS256Signer{kid: kid, secret: secret}, nil
}

// hmacKeyID derives a kid from the secret without revealing it.
func hmacKeyID(secret []byte) string {
	sum := sha256.Sum256(append([]byte("whisper-kid:"), secret...))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}

func (s *HS256Signer) Alg() string { return AlgorithmHS256 }
func (s *HS256Signer) KID() string { return s.kid }

func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}

func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHMACSecretSize {
		return errors.New("jwtx: HS256 secret too short")
	}
	return nil
}

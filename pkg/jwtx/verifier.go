package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed       = errors.New("jwtx: malformed token")
	ErrAlgMismatch     = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID      = errors.New("jwtx: unknown kid")
	ErrInvalidSig      = errors.New("jwtx: invalid signature")
	ErrIssuer          = errors.New("jwtx: issuer mismatch")
	ErrInvalidClaim    = errors.New("jwtx: invalid claims")
	ErrMissingUsername = errors.New("jwtx: missing username claim")
)

// KeySetVerifier checks tokens against whatever keys are in a KeySet. The
// algorithm in the header has to match the algorithm of the key its kid
// points at, so an HMAC token can never be checked against a public key.
type KeySetVerifier struct {
	keys   *KeySet
	issuer string
}

// NewVerifier creates a verifier backed by keys. An empty issuer skips the
// iss check.
func NewVerifier(keys *KeySet, issuer string) *KeySetVerifier {
	return &KeySetVerifier{keys: keys, issuer: issuer}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *KeySetVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{AlgorithmEdDSA, AlgorithmHS256}))

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		// Need the kid to know which key to use
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		vk, err := v.keys.get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		if t.Method.Alg() != vk.alg {
			return nil, ErrAlgMismatch
		}
		return vk.key, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidClaim
	}
	claims.KeyID, _ = token.Header["kid"].(string)

	// Now check the claims a session needs
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateSession(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// classify collapses jwt library errors into our own sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch), errors.Is(err, ErrUnknownKID):
		return err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrUnknownKID, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}

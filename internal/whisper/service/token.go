package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
	"github.com/aussiebroadwan/whisper/pkg/jwtx"
	"github.com/aussiebroadwan/whisper/pkg/slogx"
)

// TokenService issues, validates and revokes session tokens.
//
// A session token has no expiry. It stops working when it is revoked or when
// the key that signed it is no longer loaded.
type TokenService struct {
	Store store.Store
	Keys  *jwtx.KeyManager

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue signs a fresh token for username. Every call yields a distinct
// token id, so two logins never share a token.
func (s *TokenService) Issue(ctx context.Context, username string) (string, jwtx.Claims, error) {
	claims := jwtx.NewSessionClaims(username, s.Keys.Issuer(), s.now())

	token, err := s.Keys.Signer.Sign(claims)
	if err != nil {
		return "", jwtx.Claims{}, fmt.Errorf("sign token: %w", err)
	}
	claims.KeyID = s.Keys.ActiveKID()

	slogx.FromContext(ctx).Debug("issued session token", "username", username, "jti", claims.ID)
	return token, claims, nil
}

// Validate checks the signature, the claims and the revocation set. It does
// not check that the user still exists.
func (s *TokenService) Validate(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Keys.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	revoked, err := s.Store.Revocations().IsRevoked(ctx, claims.ID)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return jwtx.Claims{}, fmt.Errorf("%w: token %s revoked", domain.ErrInvalidToken, claims.ID)
	}
	return claims, nil
}

// Revoke adds the token to the revocation set. The kid is recorded so the
// entry can be purged once that key is retired.
func (s *TokenService) Revoke(ctx context.Context, claims jwtx.Claims) error {
	if claims.ID == "" {
		return domain.ErrInvalidToken
	}
	return s.Store.Revocations().RevokeToken(ctx, domain.TokenRevocation{
		TokenID:   claims.ID,
		Username:  claims.Username,
		KeyID:     s.kidFor(claims),
		RevokedAt: s.now(),
	})
}

func (s *TokenService) kidFor(claims jwtx.Claims) string {
	if claims.KeyID != "" {
		return claims.KeyID
	}
	return s.Keys.ActiveKID()
}

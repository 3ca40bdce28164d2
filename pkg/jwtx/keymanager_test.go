package jwtx

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/whisper/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, alg := range []string{AlgorithmEdDSA, AlgorithmHS256} {
		t.Run(alg, func(t *testing.T) {
			km, err := NewEphemeralKeyManager(alg, "whisper")
			require.NoError(t, err)
			require.True(t, km.IsReady())
			require.Equal(t, alg, km.Algorithm())

			claims := NewSessionClaims("alice", "whisper", time.Now())
			token, err := km.Signer.Sign(claims)
			require.NoError(t, err)

			got, err := km.Verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "alice", got.Username)
			require.Equal(t, claims.ID, got.ID)
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	km, err := NewEphemeralKeyManager(AlgorithmEdDSA, "whisper")
	require.NoError(t, err)
	other, err := NewEphemeralKeyManager(AlgorithmEdDSA, "whisper")
	require.NoError(t, err)

	good, err := km.Signer.Sign(NewSessionClaims("alice", "whisper", time.Now()))
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(good, ".")
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := km.Verifier.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(good, ".")
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"username":"mallory","jti":"x"}`))
		_, err := km.Verifier.Verify(parts[0] + "." + payload + "." + parts[2])
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := km.Verifier.Verify("not-a-token")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("signed by a key we do not hold", func(t *testing.T) {
		foreign, err := other.Signer.Sign(NewSessionClaims("alice", "whisper", time.Now()))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(foreign)
		require.ErrorIs(t, err, ErrUnknownKID)
	})

	t.Run("missing username", func(t *testing.T) {
		token, err := km.Signer.Sign(NewSessionClaims("", "whisper", time.Now()))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, ErrMissingUsername)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := km.Signer.Sign(NewSessionClaims("alice", "elsewhere", time.Now()))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("alg none", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, NewSessionClaims("alice", "whisper", time.Now()))
		tok.Header["kid"] = km.ActiveKID()
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = km.Verifier.Verify(s)
		require.Error(t, err)
	})

	t.Run("hmac signed with the public key kid", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, NewSessionClaims("alice", "whisper", time.Now()))
		tok.Header["kid"] = km.ActiveKID()
		s, err := tok.SignedString([]byte(strings.Repeat("k", 32)))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(s)
		require.ErrorIs(t, err, ErrAlgMismatch)
	})
}

func TestKeyManagerPersistsKeys(t *testing.T) {

	for _, alg := range []string{AlgorithmEdDSA, AlgorithmHS256} {
		t.Run(alg, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keys", "signing.key")

			first, err := NewKeyManager(KeyManagerOptions{Algorithm: alg, Issuer: "whisper", KeyFile: path})
			require.NoError(t, err)
			token, err := first.Signer.Sign(NewSessionClaims("alice", "whisper", time.Now()))
			require.NoError(t, err)

			info, err := os.Stat(path)
			require.NoError(t, err)
			require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			// Same key file after a restart, the token still verifies
			second, err := NewKeyManager(KeyManagerOptions{Algorithm: alg, Issuer: "whisper", KeyFile: path})
			require.NoError(t, err)
			require.Equal(t, first.ActiveKID(), second.ActiveKID())
			_, err = second.Verifier.Verify(token)
			require.NoError(t, err)

			// A new key invalidates it, unless the old one is kept as retired
			rotated := filepath.Join(t.TempDir(), "next.key")
			third, err := NewKeyManager(KeyManagerOptions{Algorithm: alg, Issuer: "whisper", KeyFile: rotated})
			require.NoError(t, err)
			_, err = third.Verifier.Verify(token)
			require.Error(t, err)

			fourth, err := NewKeyManager(KeyManagerOptions{
				Algorithm:       alg,
				Issuer:          "whisper",
				KeyFile:         rotated,
				RetiredKeyFiles: []string{path},
			})
			require.NoError(t, err)
			_, err = fourth.Verifier.Verify(token)
			require.NoError(t, err)
			require.Len(t, fourth.KIDs(), 2)
		})
	}
}

func TestKeyManagerOptionErrors(t *testing.T) {
	_, err := NewKeyManager(KeyManagerOptions{})
	require.Error(t, err)

	_, err = NewKeyManager(KeyManagerOptions{Algorithm: "RS256", KeyFile: filepath.Join(t.TempDir(), "k")})
	require.Error(t, err)

	_, err = NewKeyManager(KeyManagerOptions{
		KeyFile:         filepath.Join(t.TempDir(), "k"),
		RetiredKeyFiles: []string{filepath.Join(t.TempDir(), "missing")},
	})
	require.Error(t, err)

	_, err = NewSignerHS256("", []byte("short"))
	require.Error(t, err)
}

func TestJWKS(t *testing.T) {
	km, err := NewEphemeralKeyManager(AlgorithmEdDSA, "whisper")
	require.NoError(t, err)

	jwks := km.KeySet.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.Equal(t, km.ActiveKID(), jwks.Keys[0].Kid)

	// A verifier built purely from the published set accepts our tokens
	remote := NewKeySet()
	require.NoError(t, remote.AddJWK(jwks.Keys[0]))
	token, err := km.Signer.Sign(NewSessionClaims("bob", "whisper", time.Now()))
	require.NoError(t, err)
	_, err = NewVerifier(remote, "whisper").Verify(token)
	require.NoError(t, err)

	hmac, err := NewEphemeralKeyManager(AlgorithmHS256, "whisper")
	require.NoError(t, err)
	require.Empty(t, hmac.KeySet.PublicJWKS().Keys, "secrets are never published")
}

func TestThumbprintIsStable(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	a, err := NewSignerEdDSA("", pemKey)
	require.NoError(t, err)
	b, err := NewSignerEdDSA("", pemKey)
	require.NoError(t, err)
	require.Equal(t, a.KID(), b.KID())
	require.Len(t, a.KID(), 43)
}

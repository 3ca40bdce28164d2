package jwtx

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/whisper/pkg/cryptox"
)

// Supported JWT signing algorithms
const (
	AlgorithmEdDSA = "EdDSA"
	AlgorithmHS256 = "HS256"
)

// KeyManager wires key material from disk into a signer, a verifier and
// the KeySet published over JWKS.
//
// There is exactly one active signing key. Retired keys can be listed so
// tokens they signed keep verifying until the operator drops them; once a
// key is gone every token it signed fails validation.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier
	KeySet   *KeySet

	algorithm string
	issuer    string
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	// Algorithm is "EdDSA" (default) or "HS256".
	Algorithm string

	// Issuer is the iss claim put into and expected from every token.
	// Empty disables the check.
	Issuer string

	// KeyFile holds the active key: a PKCS8 PEM Ed25519 key for EdDSA, a
	// base64url secret for HS256. It is generated when missing.
	KeyFile string

	// RetiredKeyFiles are verify-only keys of the same algorithm. They must
	// already exist.
	RetiredKeyFiles []string
}

// NewKeyManager loads (or creates) the active key from opts.KeyFile.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.KeyFile == "" {
		return nil, errors.New("jwtx: KeyFile is required")
	}

	alg := opts.Algorithm
	if alg == "" {
		alg = AlgorithmEdDSA
	}

	var gen func() ([]byte, error)
	switch alg {
	case AlgorithmEdDSA:
		gen = cryptox.GenerateEd25519Key
	case AlgorithmHS256:
		gen = func() ([]byte, error) { return cryptox.RandomSecret(MinHMACSecretSize) }
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: EdDSA, HS256)", alg)
	}

	active, err := cryptox.LoadOrCreateFile(opts.KeyFile, gen)
	if err != nil {
		return nil, fmt.Errorf("jwtx: load key %s: %w", opts.KeyFile, err)
	}

	retired := make([][]byte, 0, len(opts.RetiredKeyFiles))
	for _, path := range opts.RetiredKeyFiles {
		material, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("jwtx: load retired key: %w", err)
		}
		retired = append(retired, material)
	}

	return NewKeyManagerFromMaterial(alg, opts.Issuer, active, retired...)
}

// NewEphemeralKeyManager creates a KeyManager whose key only exists in
// memory. Every token becomes invalid when the process exits, which is what
// tests want.
func NewEphemeralKeyManager(alg, issuer string) (*KeyManager, error) {
	if alg == "" {
		alg = AlgorithmEdDSA
	}

	var (
		material []byte
		err      error
	)
	switch alg {
	case AlgorithmEdDSA:
		material, err = cryptox.GenerateEd25519Key()
	case AlgorithmHS256:
		material, err = cryptox.RandomSecret(MinHMACSecretSize)
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: EdDSA, HS256)", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate key: %w", err)
	}
	return NewKeyManagerFromMaterial(alg, issuer, material)
}

// NewKeyManagerFromMaterial builds a KeyManager from raw key material. The
// first entry signs, the rest only verify.
func NewKeyManagerFromMaterial(alg, issuer string, active []byte, retired ...[]byte) (*KeyManager, error) {
	keys := NewKeySet()
	if alg == AlgorithmHS256 {
		// Secret files are often written by hand with a trailing newline
		active = bytes.TrimSpace(active)
		for i := range retired {
			retired[i] = bytes.TrimSpace(retired[i])
		}
	}

	signer, err := newSigner(alg, active)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, err
	}
	if err := addToKeySet(keys, alg, signer.KID(), active); err != nil {
		return nil, err
	}

	for i, material := range retired {
		old, err := newSigner(alg, material)
		if err != nil {
			return nil, fmt.Errorf("jwtx: retired key %d: %w", i+1, err)
		}
		if err := addToKeySet(keys, alg, old.KID(), material); err != nil {
			return nil, fmt.Errorf("jwtx: retired key %d: %w", i+1, err)
		}
	}

	return &KeyManager{
		Signer:    signer,
		Verifier:  NewVerifier(keys, issuer),
		KeySet:    keys,
		algorithm: alg,
		issuer:    issuer,
	}, nil
}

func newSigner(alg string, material []byte) (Signer, error) {
	switch alg {
	case AlgorithmEdDSA:
		return NewSignerEdDSA("", material)
	case AlgorithmHS256:
		return NewSignerHS256("", material)
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
}

func addToKeySet(keys *KeySet, alg, kid string, material []byte) error {
	switch alg {
	case AlgorithmEdDSA:
		priv, err := parseEd25519PEM(material)
		if err != nil {
			return err
		}
		return keys.AddEd25519(kid, priv.Public().(ed25519.PublicKey))
	case AlgorithmHS256:
		return keys.AddHMAC(kid, material)
	default:
		return fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string { return km.algorithm }

// Issuer returns the configured iss claim.
func (km *KeyManager) Issuer() string { return km.issuer }

// ActiveKID returns the kid new tokens are signed with.
func (km *KeyManager) ActiveKID() string { return km.Signer.KID() }

// KIDs lists every key a token may currently be verified with.
func (km *KeyManager) KIDs() []string { return km.KeySet.KIDs() }

// IsReady reports whether a signing key is loaded.
func (km *KeyManager) IsReady() bool {
	return km != nil && km.Signer != nil && km.KeySet.IsReady()
}

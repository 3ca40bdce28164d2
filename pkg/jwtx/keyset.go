package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"slices"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

type verificationKey struct {
	alg string
	key any // ed25519.PublicKey | []byte
}

// KeySet holds every key a token may legitimately be verified with, the
// active signing key plus any retired ones still accepted. It is safe for
// concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	jwks JWKS
	keys map[string]verificationKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		keys: make(map[string]verificationKey),
	}
}

// AddEd25519 registers an Ed25519 public key and publishes it in the JWKS.
func (k *KeySet) AddEd25519(kid string, pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return errors.New("jwtx: invalid Ed25519 public key size")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.keys[kid]; ok {
		return nil
	}
	k.keys[kid] = verificationKey{alg: AlgorithmEdDSA, key: pub}
	k.jwks.Keys = append(k.jwks.Keys, NewEd25519JWK(kid, "sig", AlgorithmEdDSA, pub))
	return nil
}

// AddHMAC registers a shared HS256 secret. It is never published.
func (k *KeySet) AddHMAC(kid string, secret []byte) error {
	if len(secret) < MinHMACSecretSize {
		return errors.New("jwtx: HS256 secret too short")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[kid] = verificationKey{alg: AlgorithmHS256, key: slices.Clone(secret)}
	return nil
}

// AddJWK parses a published JWK into the set.
func (k *KeySet) AddJWK(j JWK) error {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return errors.New("jwtx: unsupported key " + j.Kty + "/" + j.Crv)
	}
	xb, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return err
	}
	return k.AddEd25519(j.Kid, ed25519.PublicKey(xb))
}

// get returns the algorithm and key registered under kid.
func (k *KeySet) get(kid string) (verificationKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if vk, ok := k.keys[kid]; ok {
		return vk, nil
	}
	return verificationKey{}, ErrNoKey
}

// Has reports whether kid is a loaded key.
func (k *KeySet) Has(kid string) bool {
	_, err := k.get(kid)
	return err == nil
}

// KIDs lists every loaded key id in sorted order.
func (k *KeySet) KIDs() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]string, 0, len(k.keys))
	for kid := range k.keys {
		out = append(out, kid)
	}
	slices.Sort(out)
	return out
}

// PublicJWKS returns a snapshot of the published keys for HTTP serving.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	keys := make([]JWK, len(k.jwks.Keys))
	copy(keys, k.jwks.Keys)
	return JWKS{Keys: keys}
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}

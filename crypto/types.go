package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// Principal identifies an authenticated caller of the ledger.
// The implementation uses Ed25519 public keys; the hex encoding of the key
// doubles as the principal's stable string identity (usable as a map key).
type Principal []byte

// NewPrincipalFromBytes creates a Principal from a byte slice.
// The input is copied so the caller cannot mutate the identity afterwards.
func NewPrincipalFromBytes(data []byte) Principal {
	p := make([]byte, len(data))
	copy(p, data)
	return Principal(p)
}

// NewPrincipalFromString creates a Principal from a hex-encoded string.
func NewPrincipalFromString(data string) (Principal, error) {
	rawBytes, err := hex.DecodeString(data)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipalFromBytes(rawBytes), nil
}

// Bytes returns the principal identity as a byte slice.
func (p Principal) Bytes() []byte {
	return p
}

// Equal compares two principals for equality in constant time.
func (p Principal) Equal(other Principal) bool {
	return subtle.ConstantTimeCompare(p, other) == 1
}

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool {
	return len(p) == 0
}

// String returns the hex-encoded identity of the principal.
func (p Principal) String() string {
	return hex.EncodeToString(p)
}

// PrivateKey is the signing key backing a principal identity.
// Private keys are only ever held by their owners; the ledger itself never
// sees one.
type PrivateKey []byte

// NewPrivateKeyFromBytes creates a PrivateKey from a byte slice.
// The input is copied so the caller cannot mutate the key afterwards.
func NewPrivateKeyFromBytes(data []byte) PrivateKey {
	sk := make([]byte, len(data))
	copy(sk, data)
	return PrivateKey(sk)
}

// Bytes returns the private key as a byte slice.
// Handle with care: this exposes sensitive key material.
func (sk PrivateKey) Bytes() []byte {
	return sk
}

// Principal derives the principal identity corresponding to this private key.
// For Ed25519 the public key is embedded in the private key structure.
func (sk PrivateKey) Principal() (Principal, error) {
	if len(sk) < ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}
	return Principal(sk[32:]), nil
}

// GenerateKeyPair generates a new Ed25519 principal identity and signing key.
func GenerateKeyPair() (Principal, PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return Principal(publicKey), PrivateKey(privateKey), nil
}

// Signature is a digital signature produced with a principal's private key.
// Signatures authenticate every mutating request to the ledger.
type Signature []byte

// NewSignature creates a Signature from a byte slice.
// The input is copied so the caller cannot mutate the signature afterwards.
func NewSignature(data []byte) Signature {
	sig := make([]byte, len(data))
	copy(sig, data)
	return Signature(sig)
}

// Bytes returns the signature as a byte slice.
func (s Signature) Bytes() []byte {
	return []byte(s)
}

// Verify checks that this signature is valid for the given data and principal.
func (s Signature) Verify(principal Principal, data []byte) bool {
	if len(principal) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(principal), data, s)
}

// String returns a hex-encoded representation of the signature.
func (s Signature) String() string {
	return hex.EncodeToString(s.Bytes())
}

// Sign signs data with the given private key using Ed25519.
func Sign(privateKey PrivateKey, data []byte) (Signature, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}
	signature := ed25519.Sign(ed25519.PrivateKey(privateKey), data)
	return Signature(signature), nil
}

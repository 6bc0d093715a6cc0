package fhe

import (
	"errors"

	"github.com/OswaldHeaney/reviewnet/crypto"
)

// Handle is an opaque reference to a validated ciphertext held inside the
// service. Handles can be stored, listed, and handed out freely; recovering
// the plaintext behind one requires a separately granted capability.
type Handle string

// String returns the handle identifier.
func (h Handle) String() string {
	return string(h)
}

var (
	// ErrProof indicates the ciphertext failed its unforgeability check, or
	// the proof does not bind to this service and the claimed submitter.
	ErrProof = errors.New("ciphertext proof rejected")

	// ErrUnknownHandle indicates the handle does not reference a ciphertext
	// known to the service.
	ErrUnknownHandle = errors.New("unknown ciphertext handle")

	// ErrNoCapability indicates the principal holds no decrypt capability for
	// the handle.
	ErrNoCapability = errors.New("no decrypt capability for handle")

	// ErrOutOfRange indicates an encrypted-domain range check failed.
	ErrOutOfRange = errors.New("encrypted value out of range")
)

// Service is the external ciphertext collaborator of the ledger.
//
// Decode validates a submitted (ciphertext, proof) pair. The proof must bind
// the ciphertext to this service's identity and to the submitting principal;
// a mismatch on either binding fails with ErrProof before any ledger state is
// touched. On success the service retains the ciphertext and returns an
// opaque handle.
//
// GrantCapability permits a principal to decrypt the referenced ciphertext.
// Grants are permanent and cannot be revoked.
//
// Decrypt returns the plaintext behind a handle, failing with ErrNoCapability
// unless a capability was granted to the calling principal.
//
// VerifyRange checks lo <= value <= hi in the encrypted domain, without
// releasing the plaintext to the caller.
type Service interface {
	Decode(ciphertext, proof []byte, submitter crypto.Principal) (Handle, error)
	GrantCapability(handle Handle, principal crypto.Principal) error
	Decrypt(handle Handle, principal crypto.Principal) ([]byte, error)
	VerifyRange(handle Handle, lo, hi uint8) error
}

// Encoder is the client-side counterpart of Decode: it produces a ciphertext
// and a proof bound to (service identity, submitter). Only clients and tests
// need it; the ledger core does not.
type Encoder interface {
	Encode(plaintext []byte, submitter crypto.Principal) (ciphertext, proof []byte, err error)
}

// EncodeScore packs a small unsigned score into the single-byte plaintext
// representation the range check expects.
func EncodeScore(v uint8) []byte {
	return []byte{v}
}

// DecodeScore unpacks a single-byte score plaintext.
func DecodeScore(plaintext []byte) (uint8, error) {
	if len(plaintext) != 1 {
		return 0, errors.New("score plaintext must be exactly one byte")
	}
	return plaintext[0], nil
}

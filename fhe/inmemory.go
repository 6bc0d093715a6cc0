package fhe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/OswaldHeaney/reviewnet/crypto"
)

// InMemoryService implements Service and Encoder for testing and
// single-process deployments. It simulates the ciphertext service by keeping
// sealed values and capability lists in memory, but provides no hiding from
// the hosting process.
type InMemoryService struct {
	// Identity of this service instance; proofs bind to it.
	serviceID []byte

	// HMAC key for unforgeability proofs.
	proofKey []byte

	// AES-256 key sealing ciphertext contents at rest.
	sealingKey []byte

	mu      sync.Mutex
	entries map[Handle]*entry
}

type entry struct {
	sealed []byte
	// Capability list: principal identity -> granted. Grants are permanent.
	capabilities map[string]bool
}

// NewInMemoryService creates a service instance with a fresh random identity.
func NewInMemoryService() (*InMemoryService, error) {
	serviceID := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, serviceID); err != nil {
		return nil, fmt.Errorf("failed to generate service ID: %w", err)
	}

	master := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, master); err != nil {
		return nil, fmt.Errorf("failed to generate master secret: %w", err)
	}

	return newInMemoryService(serviceID, master)
}

// NewInMemoryServiceFromSeed creates a deterministic service instance.
// Two instances built from the same seed accept each other's ciphertexts,
// which lets tests encode on one side and decode on the other.
func NewInMemoryServiceFromSeed(seed []byte) (*InMemoryService, error) {
	h := sha3.Sum256(seed)
	return newInMemoryService(h[:16], h[:])
}

func newInMemoryService(serviceID, master []byte) (*InMemoryService, error) {
	// Derive independent proof and sealing keys from the master secret.
	kdf := hkdf.New(sha256.New, master, serviceID, []byte("reviewnet-cipher-keys"))

	proofKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, proofKey); err != nil {
		return nil, fmt.Errorf("failed to derive proof key: %w", err)
	}
	sealingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, sealingKey); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	return &InMemoryService{
		serviceID:  serviceID,
		proofKey:   proofKey,
		sealingKey: sealingKey,
		entries:    make(map[Handle]*entry),
	}, nil
}

// ServiceID returns the identity proofs are bound to.
func (s *InMemoryService) ServiceID() []byte {
	return s.serviceID
}

// Encode seals a plaintext and produces a proof binding the resulting
// ciphertext to (service identity, submitter).
func (s *InMemoryService) Encode(plaintext []byte, submitter crypto.Principal) ([]byte, []byte, error) {
	block, err := aes.NewCipher(s.sealingKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesgcm.Seal(nil, nonce, plaintext, s.serviceID)
	ciphertext := append(nonce, sealed...)

	return ciphertext, s.proveBinding(ciphertext, submitter), nil
}

// Decode validates a submitted ciphertext and registers it under a fresh
// handle with an empty capability list.
func (s *InMemoryService) Decode(ciphertext, proof []byte, submitter crypto.Principal) (Handle, error) {
	if !hmac.Equal(proof, s.proveBinding(ciphertext, submitter)) {
		return "", fmt.Errorf("binding check for submitter %s: %w", submitter, ErrProof)
	}

	// Reject garbage that would never decrypt, so a bad value cannot be
	// committed into the ledger.
	if _, err := s.open(ciphertext); err != nil {
		return "", fmt.Errorf("ciphertext does not authenticate: %w", ErrProof)
	}

	// Handles are derived from the ciphertext plus per-registration salt, so
	// resubmitting identical bytes still yields a distinct handle.
	salt := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate handle salt: %w", err)
	}
	digest := sha3.Sum256(append(ciphertext, salt...))
	handle := Handle(hex.EncodeToString(digest[:]))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[handle] = &entry{
		sealed:       append([]byte(nil), ciphertext...),
		capabilities: make(map[string]bool),
	}
	return handle, nil
}

// GrantCapability permanently permits a principal to decrypt a handle.
func (s *InMemoryService) GrantCapability(handle Handle, principal crypto.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	e.capabilities[principal.String()] = true
	return nil
}

// Decrypt returns the plaintext behind a handle if the principal holds a
// capability for it.
func (s *InMemoryService) Decrypt(handle Handle, principal crypto.Principal) ([]byte, error) {
	s.mu.Lock()
	e, ok := s.entries[handle]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	granted := e.capabilities[principal.String()]
	sealed := e.sealed
	s.mu.Unlock()

	if !granted {
		return nil, fmt.Errorf("principal %s: %w", principal, ErrNoCapability)
	}
	return s.open(sealed)
}

// VerifyRange checks lo <= value <= hi without releasing the plaintext.
// The in-memory service evaluates the bound directly; an FHE backend would
// use its encrypted comparison primitives here.
func (s *InMemoryService) VerifyRange(handle Handle, lo, hi uint8) error {
	s.mu.Lock()
	e, ok := s.entries[handle]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}

	plaintext, err := s.open(e.sealed)
	if err != nil {
		return err
	}
	v, err := DecodeScore(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrOutOfRange, v, lo, hi)
	}
	return nil
}

func (s *InMemoryService) proveBinding(ciphertext []byte, submitter crypto.Principal) []byte {
	h := hmac.New(sha256.New, s.proofKey)
	h.Write(s.serviceID)
	h.Write(submitter.Bytes())
	h.Write(ciphertext)
	return h.Sum(nil)
}

func (s *InMemoryService) open(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.sealingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	if len(ciphertext) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce := ciphertext[:aesgcm.NonceSize()]
	sealed := ciphertext[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, sealed, s.serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

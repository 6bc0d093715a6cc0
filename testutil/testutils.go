// Package testutil provides shared fixtures for review ledger tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
	"github.com/OswaldHeaney/reviewnet/ledger"
)

// KeyPair holds a generated principal identity and its signing key.
type KeyPair struct {
	Principal  crypto.Principal
	PrivateKey crypto.PrivateKey
}

// GenerateKeyPair creates a fresh principal for a test.
func GenerateKeyPair(t *testing.T) KeyPair {
	t.Helper()
	principal, privKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return KeyPair{Principal: principal, PrivateKey: privKey}
}

// Fixture bundles a ledger with its cipher service and distinguished
// principals.
type Fixture struct {
	Ledger    *ledger.Ledger
	Cipher    *fhe.InMemoryService
	Superuser KeyPair
}

// NewFixture creates a memory-only ledger fixture.
func NewFixture(t *testing.T) *Fixture {
	return NewFixtureWithArchive(t, nil)
}

// NewFixtureWithArchive creates a ledger fixture backed by the given archive.
func NewFixtureWithArchive(t *testing.T, archive ledger.Archiver) *Fixture {
	t.Helper()

	cipher, err := fhe.NewInMemoryService()
	require.NoError(t, err)

	superuser := GenerateKeyPair(t)
	l, err := ledger.New(ledger.Config{
		Cipher:    cipher,
		Superuser: superuser.Principal,
		Archive:   archive,
	})
	require.NoError(t, err)

	return &Fixture{Ledger: l, Cipher: cipher, Superuser: superuser}
}

// EncryptScore encodes a score for submission by the given principal,
// returning the (ciphertext, proof) pair the ledger expects.
func (f *Fixture) EncryptScore(t *testing.T, submitter crypto.Principal, score uint8) ledger.EncryptedValue {
	t.Helper()
	ciphertext, proof, err := f.Cipher.Encode(fhe.EncodeScore(score), submitter)
	require.NoError(t, err)
	return ledger.EncryptedValue{Ciphertext: ciphertext, Proof: proof}
}

// SubmitPaper submits a paper with placeholder text and returns its id.
func (f *Fixture) SubmitPaper(t *testing.T, author crypto.Principal) uint64 {
	t.Helper()
	id, err := f.Ledger.SubmitPaper(author, "Dense Ledgers", "On dense id assignment.", "systems")
	require.NoError(t, err)
	return id
}

// SubmitReview submits an accept review with the given quality score and
// returns its id.
func (f *Fixture) SubmitReview(t *testing.T, reviewer crypto.Principal, paperID uint64, quality uint8) uint64 {
	t.Helper()
	id, err := f.Ledger.SubmitReview(reviewer, paperID,
		f.EncryptScore(t, reviewer, 1),
		f.EncryptScore(t, reviewer, quality),
		"")
	require.NoError(t, err)
	return id
}

// Package fhe abstracts the ciphertext service that backs the ledger's
// confidential review fields.
//
// The ledger core never inspects ciphertext contents. It submits an opaque
// (ciphertext, proof) pair for validation, receives back an internal handle,
// and from then on only ever manipulates the handle. Decryption requires a
// capability: an explicit, irrevocable grant of a handle to a principal.
//
// The in-memory implementation simulates the service the way a test TEE
// simulates a hardware enclave: it provides the full interface contract but
// no actual cryptographic hiding from the process that hosts it. A production
// deployment would replace it with a homomorphic-encryption backend exposing
// the same operations.
package fhe

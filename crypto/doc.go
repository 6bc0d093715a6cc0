// Package crypto provides the identity primitives used across the review ledger.
//
// Every caller of the ledger is a principal identified by an Ed25519 public
// key. The package implements:
//
//   - Principal identities (Ed25519 public keys) with serialization helpers
//   - Digital signatures (Ed25519) for authenticating requests
//   - Key pair generation for principals
//
// Higher-level packages use these primitives to recover the acting principal
// from signed requests and to compare identities for authorization decisions.
package crypto

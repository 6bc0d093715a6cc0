// Package protocol defines the wire types of the review ledger API and the
// signed envelope that authenticates them.
//
// Every mutating operation is submitted as a Signed[T] message. The signature
// covers the serialized request object concatenated with the signer's public
// key, so the recovered signer is the acting principal for the operation and
// neither the request nor the identity can be substituted in transit.
//
// Encrypted review fields travel as (ciphertext, proof) pairs. The proof binds
// the ciphertext to the ledger's ciphertext service identity and to the
// submitting principal; the core never sees plaintext.
package protocol

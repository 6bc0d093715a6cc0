// Package server exposes the review ledger's public operation surface over
// HTTP.
//
// Mutating operations and encrypted-handle retrieval are submitted as
// protocol.Signed envelopes; the recovered signer is the acting principal.
// Caller-scoped listings (reviewable papers, own papers) identify the caller
// through a principal query parameter, since they filter public records and
// expose nothing confidential.
//
// Failure categories map onto HTTP statuses: validation and proof failures
// to 400, missing records to 404, authorization failures to 403, review
// conflicts and lifecycle-state violations to 409, and an overlapping
// mutation to 503.
package server

package ledger

import (
	"errors"

	"github.com/OswaldHeaney/reviewnet/fhe"
)

// The ledger surfaces every failure as exactly one of these categories.
// All of them are terminal for the attempted operation: nothing is retried
// and no partial state is left behind.
var (
	// ErrValidation indicates a required text field was empty or an
	// encrypted value failed its domain check.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates an identity outside the assigned range.
	ErrNotFound = errors.New("record not found")

	// ErrAuthorization indicates the caller lacks the required role or
	// ownership.
	ErrAuthorization = errors.New("caller not authorized")

	// ErrConflict indicates a self-review or duplicate-review submission.
	ErrConflict = errors.New("review conflict")

	// ErrState indicates an operation on an inactive paper.
	ErrState = errors.New("paper is not active")

	// ErrProof indicates the ciphertext service rejected the submitted
	// unforgeability proof or binding. Aliased so callers can discriminate
	// with a single sentinel regardless of which layer reported it.
	ErrProof = fhe.ErrProof

	// ErrBusy indicates a mutating operation arrived while another mutation
	// was in flight. The ledger is a single serialized writer; overlapping
	// mutations are rejected, never queued.
	ErrBusy = errors.New("mutation already in flight")
)

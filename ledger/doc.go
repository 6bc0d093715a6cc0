// Package ledger implements the confidential review ledger core.
//
// The ledger owns two dense, append-only record tables: papers (public
// submissions) and reviews (evaluations whose recommendation and quality
// score exist only as opaque ciphertext handles). Identities are assigned
// sequentially starting at 1 and records are never deleted; papers can only
// flip an active flag, reviews are immutable once committed.
//
// Execution is single-writer and globally serialized. Every mutating
// operation either commits fully or aborts with zero state change, and an
// overlapping or re-entrant mutation is rejected outright rather than queued.
// Read operations observe the last committed state.
//
// Submission of a review passes through three stages in order: the conflict
// gate (valid id, active paper, no self-review, no duplicate review), the
// ciphertext service (proof validation and decode to handles, plus an
// encrypted-domain range check on the quality score), and the capability
// grants (ledger system identity, submitting reviewer, and the parent
// paper's author). Only then is the record committed.
package ledger

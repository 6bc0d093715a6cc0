package ledger

import (
	"fmt"

	"github.com/OswaldHeaney/reviewnet/crypto"
)

// reviewGate evaluates the submission-time invariants for a review, cheapest
// check first, and fails fast on the first violation. It has no side effects;
// a rejected submission leaves all state untouched.
//
// Order: valid id, active paper, no self-review, no duplicate review.
// Returns the paper's author so the caller can issue capability grants.
// Caller must hold mu.
func (l *Ledger) reviewGate(paperID uint64, reviewer crypto.Principal) (crypto.Principal, error) {
	paper, err := l.paperLocked(paperID)
	if err != nil {
		return nil, err
	}

	if !paper.Active {
		return nil, fmt.Errorf("%w: paper %d", ErrState, paperID)
	}

	if reviewer.Equal(paper.Author) {
		return nil, fmt.Errorf("%w: self-review", ErrConflict)
	}

	if l.reviewed[reviewKey{reviewer: reviewer.String(), paperID: paperID}] {
		return nil, fmt.Errorf("%w: duplicate-review", ErrConflict)
	}

	return paper.Author, nil
}

package ledger

import (
	"github.com/OswaldHeaney/reviewnet/crypto"
)

// ListReviewable returns every active paper the caller may still review:
// papers the caller did not author and has not already reviewed, in
// ascending id order. Cost is linear in the number of papers; callers
// needing bounded cost must page externally.
func (l *Ledger) ListReviewable(caller crypto.Principal) []Paper {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := []Paper{}
	for _, p := range l.papers {
		if !p.Active || caller.Equal(p.Author) {
			continue
		}
		if l.reviewed[reviewKey{reviewer: caller.String(), paperID: p.ID}] {
			continue
		}
		result = append(result, *p)
	}
	return result
}

// ListOwn returns every paper authored by the caller, in ascending id order.
func (l *Ledger) ListOwn(caller crypto.Principal) []Paper {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byAuthor[caller.String()]
	result := make([]Paper, 0, len(ids))
	for _, id := range ids {
		result = append(result, *l.papers[id-1])
	}
	return result
}

// ListReviews returns all reviews of a paper in submission order. The
// returned records expose the opaque handles and the public comment; they
// are visible to any principal.
func (l *Ledger) ListReviews(paperID uint64) ([]Review, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.paperLocked(paperID); err != nil {
		return nil, err
	}

	ids := l.byPaper[paperID]
	result := make([]Review, 0, len(ids))
	for _, id := range ids {
		result = append(result, *l.reviews[id-1])
	}
	return result, nil
}

// Counts returns the running totals of papers and reviews.
func (l *Ledger) Counts() Counts {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Counts{
		Papers:  uint64(len(l.papers)),
		Reviews: uint64(len(l.reviews)),
	}
}

// Paper returns a copy of the paper record for an assigned id.
func (l *Ledger) Paper(paperID uint64) (Paper, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.paperLocked(paperID)
	if err != nil {
		return Paper{}, err
	}
	return *p, nil
}

// Review returns a copy of the review record for an assigned id.
func (l *Ledger) Review(reviewID uint64) (Review, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, err := l.reviewLocked(reviewID)
	if err != nil {
		return Review{}, err
	}
	return *r, nil
}

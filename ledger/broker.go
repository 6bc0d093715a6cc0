package ledger

import (
	"errors"
	"fmt"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
)

// Capability policy. Two independent authorization layers apply to encrypted
// review fields, and they are deliberately not conflated:
//
//   - Write time: after decoding, the decrypt capability for each handle is
//     granted to the ledger's system identity, the submitting reviewer, and
//     the parent paper's author. Grants are permanent.
//   - Read time: GetEncryptedReview hands the handles to the paper's author
//     or the superuser. Retrieval never grants capability by itself; the
//     author can decrypt only because of the explicit write-time grant, and
//     the superuser receives handles they cannot decrypt.

// Encrypted score domains. The recommendation is a binary accept/reject; the
// quality score lives in [1,4]. Both bounds are enforced in the encrypted
// domain before commit.
const (
	recommendationLo, recommendationHi = 0, 1
	qualityLo, qualityHi               = 1, 4
)

// admitReviewCiphertexts decodes both encrypted review fields, verifies
// their score domains, and issues the write-time capability grants.
func (l *Ledger) admitReviewCiphertexts(reviewer, author crypto.Principal, recommendation, quality EncryptedValue) (fhe.Handle, fhe.Handle, error) {
	recHandle, err := l.admit(reviewer, author, recommendation, "recommendation", recommendationLo, recommendationHi)
	if err != nil {
		return "", "", err
	}
	qualHandle, err := l.admit(reviewer, author, quality, "quality score", qualityLo, qualityHi)
	if err != nil {
		return "", "", err
	}
	return recHandle, qualHandle, nil
}

func (l *Ledger) admit(reviewer, author crypto.Principal, value EncryptedValue, field string, lo, hi uint8) (fhe.Handle, error) {
	handle, err := l.cfg.Cipher.Decode(value.Ciphertext, value.Proof, reviewer)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", field, err)
	}

	if err := l.cfg.Cipher.VerifyRange(handle, lo, hi); err != nil {
		if errors.Is(err, fhe.ErrOutOfRange) {
			return "", fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
		}
		return "", fmt.Errorf("range check for %s: %w", field, err)
	}

	for _, grantee := range []crypto.Principal{l.cfg.System, reviewer, author} {
		if err := l.cfg.Cipher.GrantCapability(handle, grantee); err != nil {
			return "", fmt.Errorf("granting capability for %s: %w", field, err)
		}
	}
	return handle, nil
}

// GetEncryptedReview returns the two opaque handles of a review to an
// authorized caller: the parent paper's author or the superuser. Whether the
// caller can decrypt the handles is decided entirely by the capability
// grants, not by this authorization.
func (l *Ledger) GetEncryptedReview(caller crypto.Principal, reviewID uint64) (recommendation, quality fhe.Handle, paperID uint64, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	review, err := l.reviewLocked(reviewID)
	if err != nil {
		return "", "", 0, err
	}
	paper := l.papers[review.PaperID-1]

	if !caller.Equal(paper.Author) && !caller.Equal(l.cfg.Superuser) {
		return "", "", 0, fmt.Errorf("%w: review %d handles are restricted to the paper author and the superuser", ErrAuthorization, reviewID)
	}

	return review.Recommendation, review.Quality, review.PaperID, nil
}

package protocol

import (
	"time"

	"github.com/OswaldHeaney/reviewnet/crypto"
)

// EncryptedInput is an opaque ciphertext together with its unforgeability
// proof. The proof is bound at encode time to the ledger's ciphertext service
// identity and to the submitting principal; the service rejects a mismatch on
// either binding before any ledger state is touched.
type EncryptedInput struct {
	Ciphertext []byte `json:"ciphertext"`
	Proof      []byte `json:"proof"`
}

// SubmitPaperRequest creates a new paper record.
// All three text fields are required to be non-empty.
type SubmitPaperRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Category string `json:"category"`
}

// SubmitPaperResponse carries the assigned paper identity.
type SubmitPaperResponse struct {
	PaperID uint64 `json:"paper_id"`
}

// SubmitReviewRequest attaches an encrypted review to a paper.
// Recommendation is an encrypted binary accept/reject value; Quality is an
// encrypted score in [1,4]. Comment is public free text and may be empty.
type SubmitReviewRequest struct {
	PaperID        uint64         `json:"paper_id"`
	Recommendation EncryptedInput `json:"recommendation"`
	Quality        EncryptedInput `json:"quality"`
	Comment        string         `json:"comment"`
}

// SubmitReviewResponse carries the assigned review identity.
type SubmitReviewResponse struct {
	ReviewID uint64 `json:"review_id"`
}

// ToggleActiveRequest flips a paper's active flag. Author only.
type ToggleActiveRequest struct {
	PaperID uint64 `json:"paper_id"`
}

// ForceDeactivateRequest deactivates a paper unconditionally. Superuser only.
type ForceDeactivateRequest struct {
	PaperID uint64 `json:"paper_id"`
}

// GetEncryptedReviewRequest retrieves the opaque ciphertext handles of a
// review. Authorized for the parent paper's author and the superuser; holding
// the handles does not by itself permit decryption.
type GetEncryptedReviewRequest struct {
	ReviewID uint64 `json:"review_id"`
}

// EncryptedReviewResponse carries the two opaque handles of a review.
type EncryptedReviewResponse struct {
	ReviewID       uint64 `json:"review_id"`
	PaperID        uint64 `json:"paper_id"`
	Recommendation string `json:"recommendation_handle"`
	Quality        string `json:"quality_handle"`
}

// PaperInfo is the public projection of a paper record.
type PaperInfo struct {
	ID          uint64           `json:"id"`
	Title       string           `json:"title"`
	Abstract    string           `json:"abstract"`
	Category    string           `json:"category"`
	Author      crypto.Principal `json:"author"`
	CreatedAt   time.Time        `json:"created_at"`
	ReviewCount uint64           `json:"review_count"`
	Active      bool             `json:"active"`
}

// ReviewInfo is the public projection of a review record. The handles are
// opaque and non-decryptable without a separately granted capability.
type ReviewInfo struct {
	ID             uint64           `json:"id"`
	PaperID        uint64           `json:"paper_id"`
	Reviewer       crypto.Principal `json:"reviewer"`
	Recommendation string           `json:"recommendation_handle"`
	Quality        string           `json:"quality_handle"`
	Comment        string           `json:"comment"`
	CreatedAt      time.Time        `json:"created_at"`
}

// CountsResponse reports the running ledger totals.
type CountsResponse struct {
	TotalPapers  uint64 `json:"total_papers"`
	TotalReviews uint64 `json:"total_reviews"`
}

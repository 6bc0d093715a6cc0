package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OswaldHeaney/reviewnet/fhe"
	"github.com/OswaldHeaney/reviewnet/ledger"
	"github.com/OswaldHeaney/reviewnet/testutil"
)

func TestSubmitPaperAssignsDenseIDs(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)

	id, err := f.Ledger.SubmitPaper(author.Principal, "T", "A", "C")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	counts := f.Ledger.Counts()
	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 0}, counts)

	id2, err := f.Ledger.SubmitPaper(author.Principal, "T2", "A2", "C2")
	require.NoError(t, err)
	require.Equal(t, uint64(2), id2)

	paper, err := f.Ledger.Paper(1)
	require.NoError(t, err)
	require.True(t, paper.Active)
	require.Zero(t, paper.ReviewCount)
	require.True(t, paper.Author.Equal(author.Principal))
}

func TestSubmitPaperValidatesText(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)

	for _, fields := range [][3]string{
		{"", "A", "C"},
		{"T", "", "C"},
		{"T", "A", ""},
		{"   ", "A", "C"},
	} {
		_, err := f.Ledger.SubmitPaper(author.Principal, fields[0], fields[1], fields[2])
		require.ErrorIs(t, err, ledger.ErrValidation)
	}
	require.Equal(t, ledger.Counts{}, f.Ledger.Counts())
}

func TestSubmitReview(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)

	reviewID, err := f.Ledger.SubmitReview(reviewer.Principal, paperID,
		f.EncryptScore(t, reviewer.Principal, 1),
		f.EncryptScore(t, reviewer.Principal, 3),
		"clear results")
	require.NoError(t, err)
	require.Equal(t, uint64(1), reviewID)

	paper, err := f.Ledger.Paper(paperID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), paper.ReviewCount)

	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 1}, f.Ledger.Counts())

	review, err := f.Ledger.Review(reviewID)
	require.NoError(t, err)
	require.Equal(t, paperID, review.PaperID)
	require.Equal(t, "clear results", review.Comment)
	require.NotEmpty(t, review.Recommendation)
	require.NotEmpty(t, review.Quality)
}

func TestSelfReviewRejected(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)

	_, err := f.Ledger.SubmitReview(author.Principal, paperID,
		f.EncryptScore(t, author.Principal, 1),
		f.EncryptScore(t, author.Principal, 3),
		"")
	require.ErrorIs(t, err, ledger.ErrConflict)
	require.ErrorContains(t, err, "self-review")

	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 0}, f.Ledger.Counts())
}

func TestDuplicateReviewRejected(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	f.SubmitReview(t, reviewer.Principal, paperID, 2)

	_, err := f.Ledger.SubmitReview(reviewer.Principal, paperID,
		f.EncryptScore(t, reviewer.Principal, 1),
		f.EncryptScore(t, reviewer.Principal, 4),
		"")
	require.ErrorIs(t, err, ledger.ErrConflict)
	require.ErrorContains(t, err, "duplicate-review")

	paper, err := f.Ledger.Paper(paperID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), paper.ReviewCount)
}

func TestReviewOfUnknownPaper(t *testing.T) {
	f := testutil.NewFixture(t)
	reviewer := testutil.GenerateKeyPair(t)

	for _, id := range []uint64{0, 1, 99} {
		_, err := f.Ledger.SubmitReview(reviewer.Principal, id,
			f.EncryptScore(t, reviewer.Principal, 1),
			f.EncryptScore(t, reviewer.Principal, 3),
			"")
		require.ErrorIs(t, err, ledger.ErrNotFound)
	}
}

func TestReviewOfInactivePaper(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	require.NoError(t, f.Ledger.ToggleActive(author.Principal, paperID))

	_, err := f.Ledger.SubmitReview(reviewer.Principal, paperID,
		f.EncryptScore(t, reviewer.Principal, 1),
		f.EncryptScore(t, reviewer.Principal, 3),
		"")
	require.ErrorIs(t, err, ledger.ErrState)

	// Reactivation makes the paper reviewable again.
	require.NoError(t, f.Ledger.ToggleActive(author.Principal, paperID))
	f.SubmitReview(t, reviewer.Principal, paperID, 3)
}

func TestDeactivationDoesNotInvalidateExistingReviews(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	reviewID := f.SubmitReview(t, reviewer.Principal, paperID, 2)

	require.NoError(t, f.Ledger.ForceDeactivate(f.Superuser.Principal, paperID))

	reviews, err := f.Ledger.ListReviews(paperID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, reviewID, reviews[0].ID)
	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 1}, f.Ledger.Counts())
}

func TestToggleActiveAuthorization(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	other := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)

	require.ErrorIs(t, f.Ledger.ToggleActive(other.Principal, paperID), ledger.ErrAuthorization)
	require.ErrorIs(t, f.Ledger.ToggleActive(author.Principal, 42), ledger.ErrNotFound)

	require.NoError(t, f.Ledger.ToggleActive(author.Principal, paperID))
	paper, err := f.Ledger.Paper(paperID)
	require.NoError(t, err)
	require.False(t, paper.Active)
}

func TestForceDeactivate(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)

	// Role check applies before the id lookup.
	require.ErrorIs(t, f.Ledger.ForceDeactivate(author.Principal, paperID), ledger.ErrAuthorization)
	require.ErrorIs(t, f.Ledger.ForceDeactivate(f.Superuser.Principal, 42), ledger.ErrNotFound)

	require.NoError(t, f.Ledger.ForceDeactivate(f.Superuser.Principal, paperID))
	paper, err := f.Ledger.Paper(paperID)
	require.NoError(t, err)
	require.False(t, paper.Active)

	// Force-deactivate never re-activates.
	require.NoError(t, f.Ledger.ForceDeactivate(f.Superuser.Principal, paperID))
	paper, err = f.Ledger.Paper(paperID)
	require.NoError(t, err)
	require.False(t, paper.Active)
}

func TestProofRejectionLeavesStateUntouched(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)

	rec := f.EncryptScore(t, reviewer.Principal, 1)
	rec.Proof[0] ^= 0xFF
	_, err := f.Ledger.SubmitReview(reviewer.Principal, paperID,
		rec, f.EncryptScore(t, reviewer.Principal, 3), "")
	require.ErrorIs(t, err, ledger.ErrProof)

	// A proof bound to a different submitter is equally rejected.
	other := testutil.GenerateKeyPair(t)
	_, err = f.Ledger.SubmitReview(reviewer.Principal, paperID,
		f.EncryptScore(t, other.Principal, 1),
		f.EncryptScore(t, reviewer.Principal, 3), "")
	require.ErrorIs(t, err, ledger.ErrProof)

	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 0}, f.Ledger.Counts())
	paper, err := f.Ledger.Paper(paperID)
	require.NoError(t, err)
	require.Zero(t, paper.ReviewCount)
}

func TestQualityScoreRangeEnforced(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)

	for _, score := range []uint8{0, 5, 255} {
		_, err := f.Ledger.SubmitReview(reviewer.Principal, paperID,
			f.EncryptScore(t, reviewer.Principal, 1),
			f.EncryptScore(t, reviewer.Principal, score),
			"")
		require.ErrorIs(t, err, ledger.ErrValidation, "score %d", score)
	}
	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 0}, f.Ledger.Counts())
}

func TestGetEncryptedReviewAuthorization(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)
	outsider := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	reviewID := f.SubmitReview(t, reviewer.Principal, paperID, 3)

	_, _, _, err := f.Ledger.GetEncryptedReview(outsider.Principal, reviewID)
	require.ErrorIs(t, err, ledger.ErrAuthorization)

	_, _, _, err = f.Ledger.GetEncryptedReview(reviewer.Principal, reviewID)
	require.ErrorIs(t, err, ledger.ErrAuthorization)

	_, _, _, err = f.Ledger.GetEncryptedReview(author.Principal, 42)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	rec, qual, gotPaper, err := f.Ledger.GetEncryptedReview(author.Principal, reviewID)
	require.NoError(t, err)
	require.Equal(t, paperID, gotPaper)
	require.NotEmpty(t, rec)
	require.NotEmpty(t, qual)

	_, _, _, err = f.Ledger.GetEncryptedReview(f.Superuser.Principal, reviewID)
	require.NoError(t, err)
}

func TestCapabilityGrants(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	reviewID := f.SubmitReview(t, reviewer.Principal, paperID, 4)

	rec, qual, _, err := f.Ledger.GetEncryptedReview(author.Principal, reviewID)
	require.NoError(t, err)

	// The author was granted capability at write time and can decrypt.
	plaintext, err := f.Cipher.Decrypt(qual, author.Principal)
	require.NoError(t, err)
	score, err := fhe.DecodeScore(plaintext)
	require.NoError(t, err)
	require.Equal(t, uint8(4), score)

	// So can the reviewer and the ledger's own identity.
	_, err = f.Cipher.Decrypt(rec, reviewer.Principal)
	require.NoError(t, err)
	_, err = f.Cipher.Decrypt(rec, f.Ledger.System())
	require.NoError(t, err)

	// The superuser may retrieve handles but holds no decrypt capability.
	_, err = f.Cipher.Decrypt(rec, f.Superuser.Principal)
	require.ErrorIs(t, err, fhe.ErrNoCapability)
}

func TestListReviewable(t *testing.T) {
	f := testutil.NewFixture(t)
	alice := testutil.GenerateKeyPair(t)
	bob := testutil.GenerateKeyPair(t)
	carol := testutil.GenerateKeyPair(t)

	p1 := f.SubmitPaper(t, alice.Principal)
	p2 := f.SubmitPaper(t, bob.Principal)
	p3 := f.SubmitPaper(t, alice.Principal)

	// Carol reviews p1; p3 goes inactive.
	f.SubmitReview(t, carol.Principal, p1, 2)
	require.NoError(t, f.Ledger.ToggleActive(alice.Principal, p3))

	reviewable := f.Ledger.ListReviewable(carol.Principal)
	require.Len(t, reviewable, 1)
	require.Equal(t, p2, reviewable[0].ID)

	// Alice never sees her own papers.
	reviewable = f.Ledger.ListReviewable(alice.Principal)
	require.Len(t, reviewable, 1)
	require.Equal(t, p2, reviewable[0].ID)

	// Ascending id order.
	reviewable = f.Ledger.ListReviewable(bob.Principal)
	require.Len(t, reviewable, 1)
	require.Equal(t, p1, reviewable[0].ID)
}

func TestListOwn(t *testing.T) {
	f := testutil.NewFixture(t)
	alice := testutil.GenerateKeyPair(t)
	bob := testutil.GenerateKeyPair(t)

	p1 := f.SubmitPaper(t, alice.Principal)
	f.SubmitPaper(t, bob.Principal)
	p3 := f.SubmitPaper(t, alice.Principal)

	own := f.Ledger.ListOwn(alice.Principal)
	require.Len(t, own, 2)
	require.Equal(t, p1, own[0].ID)
	require.Equal(t, p3, own[1].ID)

	require.Empty(t, f.Ledger.ListOwn(testutil.GenerateKeyPair(t).Principal))
}

func TestListReviewsOrderAndNotFound(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	r1 := f.SubmitReview(t, testutil.GenerateKeyPair(t).Principal, paperID, 1)
	r2 := f.SubmitReview(t, testutil.GenerateKeyPair(t).Principal, paperID, 4)

	reviews, err := f.Ledger.ListReviews(paperID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	require.Equal(t, r1, reviews[0].ID)
	require.Equal(t, r2, reviews[1].ID)

	_, err = f.Ledger.ListReviews(99)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCountsIdempotent(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)
	f.SubmitPaper(t, author.Principal)

	first := f.Ledger.Counts()
	second := f.Ledger.Counts()
	require.Equal(t, first, second)
}

func TestReviewCountMatchesReviews(t *testing.T) {
	f := testutil.NewFixture(t)
	author := testutil.GenerateKeyPair(t)

	paperID := f.SubmitPaper(t, author.Principal)
	for i := 0; i < 3; i++ {
		f.SubmitReview(t, testutil.GenerateKeyPair(t).Principal, paperID, 2)

		paper, err := f.Ledger.Paper(paperID)
		require.NoError(t, err)
		reviews, err := f.Ledger.ListReviews(paperID)
		require.NoError(t, err)
		require.Equal(t, paper.ReviewCount, uint64(len(reviews)))
	}
}

// reentrantArchiver calls back into the ledger from inside the commit
// boundary, simulating a collaborator that tries to mutate mid-transition.
type reentrantArchiver struct {
	ledger **ledger.Ledger
	author testutil.KeyPair
	err    error
}

func (a *reentrantArchiver) SavePaper(*ledger.Paper) error { return nil }

func (a *reentrantArchiver) SaveReview(*ledger.Review) error {
	_, a.err = (*a.ledger).SubmitPaper(a.author.Principal, "T", "A", "C")
	return a.err
}

func (a *reentrantArchiver) SetPaperActive(uint64, bool) error { return nil }

func (a *reentrantArchiver) LoadAll() ([]*ledger.Paper, []*ledger.Review, error) {
	return nil, nil, nil
}

func TestReentrantMutationRejected(t *testing.T) {
	author := testutil.GenerateKeyPair(t)
	archiver := &reentrantArchiver{author: author}
	f := testutil.NewFixtureWithArchive(t, archiver)
	archiver.ledger = &f.Ledger

	reviewer := testutil.GenerateKeyPair(t)
	paperID := f.SubmitPaper(t, author.Principal)

	_, err := f.Ledger.SubmitReview(reviewer.Principal, paperID,
		f.EncryptScore(t, reviewer.Principal, 1),
		f.EncryptScore(t, reviewer.Principal, 3),
		"")
	require.ErrorIs(t, err, ledger.ErrBusy)
	require.ErrorIs(t, archiver.err, ledger.ErrBusy)

	// The aborted submission left no partial state behind.
	require.Equal(t, ledger.Counts{Papers: 1, Reviews: 0}, f.Ledger.Counts())
}

package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
)

// Archiver persists committed records. Calls happen synchronously inside the
// commit boundary: a failed archive write aborts the operation before any
// in-memory state changes. LoadAll must return records ordered by id.
type Archiver interface {
	SavePaper(p *Paper) error
	SaveReview(r *Review) error
	SetPaperActive(paperID uint64, active bool) error
	LoadAll() ([]*Paper, []*Review, error)
}

// Config carries the ledger's collaborators and its distinguished principals.
type Config struct {
	// Cipher validates encrypted submissions and manages capabilities.
	Cipher fhe.Service

	// Superuser is the single principal permitted to force-deactivate
	// papers and to retrieve encrypted review handles for any paper.
	Superuser crypto.Principal

	// System is the ledger's own identity. Every stored handle is granted
	// to it so the ciphertext remains usable for internal computation.
	// Generated if empty.
	System crypto.Principal

	// Archive persists committed records. Optional; nil keeps the ledger
	// purely in memory.
	Archive Archiver
}

// Ledger is the single-writer state machine owning all paper and review
// records.
type Ledger struct {
	cfg Config

	// writing is the global write token. A mutating operation that cannot
	// take it fails with ErrBusy; this also catches re-entrant mutation from
	// collaborator callbacks, which would otherwise corrupt a half-applied
	// transition.
	writing atomic.Bool

	// mu guards the committed state. Writers hold it only for the final
	// commit step; readers observe the last committed state.
	mu       sync.RWMutex
	papers   []*Paper
	reviews  []*Review
	byAuthor map[string][]uint64
	byPaper  map[uint64][]uint64
	reviewed map[reviewKey]bool
}

// New creates a ledger, rebuilding state from the archive when one is
// configured.
func New(cfg Config) (*Ledger, error) {
	if cfg.Cipher == nil {
		return nil, errors.New("cipher service cannot be nil")
	}
	if cfg.Superuser.IsZero() {
		return nil, errors.New("superuser principal cannot be empty")
	}
	if cfg.System.IsZero() {
		system, _, err := crypto.GenerateKeyPair()
		if err != nil {
			return nil, fmt.Errorf("failed to generate system identity: %w", err)
		}
		cfg.System = system
	}

	l := &Ledger{
		cfg:      cfg,
		byAuthor: make(map[string][]uint64),
		byPaper:  make(map[uint64][]uint64),
		reviewed: make(map[reviewKey]bool),
	}

	if cfg.Archive != nil {
		if err := l.loadFromArchive(); err != nil {
			return nil, fmt.Errorf("rebuilding ledger from archive: %w", err)
		}
	}
	return l, nil
}

// System returns the ledger's own principal identity.
func (l *Ledger) System() crypto.Principal {
	return l.cfg.System
}

func (l *Ledger) loadFromArchive() error {
	papers, reviews, err := l.cfg.Archive.LoadAll()
	if err != nil {
		return err
	}

	for i, p := range papers {
		if p.ID != uint64(i+1) {
			return fmt.Errorf("paper table not dense: position %d holds id %d", i+1, p.ID)
		}
		l.papers = append(l.papers, p)
		l.byAuthor[p.Author.String()] = append(l.byAuthor[p.Author.String()], p.ID)
	}
	for i, r := range reviews {
		if r.ID != uint64(i+1) {
			return fmt.Errorf("review table not dense: position %d holds id %d", i+1, r.ID)
		}
		if r.PaperID == 0 || r.PaperID > uint64(len(l.papers)) {
			return fmt.Errorf("review %d references unknown paper %d", r.ID, r.PaperID)
		}
		l.reviews = append(l.reviews, r)
		l.byPaper[r.PaperID] = append(l.byPaper[r.PaperID], r.ID)
		l.reviewed[reviewKey{reviewer: r.Reviewer.String(), paperID: r.PaperID}] = true
	}

	// Review counts are derived; recompute rather than trusting the archive.
	for _, p := range l.papers {
		p.ReviewCount = uint64(len(l.byPaper[p.ID]))
	}
	return nil
}

// beginWrite takes the global write token.
func (l *Ledger) beginWrite() error {
	if !l.writing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (l *Ledger) endWrite() {
	l.writing.Store(false)
}

// SubmitPaper creates a new paper record owned by author and returns its
// assigned identity.
func (l *Ledger) SubmitPaper(author crypto.Principal, title, abstract, category string) (uint64, error) {
	if err := l.beginWrite(); err != nil {
		return 0, err
	}
	defer l.endWrite()

	for name, value := range map[string]string{"title": title, "abstract": abstract, "category": category} {
		if strings.TrimSpace(value) == "" {
			return 0, fmt.Errorf("%w: %s must not be empty", ErrValidation, name)
		}
	}

	paper := &Paper{
		ID:        uint64(len(l.papers) + 1),
		Title:     title,
		Abstract:  abstract,
		Category:  category,
		Author:    author,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}

	if l.cfg.Archive != nil {
		if err := l.cfg.Archive.SavePaper(paper); err != nil {
			return 0, fmt.Errorf("archiving paper: %w", err)
		}
	}

	l.mu.Lock()
	l.papers = append(l.papers, paper)
	l.byAuthor[author.String()] = append(l.byAuthor[author.String()], paper.ID)
	l.mu.Unlock()

	return paper.ID, nil
}

// SubmitReview validates, decodes, and commits an encrypted review of a
// paper. The operation aborts with zero state change if any precondition,
// proof check, or archive write fails.
func (l *Ledger) SubmitReview(reviewer crypto.Principal, paperID uint64, recommendation, quality EncryptedValue, comment string) (uint64, error) {
	if err := l.beginWrite(); err != nil {
		return 0, err
	}
	defer l.endWrite()

	// Conflict gate first: fail before touching the ciphertext service.
	l.mu.RLock()
	author, err := l.reviewGate(paperID, reviewer)
	l.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	// Decode, range-check, and grant capabilities. The write token is held,
	// so committed state cannot move underneath us while the ciphertext
	// service runs.
	recHandle, qualHandle, err := l.admitReviewCiphertexts(reviewer, author, recommendation, quality)
	if err != nil {
		return 0, err
	}

	review := &Review{
		ID:             uint64(len(l.reviews) + 1),
		PaperID:        paperID,
		Reviewer:       reviewer,
		Recommendation: recHandle,
		Quality:        qualHandle,
		Comment:        comment,
		CreatedAt:      time.Now().UTC(),
	}

	if l.cfg.Archive != nil {
		if err := l.cfg.Archive.SaveReview(review); err != nil {
			return 0, fmt.Errorf("archiving review: %w", err)
		}
	}

	l.mu.Lock()
	l.reviews = append(l.reviews, review)
	l.byPaper[paperID] = append(l.byPaper[paperID], review.ID)
	l.reviewed[reviewKey{reviewer: reviewer.String(), paperID: paperID}] = true
	l.papers[paperID-1].ReviewCount++
	l.mu.Unlock()

	return review.ID, nil
}

// ToggleActive flips a paper's active flag. Author only.
func (l *Ledger) ToggleActive(caller crypto.Principal, paperID uint64) error {
	if err := l.beginWrite(); err != nil {
		return err
	}
	defer l.endWrite()

	l.mu.RLock()
	paper, err := l.paperLocked(paperID)
	l.mu.RUnlock()
	if err != nil {
		return err
	}
	if !caller.Equal(paper.Author) {
		return fmt.Errorf("%w: only the author may toggle paper %d", ErrAuthorization, paperID)
	}

	next := !paper.Active
	if l.cfg.Archive != nil {
		if err := l.cfg.Archive.SetPaperActive(paperID, next); err != nil {
			return fmt.Errorf("archiving active flag: %w", err)
		}
	}

	l.mu.Lock()
	l.papers[paperID-1].Active = next
	l.mu.Unlock()
	return nil
}

// ForceDeactivate sets a paper inactive unconditionally. Superuser only;
// never re-activates.
func (l *Ledger) ForceDeactivate(caller crypto.Principal, paperID uint64) error {
	if err := l.beginWrite(); err != nil {
		return err
	}
	defer l.endWrite()

	if !caller.Equal(l.cfg.Superuser) {
		return fmt.Errorf("%w: force-deactivate requires the superuser role", ErrAuthorization)
	}

	l.mu.RLock()
	_, err := l.paperLocked(paperID)
	l.mu.RUnlock()
	if err != nil {
		return err
	}

	if l.cfg.Archive != nil {
		if err := l.cfg.Archive.SetPaperActive(paperID, false); err != nil {
			return fmt.Errorf("archiving active flag: %w", err)
		}
	}

	l.mu.Lock()
	l.papers[paperID-1].Active = false
	l.mu.Unlock()
	return nil
}

// paperLocked returns the paper record for an assigned id.
// Caller must hold mu.
func (l *Ledger) paperLocked(paperID uint64) (*Paper, error) {
	if paperID == 0 || paperID > uint64(len(l.papers)) {
		return nil, fmt.Errorf("%w: paper %d", ErrNotFound, paperID)
	}
	return l.papers[paperID-1], nil
}

// reviewLocked returns the review record for an assigned id.
// Caller must hold mu.
func (l *Ledger) reviewLocked(reviewID uint64) (*Review, error) {
	if reviewID == 0 || reviewID > uint64(len(l.reviews)) {
		return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
	}
	return l.reviews[reviewID-1], nil
}

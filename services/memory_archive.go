package services

import (
	"fmt"
	"sync"

	"github.com/OswaldHeaney/reviewnet/ledger"
)

// MemoryArchive implements ledger.Archiver without a database.
type MemoryArchive struct {
	mu      sync.Mutex
	papers  []*ledger.Paper
	reviews []*ledger.Review
}

// NewMemoryArchive creates an in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

// SavePaper stores a copy of a committed paper record.
func (a *MemoryArchive) SavePaper(p *ledger.Paper) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := *p
	a.papers = append(a.papers, &cp)
	return nil
}

// SaveReview stores a copy of a committed review record.
func (a *MemoryArchive) SaveReview(r *ledger.Review) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := *r
	a.reviews = append(a.reviews, &cp)
	return nil
}

// SetPaperActive updates a stored paper's active flag.
func (a *MemoryArchive) SetPaperActive(paperID uint64, active bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if paperID == 0 || paperID > uint64(len(a.papers)) {
		return fmt.Errorf("paper %d not present in archive", paperID)
	}
	a.papers[paperID-1].Active = active
	return nil
}

// LoadAll returns copies of all stored records ordered by id.
func (a *MemoryArchive) LoadAll() ([]*ledger.Paper, []*ledger.Review, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	papers := make([]*ledger.Paper, len(a.papers))
	for i, p := range a.papers {
		cp := *p
		papers[i] = &cp
	}
	reviews := make([]*ledger.Review, len(a.reviews))
	for i, r := range a.reviews {
		cp := *r
		reviews[i] = &cp
	}
	return papers, reviews, nil
}

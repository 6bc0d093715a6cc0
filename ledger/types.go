package ledger

import (
	"time"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
)

// Paper is a public record submitted to the ledger. Papers are owned
// exclusively by the ledger and never deleted; the only mutable fields are
// the active flag and the derived review count.
type Paper struct {
	ID          uint64
	Title       string
	Abstract    string
	Category    string
	Author      crypto.Principal
	CreatedAt   time.Time
	ReviewCount uint64
	Active      bool
}

// Review is a privately-scored evaluation of a paper. The recommendation and
// quality fields are opaque ciphertext handles; the ledger stores them
// verbatim and never inspects their contents. Reviews are immutable once
// committed.
type Review struct {
	ID             uint64
	PaperID        uint64
	Reviewer       crypto.Principal
	Recommendation fhe.Handle
	Quality        fhe.Handle
	Comment        string
	CreatedAt      time.Time
}

// EncryptedValue is a submitted ciphertext together with its unforgeability
// proof, as received on the wire.
type EncryptedValue struct {
	Ciphertext []byte
	Proof      []byte
}

// Counts reports the running ledger totals.
type Counts struct {
	Papers  uint64
	Reviews uint64
}

// reviewKey identifies a (reviewer, paper) pair in the reviewed set.
type reviewKey struct {
	reviewer string
	paperID  uint64
}

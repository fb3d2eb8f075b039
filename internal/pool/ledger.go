// ledger.go - In-memory view of the authoritative shielded ledger.
//
// The ledger holds the commitment tree and nullifier set synchronized
// from an external feed. It only grows: the feed supplies commitments
// and revealed nullifiers in ledger order, assumed gap-free. Callers
// take a Snapshot before building a transfer and apply accepted
// transfers back; both paths go through one mutex so mutation is
// atomic with respect to snapshot reads.

package pool

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"

	"shieldedpool/internal/nullifier"
	"shieldedpool/internal/tree"
)

// DefaultMaxRootAge is the default staleness window, in epochs, within
// which a transfer built against an older root is still accepted.
const DefaultMaxRootAge = 64

// Ledger is the process-wide shielded pool state.
type Ledger struct {
	mu         sync.RWMutex
	tree       *tree.Tree
	nullifiers *nullifier.Set
}

// NewLedger creates an empty ledger with a production-depth tree.
func NewLedger() *Ledger {
	return &Ledger{
		tree:       tree.New(tree.Depth),
		nullifiers: nullifier.NewSet(),
	}
}

// ApplyBlock ingests one ordered batch from the synchronization feed:
// new commitments first, then revealed nullifiers. Returns the epoch
// after the batch. A duplicate nullifier in the feed is a state
// conflict and aborts before any commitment of the batch is applied.
func (l *Ledger) ApplyBlock(commitments, nullifiers []fr.Element) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, nf := range nullifiers {
		if l.nullifiers.Contains(nf) {
			return l.tree.Epoch(), fmt.Errorf("apply block: %w", nullifier.ErrDuplicateNullifier)
		}
	}
	for _, cm := range commitments {
		if _, err := l.tree.Insert(cm); err != nil {
			return l.tree.Epoch(), fmt.Errorf("apply block: %w", err)
		}
	}
	for _, nf := range nullifiers {
		l.nullifiers.Insert(nf)
	}
	return l.tree.Epoch(), nil
}

// Apply finalizes a locally built transfer against the current ledger
// state: the referenced root must be one the ledger produced, no older
// than maxRootAge epochs, and every nullifier must be fresh.
func (l *Ledger) Apply(t *Transfer, maxRootAge uint64) (uint64, error) {
	if t.Public.Version != SchemaVersion {
		return 0, ErrSchemaVersion
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	root, err := l.tree.RootAtEpoch(t.Witness.Epoch)
	if err != nil || !root.Equal(&t.Public.Root) {
		return 0, ErrUnknownRoot
	}
	if l.tree.Epoch()-t.Witness.Epoch > maxRootAge {
		return 0, ErrStaleTree
	}
	for _, nf := range t.Public.Nullifiers {
		if l.nullifiers.Contains(nf) {
			return 0, nullifier.ErrDuplicateNullifier
		}
	}

	for _, nf := range t.Public.Nullifiers {
		l.nullifiers.Insert(nf)
	}
	for _, cm := range t.Public.OutputCommitments {
		if _, err := l.tree.Insert(cm); err != nil {
			return 0, err
		}
	}
	return l.tree.Epoch(), nil
}

// Epoch returns the current ledger epoch (leaves inserted so far).
func (l *Ledger) Epoch() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.Epoch()
}

// Root returns the current tree root.
func (l *Ledger) Root() fr.Element {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.Root()
}

// RootAtEpoch returns a historical root for proof verification against
// slightly stale anchors.
func (l *Ledger) RootAtEpoch(epoch uint64) (fr.Element, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.RootAtEpoch(epoch)
}

// Spent reports whether a nullifier has been revealed.
func (l *Ledger) Spent(nf fr.Element) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nullifiers.Contains(nf)
}

// Snapshot captures a consistent view for transfer building: the epoch
// and root at capture time plus a copy of the nullifier set. Concurrent
// builds against the same snapshot are safe; the snapshot itself never
// mutates.
type Snapshot struct {
	ledger     *Ledger
	Epoch      uint64
	Root       fr.Element
	Nullifiers *nullifier.Set
}

// Snapshot takes a consistent snapshot of the ledger.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Snapshot{
		ledger:     l,
		Epoch:      l.tree.Epoch(),
		Root:       l.tree.Root(),
		Nullifiers: l.nullifiers.Clone(),
	}
}

// proofFor fetches a membership witness from the underlying tree,
// failing with ErrStaleTree once the ledger has advanced more than
// maxRootAge epochs past the snapshot. Within the window the proof (and
// the root it opens against) reflect the live tree.
func (s *Snapshot) proofFor(position uint64, maxRootAge uint64) (*tree.Proof, error) {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	if s.ledger.tree.Epoch()-s.Epoch > maxRootAge {
		return nil, ErrStaleTree
	}
	return s.ledger.tree.ProofFor(position)
}

// anchor returns the live root and epoch the assembled proofs open
// against.
func (s *Snapshot) anchor() (fr.Element, uint64) {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	return s.ledger.tree.Root(), s.ledger.tree.Epoch()
}

// tree.go - Append-only sparse Merkle tree over note commitments.
//
// The tree has a fixed depth and precomputed empty-subtree hashes per
// level, so an empty tree needs no storage and each insert touches only
// the O(depth) nodes on its path. Leaves are append-only: a committed
// leaf is never modified or removed. Every insert advances the epoch by
// one and records the new root, so proofs can later be checked against
// the root of the epoch they were built for.

package tree

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// Depth is the production tree depth (2^32 leaf capacity).
const Depth = 32

var (
	ErrCapacityExceeded = errors.New("commitment tree is full")
	ErrNotFound         = errors.New("no leaf at this position")
	ErrUnknownEpoch     = errors.New("unknown tree epoch")
)

// Tree is an in-memory sparse Merkle tree. Nodes are keyed by
// height<<32|index; unpopulated subtrees fall back to the per-level
// default hash. Not safe for concurrent mutation; the pool ledger
// serializes access.
type Tree struct {
	depth    int
	nodes    map[uint64]fr.Element
	defaults []fr.Element
	next     uint64
	roots    []fr.Element // roots[e] = root at epoch e (e leaves inserted)
}

// Proof is a Merkle membership witness: one sibling per level, leaf to
// root. Path bit i is set when the node at height i is a right child.
type Proof struct {
	Position uint64
	Siblings []fr.Element
}

// New creates an empty tree of the given depth. Production code uses
// Depth; tests shrink it to reach the capacity boundary.
func New(depth int) *Tree {
	t := &Tree{
		depth:    depth,
		nodes:    make(map[uint64]fr.Element),
		defaults: defaultHashes(depth),
	}
	t.roots = append(t.roots, t.defaults[depth])
	return t
}

// defaultHashes precomputes the empty-subtree hash for every level:
// level 0 is MiMC(0), level h is MiMC(d[h-1], d[h-1]).
func defaultHashes(depth int) []fr.Element {
	d := make([]fr.Element, depth+1)
	var zero fr.Element
	d[0] = compress1(zero)
	for h := 1; h <= depth; h++ {
		d[h] = compress(d[h-1], d[h-1])
	}
	return d
}

// Insert appends a commitment at the next free leaf slot and updates
// the ancestor hashes. Returns the leaf position.
func (t *Tree) Insert(cm fr.Element) (uint64, error) {
	if t.next >= uint64(1)<<t.depth {
		return 0, ErrCapacityExceeded
	}
	pos := t.next
	t.next++

	t.nodes[nodeKey(0, pos)] = cm
	idx := pos
	cur := cm
	for h := 1; h <= t.depth; h++ {
		sib := t.node(h-1, idx^1)
		if idx%2 == 0 {
			cur = compress(cur, sib)
		} else {
			cur = compress(sib, cur)
		}
		idx /= 2
		t.nodes[nodeKey(h, idx)] = cur
	}
	t.roots = append(t.roots, cur)
	return pos, nil
}

// Root returns the current root. An empty tree's root is the depth-th
// default hash.
func (t *Tree) Root() fr.Element {
	return t.roots[t.next]
}

// Epoch returns the number of leaves inserted so far. It identifies the
// ledger state a proof or transfer was built against.
func (t *Tree) Epoch() uint64 {
	return t.next
}

// RootAtEpoch returns the historical root after exactly epoch leaves.
func (t *Tree) RootAtEpoch(epoch uint64) (fr.Element, error) {
	if epoch >= uint64(len(t.roots)) {
		return fr.Element{}, fmt.Errorf("%w: %d", ErrUnknownEpoch, epoch)
	}
	return t.roots[epoch], nil
}

// ProofFor extracts the membership witness for an inserted leaf.
func (t *Tree) ProofFor(position uint64) (*Proof, error) {
	if position >= t.next {
		return nil, fmt.Errorf("%w: position %d", ErrNotFound, position)
	}
	p := &Proof{
		Position: position,
		Siblings: make([]fr.Element, t.depth),
	}
	idx := position
	for h := 0; h < t.depth; h++ {
		p.Siblings[h] = t.node(h, idx^1)
		idx /= 2
	}
	return p, nil
}

// Root recomputes the root implied by the proof for the given leaf.
// Witness assembly rechecks this against the tree root before emitting
// a transfer.
func (p *Proof) Root(leaf fr.Element) fr.Element {
	cur := leaf
	idx := p.Position
	for _, sib := range p.Siblings {
		if idx%2 == 0 {
			cur = compress(cur, sib)
		} else {
			cur = compress(sib, cur)
		}
		idx /= 2
	}
	return cur
}

func (t *Tree) node(height int, index uint64) fr.Element {
	if v, ok := t.nodes[nodeKey(height, index)]; ok {
		return v
	}
	return t.defaults[height]
}

func nodeKey(height int, index uint64) uint64 {
	return uint64(height)<<32 | index
}

func compress(left, right fr.Element) fr.Element {
	h := mimcNative.NewMiMC()
	l := left.Bytes()
	r := right.Bytes()
	h.Write(l[:])
	h.Write(r[:])
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func compress1(e fr.Element) fr.Element {
	h := mimcNative.NewMiMC()
	b := e.Bytes()
	h.Write(b[:])
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

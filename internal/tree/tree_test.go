package tree

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
)

func leaf(i uint64) fr.Element {
	var e fr.Element
	e.SetUint64(i + 1000)
	return e
}

func TestInsertAndProve(t *testing.T) {
	tr := New(8)
	for i := uint64(0); i < 10; i++ {
		pos, err := tr.Insert(leaf(i))
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if pos != i {
			t.Fatalf("insert %d: got position %d", i, pos)
		}
	}

	root := tr.Root()
	for i := uint64(0); i < 10; i++ {
		p, err := tr.ProofFor(i)
		if err != nil {
			t.Fatalf("proof %d: %v", i, err)
		}
		if got := p.Root(leaf(i)); !got.Equal(&root) {
			t.Fatalf("proof %d does not recompute the root", i)
		}
	}
}

func TestProofRejectsWrongLeaf(t *testing.T) {
	tr := New(8)
	if _, err := tr.Insert(leaf(0)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	p, err := tr.ProofFor(0)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	root := tr.Root()
	if got := p.Root(leaf(1)); got.Equal(&root) {
		t.Fatal("proof verified against the wrong leaf")
	}
}

func TestProofForUnpopulatedPosition(t *testing.T) {
	tr := New(8)
	if _, err := tr.ProofFor(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := tr.Insert(leaf(0)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := tr.ProofFor(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEpochAndHistoricalRoots(t *testing.T) {
	tr := New(8)
	if tr.Epoch() != 0 {
		t.Fatalf("fresh tree epoch = %d", tr.Epoch())
	}
	empty := tr.Root()

	var afterFirst fr.Element
	for i := uint64(0); i < 3; i++ {
		if _, err := tr.Insert(leaf(i)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if i == 0 {
			afterFirst = tr.Root()
		}
	}
	if tr.Epoch() != 3 {
		t.Fatalf("epoch = %d, want 3", tr.Epoch())
	}

	r0, err := tr.RootAtEpoch(0)
	if err != nil {
		t.Fatalf("root at epoch 0: %v", err)
	}
	if !r0.Equal(&empty) {
		t.Fatal("epoch 0 root changed after inserts")
	}
	r1, err := tr.RootAtEpoch(1)
	if err != nil {
		t.Fatalf("root at epoch 1: %v", err)
	}
	if !r1.Equal(&afterFirst) {
		t.Fatal("epoch 1 root does not match recorded root")
	}
	if _, err := tr.RootAtEpoch(4); !errors.Is(err, ErrUnknownEpoch) {
		t.Fatalf("expected ErrUnknownEpoch, got %v", err)
	}
}

func TestRootChangesPerInsert(t *testing.T) {
	tr := New(8)
	prev := tr.Root()
	for i := uint64(0); i < 5; i++ {
		if _, err := tr.Insert(leaf(i)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		cur := tr.Root()
		if cur.Equal(&prev) {
			t.Fatalf("root unchanged after insert %d", i)
		}
		prev = cur
	}
}

func TestCapacityBoundary(t *testing.T) {
	const depth = 3
	tr := New(depth)
	for i := uint64(0); i < 1<<depth; i++ {
		if _, err := tr.Insert(leaf(i)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if _, err := tr.Insert(leaf(99)); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// A full tree still proves all of its leaves.
	root := tr.Root()
	for i := uint64(0); i < 1<<depth; i++ {
		p, err := tr.ProofFor(i)
		if err != nil {
			t.Fatalf("proof %d: %v", i, err)
		}
		if got := p.Root(leaf(i)); !got.Equal(&root) {
			t.Fatalf("proof %d does not recompute the root", i)
		}
	}
}

func TestEmptyTreesShareRoot(t *testing.T) {
	a := New(8)
	b := New(8)
	ra := a.Root()
	rb := b.Root()
	if !ra.Equal(&rb) {
		t.Fatal("empty trees of equal depth disagree on the root")
	}
}

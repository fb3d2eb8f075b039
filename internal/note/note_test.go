package note

import (
	"crypto/rand"
	"testing"

	"shieldedpool/internal/keys"
)

func testKey(t *testing.T) *keys.SpendingKey {
	t.Helper()
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	sk, err := keys.DeriveSpendingKey(seed)
	if err != nil {
		t.Fatalf("derive spending key: %v", err)
	}
	return sk
}

func testNote(t *testing.T, sk *keys.SpendingKey, value uint64) *Note {
	t.Helper()
	addr, err := sk.ViewingKey().NewAddress()
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	n, err := New(value, AssetID("test"), addr, nil)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	return n
}

func TestCommitmentDeterministic(t *testing.T) {
	n := testNote(t, testKey(t), 42)
	cm1 := n.Commitment()
	cm2 := n.Commitment()
	if !cm1.Equal(&cm2) {
		t.Fatal("commitment not deterministic")
	}
}

func TestCommitmentHidesValueBehindBlinding(t *testing.T) {
	sk := testKey(t)
	addr, err := sk.ViewingKey().NewAddress()
	if err != nil {
		t.Fatalf("address: %v", err)
	}

	// Identical value, asset and owner with different blinding factors
	// must yield different commitments.
	a, err := New(42, AssetID("test"), addr, nil)
	if err != nil {
		t.Fatalf("note a: %v", err)
	}
	b, err := New(42, AssetID("test"), addr, nil)
	if err != nil {
		t.Fatalf("note b: %v", err)
	}
	cmA := a.Commitment()
	cmB := b.Commitment()
	if cmA.Equal(&cmB) {
		t.Fatal("distinct blinding factors produced equal commitments")
	}
}

func TestCommitmentBindsFields(t *testing.T) {
	sk := testKey(t)
	n := testNote(t, sk, 42)
	base := n.Commitment()

	mutated := *n
	mutated.Value = 43
	if cm := mutated.Commitment(); cm.Equal(&base) {
		t.Fatal("commitment not bound to value")
	}

	mutated = *n
	mutated.Asset = AssetID("other")
	if cm := mutated.Commitment(); cm.Equal(&base) {
		t.Fatal("commitment not bound to asset")
	}

	mutated = *n
	mutated.Owner.Diversifier[0] ^= 1
	if cm := mutated.Commitment(); cm.Equal(&base) {
		t.Fatal("commitment not bound to diversifier")
	}
}

func TestNullifierBindsPosition(t *testing.T) {
	sk := testKey(t)
	n := testNote(t, sk, 42)

	nf0 := Nullifier(n, 0, sk)
	nf0Again := Nullifier(n, 0, sk)
	nf1 := Nullifier(n, 1, sk)

	if !nf0.Equal(&nf0Again) {
		t.Fatal("nullifier not deterministic")
	}
	if nf0.Equal(&nf1) {
		t.Fatal("same note at different positions produced equal nullifiers")
	}
}

func TestNullifierBindsKey(t *testing.T) {
	skA := testKey(t)
	skB := testKey(t)
	n := testNote(t, skA, 42)

	nfA := Nullifier(n, 7, skA)
	nfB := Nullifier(n, 7, skB)
	if nfA.Equal(&nfB) {
		t.Fatal("distinct keys produced equal nullifiers")
	}
}

func TestNewValueBounds(t *testing.T) {
	sk := testKey(t)
	addr, err := sk.ViewingKey().NewAddress()
	if err != nil {
		t.Fatalf("address: %v", err)
	}

	if _, err := New(MaxValue, AssetID("test"), addr, nil); err != nil {
		t.Fatalf("max value rejected: %v", err)
	}
	if _, err := New(MaxValue+1, AssetID("test"), addr, nil); err != ErrValueOutOfRange {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
}

func TestNewMemoBounds(t *testing.T) {
	sk := testKey(t)
	addr, err := sk.ViewingKey().NewAddress()
	if err != nil {
		t.Fatalf("address: %v", err)
	}

	if _, err := New(1, AssetID("test"), addr, make([]byte, MaxMemoLen)); err != nil {
		t.Fatalf("max memo rejected: %v", err)
	}
	if _, err := New(1, AssetID("test"), addr, make([]byte, MaxMemoLen+1)); err != ErrMemoTooLong {
		t.Fatalf("expected ErrMemoTooLong, got %v", err)
	}
}

func TestMemoHash(t *testing.T) {
	a := MemoHash([]byte("hello"))
	b := MemoHash([]byte("hello"))
	c := MemoHash([]byte("world"))
	if !a.Equal(&b) {
		t.Fatal("memo hash not deterministic")
	}
	if a.Equal(&c) {
		t.Fatal("distinct memos produced equal hashes")
	}

	// Longer than one 32-byte absorption chunk.
	d := MemoHash([]byte("a memo long enough to span more than a single absorption chunk"))
	e := MemoHash([]byte("a memo long enough to span more than a single absorption chunk!"))
	if d.Equal(&e) {
		t.Fatal("multi-chunk memos produced equal hashes")
	}
}

func TestAssetIDDistinct(t *testing.T) {
	a := AssetID("gold")
	b := AssetID("silver")
	if a.Equal(&b) {
		t.Fatal("distinct asset names produced equal identifiers")
	}
}

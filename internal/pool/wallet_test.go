package pool

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"

	"shieldedpool/internal/note"
)

func TestWalletScanRecognizesOwnNotes(t *testing.T) {
	alice := newTestParty(t)
	bob := newTestParty(t)
	asset := note.AssetID("test")

	w := NewWallet(bob.sk)

	n, err := note.New(25, asset, bob.addr, []byte("hi"))
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	payload, err := n.Encrypt(bob.vk.IncomingKey)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, ok := w.Scan(payload, 3)
	if !ok {
		t.Fatal("wallet did not recognize its own payload")
	}
	if got.Value != 25 {
		t.Fatalf("scanned value = %d", got.Value)
	}
	if w.Balance(asset) != 25 {
		t.Fatalf("balance = %d", w.Balance(asset))
	}

	// A payload for someone else is ignored.
	other, err := note.New(9, asset, alice.addr, nil)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	foreign, err := other.Encrypt(alice.vk.IncomingKey)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, ok := w.Scan(foreign, 4); ok {
		t.Fatal("wallet claimed a foreign payload")
	}
	if w.Balance(asset) != 25 {
		t.Fatalf("foreign payload changed balance: %d", w.Balance(asset))
	}
}

func TestWalletMarkSpent(t *testing.T) {
	alice := newTestParty(t)
	asset := note.AssetID("test")

	w := NewWallet(alice.sk)
	n, err := note.New(10, asset, alice.addr, nil)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	w.Track(n, 5)

	if w.Balance(asset) != 10 {
		t.Fatalf("balance = %d", w.Balance(asset))
	}

	// An unrelated nullifier leaves the note untouched.
	w.MarkSpent([]fr.Element{felt(1)})
	if w.Balance(asset) != 10 {
		t.Fatal("unrelated nullifier spent the note")
	}

	w.MarkSpent([]fr.Element{note.Nullifier(n, 5, alice.sk)})
	if w.Balance(asset) != 0 {
		t.Fatalf("balance after spend = %d", w.Balance(asset))
	}
	if got := w.Spendable(asset); len(got) != 0 {
		t.Fatalf("spent note still spendable: %d entries", len(got))
	}
}

func TestWalletSpendableFiltersAsset(t *testing.T) {
	alice := newTestParty(t)
	gold := note.AssetID("gold")
	silver := note.AssetID("silver")

	w := NewWallet(alice.sk)
	g, err := note.New(3, gold, alice.addr, nil)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	s, err := note.New(4, silver, alice.addr, nil)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	w.Track(g, 0)
	w.Track(s, 1)

	got := w.Spendable(gold)
	if len(got) != 1 || got[0].Note.Value != 3 || got[0].Position != 0 {
		t.Fatalf("unexpected spendable set: %+v", got)
	}
	if w.Balance(silver) != 4 {
		t.Fatalf("silver balance = %d", w.Balance(silver))
	}
}

// wallet.go - Note tracking for one key holder.
//
// The wallet scans encrypted payloads from the ledger feed, keeps the
// notes addressed to its viewing key together with their positions, and
// marks them spent when their nullifiers appear. The running balance
// per asset is the sum of unspent tracked notes.

package pool

import (
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"

	"shieldedpool/internal/keys"
	"shieldedpool/internal/note"
)

// TrackedNote is a note the wallet recognized as its own.
type TrackedNote struct {
	Note     *note.Note
	Position uint64
	Spent    bool
}

// Wallet holds one participant's keys and recognized notes.
type Wallet struct {
	sk    *keys.SpendingKey
	vk    *keys.ViewingKey
	notes []*TrackedNote
}

// NewWallet derives a wallet from a spending key.
func NewWallet(sk *keys.SpendingKey) *Wallet {
	return &Wallet{sk: sk, vk: sk.ViewingKey()}
}

// ViewingKey exposes the wallet's viewing key, e.g. to publish its
// incoming encryption key.
func (w *Wallet) ViewingKey() *keys.ViewingKey {
	return w.vk
}

// Track records a note known in clear (e.g. one this wallet created as
// change) at its ledger position.
func (w *Wallet) Track(n *note.Note, position uint64) {
	w.notes = append(w.notes, &TrackedNote{Note: n, Position: position})
}

// Scan trial-decrypts an encrypted payload at the given ledger
// position. Returns the note when it belongs to this wallet.
func (w *Wallet) Scan(payload []byte, position uint64) (*note.Note, bool) {
	n, err := note.Decrypt(payload, w.vk)
	if err != nil {
		return nil, false
	}
	w.Track(n, position)
	return n, true
}

// MarkSpent flags tracked notes whose nullifiers appear in the given
// list of revealed nullifiers.
func (w *Wallet) MarkSpent(revealed []fr.Element) {
	for _, tn := range w.notes {
		if tn.Spent {
			continue
		}
		nf := note.Nullifier(tn.Note, tn.Position, w.sk)
		for _, r := range revealed {
			if nf.Equal(&r) {
				tn.Spent = true
				break
			}
		}
	}
}

// Balance sums the unspent note values for one asset.
func (w *Wallet) Balance(asset fr.Element) uint64 {
	var total uint64
	for _, tn := range w.notes {
		if !tn.Spent && tn.Note.Asset.Equal(&asset) {
			total += tn.Note.Value
		}
	}
	return total
}

// Spendable returns the unspent notes for one asset as builder inputs.
func (w *Wallet) Spendable(asset fr.Element) []InputNote {
	var out []InputNote
	for _, tn := range w.notes {
		if !tn.Spent && tn.Note.Asset.Equal(&asset) {
			out = append(out, InputNote{Note: tn.Note, Position: tn.Position})
		}
	}
	return out
}

// builder.go - Transaction builder / witness assembler.
//
// Building a transfer runs three stages: input selection, witness
// assembly (Merkle proofs, nullifiers, fresh output notes, change), and
// emission of the versioned witness/public-input pair the proving
// backend consumes.

package pool

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"

	"shieldedpool/internal/keys"
	"shieldedpool/internal/note"
	"shieldedpool/internal/nullifier"
)

// InputNote is a spendable note with its ledger position.
type InputNote struct {
	Note     *note.Note
	Position uint64
}

// OutputRequest describes one requested payment output.
type OutputRequest struct {
	Value uint64
	Asset fr.Element
	To    keys.Address
	Memo  []byte
}

// SelectionPolicy picks the inputs to spend for a target amount.
// Implementations must return at most MaxInputs notes whose total
// covers the target, or ErrInsufficientFunds.
type SelectionPolicy func(available []InputNote, target uint64) ([]InputNote, error)

// GreedyLargestFirst is the default policy: it takes the largest notes
// first to minimize input count, and with it proof cost.
func GreedyLargestFirst(available []InputNote, target uint64) ([]InputNote, error) {
	sorted := append([]InputNote(nil), available...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Note.Value > sorted[j].Note.Value })

	var picked []InputNote
	var total uint64
	for _, in := range sorted {
		if len(picked) == MaxInputs {
			break
		}
		picked = append(picked, in)
		total += in.Note.Value
		if total >= target {
			return picked, nil
		}
	}
	return nil, ErrInsufficientFunds
}

// Builder assembles transfers against one ledger snapshot.
type Builder struct {
	snap   *Snapshot
	sk     *keys.SpendingKey
	change keys.Address

	// Policy selects inputs; nil means GreedyLargestFirst.
	Policy SelectionPolicy

	// MaxRootAge is the staleness window in epochs.
	MaxRootAge uint64
}

// NewBuilder creates a builder spending with sk and returning change to
// the given address.
func NewBuilder(snap *Snapshot, sk *keys.SpendingKey, change keys.Address) *Builder {
	return &Builder{
		snap:       snap,
		sk:         sk,
		change:     change,
		Policy:     GreedyLargestFirst,
		MaxRootAge: DefaultMaxRootAge,
	}
}

// Build selects inputs covering the requested outputs plus fee and
// assembles the transfer witness and public inputs. memo is arbitrary
// extra data bound into the proof through its hash.
func (b *Builder) Build(available []InputNote, outputs []OutputRequest, fee uint64, memo []byte) (*Transfer, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	if len(outputs) > MaxOutputs {
		return nil, ErrTooManyOutputs
	}

	if fee > note.MaxValue {
		return nil, note.ErrValueOutOfRange
	}

	asset := outputs[0].Asset
	var target = fee
	for _, out := range outputs {
		if !out.Asset.Equal(&asset) {
			return nil, ErrAssetMismatch
		}
		if out.Value > note.MaxValue {
			return nil, note.ErrValueOutOfRange
		}
		target += out.Value
	}

	// Selection.
	var candidates []InputNote
	for _, in := range available {
		if in.Note.Asset.Equal(&asset) {
			candidates = append(candidates, in)
		}
	}
	policy := b.Policy
	if policy == nil {
		policy = GreedyLargestFirst
	}
	selected, err := policy(candidates, target)
	if err != nil {
		return nil, err
	}
	if len(selected) > MaxInputs {
		return nil, fmt.Errorf("selection policy returned %d inputs, arity is %d", len(selected), MaxInputs)
	}

	// Witness assembly.
	root, epoch := b.snap.anchor()
	witness := &TransferWitnessV1{
		Version: SchemaVersion,
		Epoch:   epoch,
		Sk:      b.sk.Scalar(),
	}
	public := &PublicInputsV1{
		Version:  SchemaVersion,
		Root:     root,
		Fee:      fee,
		MemoHash: note.MemoHash(memo),
	}

	var totalIn uint64
	for i, in := range selected {
		nf := note.Nullifier(in.Note, in.Position, b.sk)
		if b.snap.Nullifiers.Contains(nf) {
			witness.Wipe()
			return nil, fmt.Errorf("input at position %d: %w", in.Position, nullifier.ErrDuplicateNullifier)
		}

		proof, err := b.snap.proofFor(in.Position, b.MaxRootAge)
		if err != nil {
			witness.Wipe()
			return nil, err
		}
		cm := in.Note.Commitment()
		if got := proof.Root(cm); !got.Equal(&root) {
			witness.Wipe()
			return nil, fmt.Errorf("%w: input position %d", ErrRootMismatch, in.Position)
		}

		slot := WitnessInput{
			Enabled:     true,
			Value:       in.Note.Value,
			Asset:       in.Note.Asset,
			Diversifier: keys.DiversifierScalar(in.Note.Owner.Diversifier),
			PkD:         in.Note.Owner.PkD,
			Rho:         in.Note.Rho,
			Position:    in.Position,
		}
		copy(slot.Siblings[:], proof.Siblings)
		witness.Inputs[i] = slot
		public.Nullifiers = append(public.Nullifiers, nf)
		totalIn += in.Note.Value
	}

	if totalIn < target {
		witness.Wipe()
		return nil, ErrNegativeChange
	}
	change := totalIn - target
	if change > 0 && len(outputs) == MaxOutputs {
		witness.Wipe()
		return nil, ErrTooManyOutputs
	}

	// Fresh output notes: the requested ones, then change back to the
	// sender. Unused output slots become zero-value change notes so the
	// arity is always full.
	outNotes := make([]*note.Note, 0, MaxOutputs)
	for _, out := range outputs {
		n, err := note.New(out.Value, asset, out.To, out.Memo)
		if err != nil {
			witness.Wipe()
			return nil, err
		}
		outNotes = append(outNotes, n)
	}
	for len(outNotes) < MaxOutputs {
		n, err := note.New(change, asset, b.change, nil)
		if err != nil {
			witness.Wipe()
			return nil, err
		}
		outNotes = append(outNotes, n)
		change = 0
	}

	for j, n := range outNotes {
		witness.Outputs[j] = WitnessOutput{
			Value:       n.Value,
			Asset:       n.Asset,
			Diversifier: keys.DiversifierScalar(n.Owner.Diversifier),
			PkD:         n.Owner.PkD,
			Rho:         n.Rho,
		}
		public.OutputCommitments = append(public.OutputCommitments, n.Commitment())
	}

	// Disabled dummy slots for the remaining input arity.
	for i := len(selected); i < MaxInputs; i++ {
		var rho fr.Element
		if _, err := rho.SetRandom(); err != nil {
			witness.Wipe()
			return nil, err
		}
		witness.Inputs[i] = WitnessInput{
			Enabled:     false,
			Asset:       asset,
			Diversifier: keys.DiversifierScalar(b.change.Diversifier),
			PkD:         b.change.PkD,
			Rho:         rho,
		}
	}

	// Emission.
	return &Transfer{Witness: witness, Public: public}, nil
}

// OutputNotes rebuilds the output notes of a transfer from its witness,
// in emission order, so the caller can encrypt them to the recipients.
func (t *Transfer) OutputNotes(owners []keys.Address) ([]*note.Note, error) {
	if len(owners) != MaxOutputs {
		return nil, fmt.Errorf("need %d owner addresses", MaxOutputs)
	}
	notes := make([]*note.Note, MaxOutputs)
	for j, out := range t.Witness.Outputs {
		n, err := note.NewWithBlinding(out.Value, out.Asset, owners[j], out.Rho, nil)
		if err != nil {
			return nil, err
		}
		notes[j] = n
	}
	return notes, nil
}

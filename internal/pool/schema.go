// schema.go - Versioned witness and public-input schema.
//
// The proving backend consumes these structures in a fixed field order.
// That order is a hard compatibility contract: reordering fields
// produces valid-looking but semantically wrong proofs. The structures
// are therefore versioned explicitly and mapped to the circuit by name,
// never positionally.

package pool

import (
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"

	"shieldedpool/internal/tree"
)

const (
	// SchemaVersion pins the transfer witness/public-input layout.
	SchemaVersion = uint16(1)

	// MaxInputs and MaxOutputs fix the proof arity. Shorter transfers
	// pad inputs with disabled dummy slots and outputs with zero-value
	// change notes.
	MaxInputs  = 2
	MaxOutputs = 2
)

// WitnessInput is one (possibly disabled) spent-note slot of the
// private witness. Disabled slots carry no constraints in the circuit
// and publish a zero nullifier.
type WitnessInput struct {
	Enabled     bool
	Value       uint64
	Asset       fr.Element
	Diversifier fr.Element
	PkD         fr.Element
	Rho         fr.Element
	Position    uint64
	Siblings    [tree.Depth]fr.Element
}

// WitnessOutput is one created-note slot of the private witness.
type WitnessOutput struct {
	Value       uint64
	Asset       fr.Element
	Diversifier fr.Element
	PkD         fr.Element
	Rho         fr.Element
}

// TransferWitnessV1 is the full private input set consumed by the
// transfer circuit. It carries the spending key and all note openings;
// Wipe must be called once the proof exists.
type TransferWitnessV1 struct {
	Version uint16
	Epoch   uint64 // tree epoch of the root the Merkle paths open against
	Sk      fr.Element
	Inputs  [MaxInputs]WitnessInput
	Outputs [MaxOutputs]WitnessOutput
}

// Wipe zeroes the secret material of the witness: the spending key and
// every blinding factor. Callers defer this so early-exit error paths
// wipe as well.
func (w *TransferWitnessV1) Wipe() {
	w.Sk.SetZero()
	for i := range w.Inputs {
		w.Inputs[i].Rho.SetZero()
	}
	for i := range w.Outputs {
		w.Outputs[i].Rho.SetZero()
	}
}

// PublicInputsV1 is the only data that crosses to the verifier and the
// public ledger: the anchored root, the revealed nullifiers in input
// order, the created commitments in output order, the fee, and the
// digest of any extra data bound to the transfer.
type PublicInputsV1 struct {
	Version           uint16
	Root              fr.Element
	Nullifiers        []fr.Element
	OutputCommitments []fr.Element
	Fee               uint64
	MemoHash          fr.Element
}

// Transfer bundles the private witness and public inputs produced by
// one Build call.
type Transfer struct {
	Witness *TransferWitnessV1
	Public  *PublicInputsV1
}

// paddedNullifiers expands the active nullifier list to the circuit
// arity, zero-filling disabled slots.
func (p *PublicInputsV1) paddedNullifiers() [MaxInputs]fr.Element {
	var out [MaxInputs]fr.Element
	copy(out[:], p.Nullifiers)
	return out
}

// prover.go - Groth16 proving backend integration.
//
// Compiles the transfer circuit over BW6-761, generates or loads the
// proving/verifying key pair, and maps the versioned witness schema
// into circuit assignments. Prover errors are wrapped once and
// surfaced; a failed proof is never emitted as valid.

package pool

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// CompileTransferCircuit compiles the reference transfer circuit.
func CompileTransferCircuit() (constraint.ConstraintSystem, error) {
	var circuit CircuitTransfer
	ccs, err := frontend.Compile(ecc.BW6_761.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}
	return ccs, nil
}

// Prove generates a Groth16 proof for the transfer and returns it as
// opaque bytes.
func Prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, t *Transfer) ([]byte, error) {
	if t.Witness.Version != SchemaVersion || t.Public.Version != SchemaVersion {
		return nil, ErrSchemaVersion
	}
	assignment := newAssignment(t)
	w, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify checks a proof blob against the public inputs.
func Verify(proofBytes []byte, vk groth16.VerifyingKey, public *PublicInputsV1) error {
	if public.Version != SchemaVersion {
		return ErrSchemaVersion
	}
	assignment := &CircuitTransfer{
		Root:     public.Root,
		Fee:      public.Fee,
		MemoHash: public.MemoHash,
	}
	nfs := public.paddedNullifiers()
	for i := range nfs {
		assignment.Nullifiers[i] = nfs[i]
	}
	for j, cm := range public.OutputCommitments {
		assignment.OutCommitments[j] = cm
	}

	w, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}
	proof := groth16.NewProof(ecc.BW6_761)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("proof unmarshaling failed: %w", err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}

// newAssignment maps the versioned schema into the circuit by field
// name. Disabled input slots get zero public nullifiers.
func newAssignment(t *Transfer) *CircuitTransfer {
	a := &CircuitTransfer{
		Root:     t.Public.Root,
		Fee:      t.Public.Fee,
		MemoHash: t.Public.MemoHash,
		Sk:       t.Witness.Sk,
	}
	nfs := t.Public.paddedNullifiers()
	for i := range nfs {
		a.Nullifiers[i] = nfs[i]
	}
	for i, in := range t.Witness.Inputs {
		enabled := 0
		if in.Enabled {
			enabled = 1
		}
		a.InEnabled[i] = enabled
		a.InValue[i] = in.Value
		a.InAsset[i] = in.Asset
		a.InDiversifier[i] = in.Diversifier
		a.InPkD[i] = in.PkD
		a.InRho[i] = in.Rho
		a.InPosition[i] = in.Position
		for d, sib := range in.Siblings {
			a.InSiblings[i][d] = sib
		}
	}
	for j, out := range t.Witness.Outputs {
		a.OutValue[j] = out.Value
		a.OutAsset[j] = out.Asset
		a.OutDiversifier[j] = out.Diversifier
		a.OutPkD[j] = out.PkD
		a.OutRho[j] = out.Rho
		a.OutCommitments[j] = t.Public.OutputCommitments[j]
	}
	return a
}

// SaveProvingKey writes a Groth16 proving key to disk.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

// SaveVerifyingKey writes a Groth16 verifying key to disk.
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

// LoadProvingKey reads a Groth16 proving key from disk.
func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BW6_761)
	_, err = pk.ReadFrom(f)
	return pk, err
}

// LoadVerifyingKey reads a Groth16 verifying key from disk.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BW6_761)
	_, err = vk.ReadFrom(f)
	return vk, err
}

// SetupOrLoadKeys loads the Groth16 key pair from disk, or runs setup
// and persists a fresh pair when none exists.
func SetupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, pkErr := LoadProvingKey(pkPath)
	vk, vkErr := LoadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		return pk, vk, nil
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, err
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

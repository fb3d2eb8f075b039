// circuit.go - Reference transfer circuit.
//
// The circuit proves, for a fixed arity of inputs and outputs, that the
// prover owns every enabled input note under the anchored root, that
// the published nullifiers and output commitments are correctly
// derived, and that value is conserved. Disabled input slots publish a
// zero nullifier and carry no ownership or membership constraints.

package pool

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"shieldedpool/internal/keys"
	"shieldedpool/internal/tree"
)

// CircuitTransfer is the constraint system for one shielded transfer.
// Field order mirrors the V1 schema; both are pinned together.
type CircuitTransfer struct {
	// Public inputs
	Root           frontend.Variable             `gnark:",public"`
	Nullifiers     [MaxInputs]frontend.Variable  `gnark:",public"`
	OutCommitments [MaxOutputs]frontend.Variable `gnark:",public"`
	Fee            frontend.Variable             `gnark:",public"`
	MemoHash       frontend.Variable             `gnark:",public"`

	// Private inputs
	Sk frontend.Variable

	InEnabled     [MaxInputs]frontend.Variable
	InValue       [MaxInputs]frontend.Variable
	InAsset       [MaxInputs]frontend.Variable
	InDiversifier [MaxInputs]frontend.Variable
	InPkD         [MaxInputs]frontend.Variable
	InRho         [MaxInputs]frontend.Variable
	InPosition    [MaxInputs]frontend.Variable
	InSiblings    [MaxInputs][tree.Depth]frontend.Variable

	OutValue       [MaxOutputs]frontend.Variable
	OutAsset       [MaxOutputs]frontend.Variable
	OutDiversifier [MaxOutputs]frontend.Variable
	OutPkD         [MaxOutputs]frontend.Variable
	OutRho         [MaxOutputs]frontend.Variable
}

func (c *CircuitTransfer) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// Key derivations shared by all inputs.
	hasher.Write(c.Sk, keys.TagNF)
	nk := hasher.Sum()
	hasher.Reset()
	hasher.Write(c.Sk, keys.TagDK)
	dk := hasher.Sum()

	sumIn := frontend.Variable(0)
	for i := 0; i < MaxInputs; i++ {
		enabled := c.InEnabled[i]
		api.AssertIsBoolean(enabled)
		api.ToBinary(c.InValue[i], 63)

		// Ownership: pkD = MiMC(dk, d).
		hasher.Reset()
		hasher.Write(dk, c.InDiversifier[i])
		pkd := hasher.Sum()
		assertEqualIf(api, enabled, pkd, c.InPkD[i])

		// Note commitment.
		hasher.Reset()
		hasher.Write(c.InValue[i], c.InAsset[i], c.InDiversifier[i], c.InPkD[i], c.InRho[i])
		cm := hasher.Sum()

		// Membership: recompute the root along the Merkle path.
		bits := api.ToBinary(c.InPosition[i], tree.Depth)
		cur := cm
		for d := 0; d < tree.Depth; d++ {
			left := api.Select(bits[d], c.InSiblings[i][d], cur)
			right := api.Select(bits[d], cur, c.InSiblings[i][d])
			hasher.Reset()
			hasher.Write(left, right)
			cur = hasher.Sum()
		}
		assertEqualIf(api, enabled, cur, c.Root)

		// Nullifier: MiMC(nk, cm, position); zero when disabled.
		hasher.Reset()
		hasher.Write(nk, cm, c.InPosition[i])
		nf := hasher.Sum()
		assertEqualIf(api, enabled, nf, c.Nullifiers[i])
		api.AssertIsEqual(api.Mul(api.Sub(1, enabled), c.Nullifiers[i]), 0)

		// Single-asset transfer; disabled slots contribute nothing.
		assertEqualIf(api, enabled, c.InAsset[i], c.OutAsset[0])
		sumIn = api.Add(sumIn, api.Mul(c.InValue[i], enabled))
	}

	sumOut := c.Fee
	for j := 0; j < MaxOutputs; j++ {
		api.ToBinary(c.OutValue[j], 63)
		api.AssertIsEqual(c.OutAsset[j], c.OutAsset[0])

		hasher.Reset()
		hasher.Write(c.OutValue[j], c.OutAsset[j], c.OutDiversifier[j], c.OutPkD[j], c.OutRho[j])
		api.AssertIsEqual(c.OutCommitments[j], hasher.Sum())

		sumOut = api.Add(sumOut, c.OutValue[j])
	}

	// Value conservation: sum(inputs) = sum(outputs) + fee.
	api.AssertIsEqual(sumIn, sumOut)

	return nil
}

// assertEqualIf enforces a == b when cond is 1.
func assertEqualIf(api frontend.API, cond, a, b frontend.Variable) {
	api.AssertIsEqual(api.Mul(cond, api.Sub(a, b)), 0)
}

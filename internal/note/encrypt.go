// encrypt.go - Encrypted note payloads.
//
// A sender encrypts the canonical note bytes to the recipient's
// incoming key with an ephemeral Diffie-Hellman exchange on BLS12-377
// and a MiMC-derived mask stream. The ephemeral public key travels with
// the ciphertext so the recipient can scan a payload feed and
// trial-decrypt with the viewing key alone.

package note

import (
	"fmt"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"

	"shieldedpool/internal/keys"
)

const epkLen = bls12377.SizeOfG1AffineCompressed

// Encrypt seals the note to the recipient's incoming key.
// Payload layout: compressed ephemeral public key || masked note bytes.
func (n *Note) Encrypt(recipient bls12377.G1Affine) ([]byte, error) {
	var esk bls12377_fr.Element
	if _, err := esk.SetRandom(); err != nil {
		return nil, err
	}
	defer esk.SetZero()

	g1Jac, _, _, _ := bls12377.Generators()
	var g, epk, shared bls12377.G1Affine
	g.FromJacobian(&g1Jac)
	epk.ScalarMultiplication(&g, esk.BigInt(new(big.Int)))
	shared.ScalarMultiplication(&recipient, esk.BigInt(new(big.Int)))

	pt := n.Bytes()
	ct := xorStream(shared, pt)

	payload := make([]byte, 0, epkLen+len(ct))
	epkBytes := epk.Bytes()
	payload = append(payload, epkBytes[:]...)
	payload = append(payload, ct...)
	return payload, nil
}

// Decrypt opens a payload with the viewing key. A payload not addressed
// to this key decodes to garbage and fails as a malformed note.
func Decrypt(payload []byte, vk *keys.ViewingKey) (*Note, error) {
	if len(payload) <= epkLen {
		return nil, fmt.Errorf("%w: payload too short", ErrMalformedNote)
	}
	var epk bls12377.G1Affine
	if _, err := epk.SetBytes(payload[:epkLen]); err != nil {
		return nil, fmt.Errorf("%w: bad ephemeral key: %v", ErrMalformedNote, err)
	}

	var shared bls12377.G1Affine
	shared.ScalarMultiplication(&epk, vk.Ivk.BigInt(new(big.Int)))

	pt := xorStream(shared, payload[epkLen:])
	n, err := Decode(pt)
	if err != nil {
		return nil, err
	}

	// Ownership check: the diversified key must be derivable from Dk.
	if pkd := hashFields(vk.Dk, keys.DiversifierScalar(n.Owner.Diversifier)); !pkd.Equal(&n.Owner.PkD) {
		return nil, fmt.Errorf("%w: note not addressed to this key", ErrMalformedNote)
	}
	return n, nil
}

// xorStream masks data with a MiMC hash chain keyed on the shared
// point, the same chain construction used for in-band note ciphertexts
// throughout the pool.
func xorStream(shared bls12377.G1Affine, data []byte) []byte {
	h := mimcNative.NewMiMC()
	x := shared.X.Bytes()
	y := shared.Y.Bytes()
	h.Write(x[:])
	h.Write(y[:])
	mask := h.Sum(nil)

	out := make([]byte, len(data))
	for i := range data {
		j := i % len(mask)
		if i > 0 && j == 0 {
			h.Write(mask)
			mask = h.Sum(nil)
		}
		out[i] = data[i] ^ mask[j]
	}
	return out
}

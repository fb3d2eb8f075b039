// keys.go - Key hierarchy for the shielded pool.
//
// All key material is derived deterministically from a master seed:
// seed -> spending key -> viewing key -> diversified payment addresses.
// Every derivation is a one-way MiMC computation, so no child key can
// recover its parent.

package keys

import (
	"crypto/rand"
	"errors"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// DiversifierLen is the byte length of an address diversifier.
const DiversifierLen = 10

// ErrInvalidSeed is returned for seeds of unsupported length.
var ErrInvalidSeed = errors.New("invalid seed: length must be 32 or 64 bytes")

// Domain separation tags for the key derivation PRFs. The transfer
// circuit recomputes the same derivations, so these values are part of
// the proving contract and must never change within a schema version.
var (
	TagNF  fr.Element // nullifier key
	TagDK  fr.Element // diversified address key
	TagIVK fr.Element // incoming viewing key
)

func init() {
	TagNF.SetBytes([]byte("shieldedpool/nf"))
	TagDK.SetBytes([]byte("shieldedpool/dk"))
	TagIVK.SetBytes([]byte("shieldedpool/ivk"))
}

// SpendingKey owns the ability to compute nullifiers and authorize
// spends. It never leaves the wallet boundary.
type SpendingKey struct {
	s fr.Element
}

// ViewingKey grants read access to incoming notes without spend
// authority. Ak is a public detection tag, Nk the nullifier key, Dk the
// diversified address key and Ivk the Diffie-Hellman scalar used to
// decrypt note payloads addressed to this wallet.
type ViewingKey struct {
	Ak  fr.Element
	Nk  fr.Element
	Dk  fr.Element
	Ivk bls12377_fr.Element

	// IncomingKey is Ivk*G on BLS12-377, published so senders can
	// encrypt note payloads to this wallet.
	IncomingKey bls12377.G1Affine
}

// Address is a diversified payment address. Many addresses map to the
// same viewing key; distinct diversifiers are unlinkable without Dk.
type Address struct {
	Diversifier [DiversifierLen]byte
	PkD         fr.Element
}

// DeriveSpendingKey reduces a high-entropy seed into the scalar field,
// big-endian (the seed itself is never retained).
func DeriveSpendingKey(seed []byte) (*SpendingKey, error) {
	if len(seed) != 32 && len(seed) != 64 {
		return nil, ErrInvalidSeed
	}
	var sk SpendingKey
	sk.s.SetBigInt(new(big.Int).SetBytes(seed))
	return &sk, nil
}

// Scalar returns the spending key scalar for witness assembly.
func (sk *SpendingKey) Scalar() fr.Element {
	return sk.s
}

// NullifierKey derives the nullifier key Nk = MiMC(sk, TagNF).
func (sk *SpendingKey) NullifierKey() fr.Element {
	return hashFields(sk.s, TagNF)
}

// Wipe zeroes the key material. The key must not be used afterwards.
func (sk *SpendingKey) Wipe() {
	sk.s.SetZero()
}

// ViewingKey derives the full viewing key. The derivation is one-way:
// each component is a MiMC PRF output of the spending key under a
// distinct domain tag.
func (sk *SpendingKey) ViewingKey() *ViewingKey {
	vk := &ViewingKey{
		Ak: hashFields(sk.s),
		Nk: hashFields(sk.s, TagNF),
		Dk: hashFields(sk.s, TagDK),
	}
	ivkField := hashFields(sk.s, TagIVK)
	ivkBytes := ivkField.Bytes()
	vk.Ivk.SetBytes(ivkBytes[:]) // reduced into the BLS12-377 scalar field

	g1Jac, _, _, _ := bls12377.Generators()
	var g bls12377.G1Affine
	g.FromJacobian(&g1Jac)
	vk.IncomingKey.ScalarMultiplication(&g, vk.Ivk.BigInt(new(big.Int)))
	return vk
}

// Address derives the diversified address for a caller-supplied
// diversifier: pkD = MiMC(Dk, d).
func (vk *ViewingKey) Address(d [DiversifierLen]byte) Address {
	return Address{
		Diversifier: d,
		PkD:         hashFields(vk.Dk, diversifierScalar(d)),
	}
}

// NewAddress derives an address for a fresh random diversifier.
func (vk *ViewingKey) NewAddress() (Address, error) {
	var d [DiversifierLen]byte
	if _, err := rand.Read(d[:]); err != nil {
		return Address{}, err
	}
	return vk.Address(d), nil
}

// Wipe zeroes the viewing key material.
func (vk *ViewingKey) Wipe() {
	vk.Ak.SetZero()
	vk.Nk.SetZero()
	vk.Dk.SetZero()
	vk.Ivk.SetZero()
	vk.IncomingKey.X.SetZero()
	vk.IncomingKey.Y.SetZero()
}

// DiversifierScalar maps a diversifier into the scalar field the way
// commitments and the circuit consume it.
func DiversifierScalar(d [DiversifierLen]byte) fr.Element {
	return diversifierScalar(d)
}

func diversifierScalar(d [DiversifierLen]byte) fr.Element {
	var e fr.Element
	e.SetBytes(d[:])
	return e
}

// hashFields absorbs each element as one MiMC block.
func hashFields(elems ...fr.Element) fr.Element {
	h := mimcNative.NewMiMC()
	for _, e := range elems {
		b := e.Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// note.go - Note model for the shielded pool.
//
// A note is a single shielded value record. Its commitment hides the
// value and owner behind a random blinding factor; its nullifier is a
// one-time spend tag computable only by the spending-key holder.

package note

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"

	"shieldedpool/internal/keys"
)

const (
	// MaxValue bounds note values so that any in-circuit sum of inputs,
	// outputs and fee stays far below the field modulus.
	MaxValue uint64 = 1<<62 - 1

	// MaxMemoLen bounds the free-form memo attached to a note.
	MaxMemoLen = 512
)

var (
	ErrValueOutOfRange = errors.New("note value exceeds safe bound")
	ErrMemoTooLong     = errors.New("note memo exceeds maximum length")
)

// Note is a shielded value record. Rho is the blinding factor; it must
// be unique per note and is never published in clear.
type Note struct {
	Value uint64
	Asset fr.Element
	Owner keys.Address
	Rho   fr.Element
	Memo  []byte
}

// New builds a note with a fresh cryptographically random blinding
// factor.
func New(value uint64, asset fr.Element, owner keys.Address, memo []byte) (*Note, error) {
	var rho fr.Element
	if _, err := rho.SetRandom(); err != nil {
		return nil, err
	}
	return NewWithBlinding(value, asset, owner, rho, memo)
}

// NewWithBlinding builds a note with a caller-supplied blinding factor.
func NewWithBlinding(value uint64, asset fr.Element, owner keys.Address, rho fr.Element, memo []byte) (*Note, error) {
	if value > MaxValue {
		return nil, ErrValueOutOfRange
	}
	if len(memo) > MaxMemoLen {
		return nil, ErrMemoTooLong
	}
	return &Note{
		Value: value,
		Asset: asset,
		Owner: owner,
		Rho:   rho,
		Memo:  append([]byte(nil), memo...),
	}, nil
}

// Commitment computes cm = MiMC(value, asset, d, pkD, rho). The
// commitment is binding through MiMC collision resistance and hiding
// through rho.
func (n *Note) Commitment() fr.Element {
	var v fr.Element
	v.SetUint64(n.Value)
	return hashFields(v, n.Asset, keys.DiversifierScalar(n.Owner.Diversifier), n.Owner.PkD, n.Rho)
}

// Nullifier computes the spend tag MiMC(Nk, cm, position). Binding the
// tree position makes an identical note re-inserted elsewhere yield a
// different nullifier.
func Nullifier(n *Note, position uint64, sk *keys.SpendingKey) fr.Element {
	var pos fr.Element
	pos.SetUint64(position)
	return hashFields(sk.NullifierKey(), n.Commitment(), pos)
}

// MemoHash digests arbitrary extra data into a single field element for
// the public inputs. Data is absorbed in 32-byte chunks so every chunk
// fits the field.
func MemoHash(data []byte) fr.Element {
	h := mimcNative.NewMiMC()
	var e fr.Element
	for len(data) > 0 {
		chunk := data
		if len(chunk) > 32 {
			chunk = chunk[:32]
		}
		e.SetBytes(chunk)
		b := e.Bytes()
		h.Write(b[:])
		data = data[len(chunk):]
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// AssetID maps an asset name to its field-element identifier.
func AssetID(name string) fr.Element {
	h := mimcNative.NewMiMC()
	var e fr.Element
	e.SetBytes([]byte(name))
	b := e.Bytes()
	h.Write(b[:])
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

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

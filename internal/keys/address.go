// address.go - Human-shareable address encoding.
//
// An address is serialized as diversifier || pkD || checksum and
// base58-encoded. The checksum is the first four bytes of the SHA-256
// of the payload, so transcription errors are detectable on decode.

package keys

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"github.com/btcsuite/btcutil/base58"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
)

const (
	checksumLen = 4

	// AddressLen is the raw byte length of an encoded address payload.
	AddressLen = DiversifierLen + fr.Bytes + checksumLen
)

// ErrInvalidAddress is returned when decoding fails on length, field
// range or checksum mismatch.
var ErrInvalidAddress = errors.New("invalid address")

// Encode returns the base58 string form of the address.
func (a Address) Encode() string {
	buf := make([]byte, 0, AddressLen)
	buf = append(buf, a.Diversifier[:]...)
	pkd := a.PkD.Bytes()
	buf = append(buf, pkd[:]...)

	sum := sha256.Sum256(buf)
	buf = append(buf, sum[:checksumLen]...)
	return base58.Encode(buf)
}

// DecodeAddress parses a base58 address string.
func DecodeAddress(s string) (Address, error) {
	raw := base58.Decode(s)
	if len(raw) != AddressLen {
		return Address{}, ErrInvalidAddress
	}

	body := raw[:AddressLen-checksumLen]
	sum := sha256.Sum256(body)
	if subtle.ConstantTimeCompare(sum[:checksumLen], raw[AddressLen-checksumLen:]) != 1 {
		return Address{}, ErrInvalidAddress
	}

	var a Address
	copy(a.Diversifier[:], body[:DiversifierLen])
	if err := a.PkD.SetBytesCanonical(body[DiversifierLen:]); err != nil {
		return Address{}, ErrInvalidAddress
	}
	return a, nil
}

// Equal reports whether two addresses are identical.
func (a Address) Equal(b Address) bool {
	return a.Diversifier == b.Diversifier && a.PkD.Equal(&b.PkD)
}

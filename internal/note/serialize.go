// serialize.go - Canonical fixed-width byte layout for notes.
//
// Layout: "NOTE" || u16 version || u64 value || asset || diversifier ||
// pkD || rho || u16 memo length || memo. All integers big-endian, all
// field elements in canonical 48-byte form. The layout is versioned; a
// recipient scanning encrypted payloads decodes against this format.

package note

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"

	"shieldedpool/internal/keys"
)

const (
	noteMagic   = "NOTE"
	noteVersion = uint16(1)

	// EncodedLen is the length of an encoded note minus its memo.
	EncodedLen = 4 + 2 + 8 + fr.Bytes + keys.DiversifierLen + fr.Bytes + fr.Bytes + 2
)

// ErrMalformedNote is returned when decoding fails on length, magic,
// version or field-range violations.
var ErrMalformedNote = errors.New("malformed note")

// Bytes returns the canonical encoding of the note.
func (n *Note) Bytes() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(EncodedLen + len(n.Memo))

	buf.WriteString(noteMagic)
	binary.Write(buf, binary.BigEndian, noteVersion)
	binary.Write(buf, binary.BigEndian, n.Value)

	asset := n.Asset.Bytes()
	buf.Write(asset[:])
	buf.Write(n.Owner.Diversifier[:])
	pkd := n.Owner.PkD.Bytes()
	buf.Write(pkd[:])
	rho := n.Rho.Bytes()
	buf.Write(rho[:])

	binary.Write(buf, binary.BigEndian, uint16(len(n.Memo)))
	buf.Write(n.Memo)
	return buf.Bytes()
}

// Decode parses a canonical note encoding.
func Decode(data []byte) (*Note, error) {
	if len(data) < EncodedLen {
		return nil, fmt.Errorf("%w: truncated", ErrMalformedNote)
	}
	if string(data[:4]) != noteMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedNote)
	}
	if v := binary.BigEndian.Uint16(data[4:6]); v != noteVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedNote, v)
	}

	n := &Note{}
	n.Value = binary.BigEndian.Uint64(data[6:14])
	if n.Value > MaxValue {
		return nil, fmt.Errorf("%w: value out of range", ErrMalformedNote)
	}

	off := 14
	if err := n.Asset.SetBytesCanonical(data[off : off+fr.Bytes]); err != nil {
		return nil, fmt.Errorf("%w: asset not canonical", ErrMalformedNote)
	}
	off += fr.Bytes
	copy(n.Owner.Diversifier[:], data[off:off+keys.DiversifierLen])
	off += keys.DiversifierLen
	if err := n.Owner.PkD.SetBytesCanonical(data[off : off+fr.Bytes]); err != nil {
		return nil, fmt.Errorf("%w: pkD not canonical", ErrMalformedNote)
	}
	off += fr.Bytes
	if err := n.Rho.SetBytesCanonical(data[off : off+fr.Bytes]); err != nil {
		return nil, fmt.Errorf("%w: blinding not canonical", ErrMalformedNote)
	}
	off += fr.Bytes

	memoLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if memoLen > MaxMemoLen {
		return nil, fmt.Errorf("%w: memo too long", ErrMalformedNote)
	}
	if len(data) != off+memoLen {
		return nil, fmt.Errorf("%w: length mismatch", ErrMalformedNote)
	}
	if memoLen > 0 {
		n.Memo = append([]byte(nil), data[off:off+memoLen]...)
	}
	return n, nil
}

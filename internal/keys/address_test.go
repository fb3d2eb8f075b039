package keys

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) Address {
	t.Helper()
	seed := make([]byte, 32)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	sk, err := DeriveSpendingKey(seed)
	require.NoError(t, err)
	addr, err := sk.ViewingKey().NewAddress()
	require.NoError(t, err)
	return addr
}

func TestAddressRoundTrip(t *testing.T) {
	addr := testAddress(t)
	encoded := addr.Encode()

	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	assert.True(t, addr.Equal(decoded))
}

func TestDecodeAddressChecksumMismatch(t *testing.T) {
	addr := testAddress(t)
	raw := base58.Decode(addr.Encode())
	require.Len(t, raw, AddressLen)

	// Flip one diversifier byte; the checksum no longer matches.
	raw[0] ^= 0xff
	_, err := DecodeAddress(base58.Encode(raw))
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDecodeAddressMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"tooShort",
		base58.Encode(make([]byte, AddressLen+1)),
		base58.Encode(make([]byte, AddressLen-1)),
		"#### not base58 ####",
	} {
		_, err := DecodeAddress(s)
		assert.ErrorIs(t, err, ErrInvalidAddress, "input %q", s)
	}
}

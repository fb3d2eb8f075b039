package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	sk := testKey(t)
	addr, err := sk.ViewingKey().NewAddress()
	require.NoError(t, err)

	n, err := New(1234, AssetID("test"), addr, []byte("invoice #42"))
	require.NoError(t, err)

	decoded, err := Decode(n.Bytes())
	require.NoError(t, err)

	assert.Equal(t, n.Value, decoded.Value)
	assert.True(t, n.Asset.Equal(&decoded.Asset))
	assert.True(t, n.Owner.Equal(decoded.Owner))
	assert.True(t, n.Rho.Equal(&decoded.Rho))
	assert.Equal(t, n.Memo, decoded.Memo)

	cm := n.Commitment()
	cmDecoded := decoded.Commitment()
	assert.True(t, cm.Equal(&cmDecoded))
}

func TestSerializeRoundTripEmptyMemo(t *testing.T) {
	n := testNote(t, testKey(t), 7)
	decoded, err := Decode(n.Bytes())
	require.NoError(t, err)
	assert.Empty(t, decoded.Memo)
}

func TestDecodeMalformed(t *testing.T) {
	n := testNote(t, testKey(t), 7)
	good := n.Bytes()

	cases := map[string][]byte{
		"empty":     {},
		"truncated": good[:EncodedLen-1],
	}

	badMagic := append([]byte(nil), good...)
	badMagic[0] = 'X'
	cases["bad magic"] = badMagic

	badVersion := append([]byte(nil), good...)
	badVersion[5] = 0xff
	cases["bad version"] = badVersion

	badValue := append([]byte(nil), good...)
	badValue[6] = 0xff
	cases["value out of range"] = badValue

	// A field element encoding at or above the modulus is rejected.
	badAsset := append([]byte(nil), good...)
	for i := 14; i < 14+48; i++ {
		badAsset[i] = 0xff
	}
	cases["asset not canonical"] = badAsset

	trailing := append(append([]byte(nil), good...), 0x00)
	cases["trailing bytes"] = trailing

	for name, data := range cases {
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrMalformedNote, name)
	}
}

func TestDecodeRejectsOversizedMemoLength(t *testing.T) {
	n := testNote(t, testKey(t), 7)
	data := n.Bytes()
	// Declared memo length beyond the cap, header otherwise intact.
	data[EncodedLen-2] = 0xff
	data[EncodedLen-1] = 0xff
	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrMalformedNote)
}

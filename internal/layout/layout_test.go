package layout

import (
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeU64(t *testing.T) {
	b := make([]byte, 16)
	n, err := EncodeU64(0xDEADBEEFCAFEF00D, b, 4)
	require.NoError(t, err)
	assert.Equal(t, SpanU64, n)

	v, err := DecodeU64(b, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEFCAFEF00D), v)

	// little endian on the wire
	assert.Equal(t, byte(0x0D), b[4])
	assert.Equal(t, byte(0xDE), b[11])
}

func TestEncodeI64Negative(t *testing.T) {
	b := make([]byte, SpanI64)
	_, err := EncodeI64(-42, b, 0)
	require.NoError(t, err)

	v, err := DecodeI64(b, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-42), v)
}

func TestEncodeUintN(t *testing.T) {
	b := make([]byte, 8)
	n, err := EncodeUintN(0x0102030405060708, 8, b, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, b)
}

func TestEncodeDecodeU128(t *testing.T) {
	b := make([]byte, SpanU128)
	want := bin.Uint128{Lo: 7, Hi: 9}
	_, err := EncodeU128(want, b, 0)
	require.NoError(t, err)

	got, err := DecodeU128(b, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeDecodePubkey(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	b := make([]byte, SpanPubkey)
	_, err := EncodePubkey(key, b, 0)
	require.NoError(t, err)

	got, err := DecodePubkey(b, 0)
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestDecodeBoolRejectsGarbage(t *testing.T) {
	_, err := DecodeBool([]byte{2}, 0)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	v, err := DecodeBool([]byte{1}, 0)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestOutOfRange(t *testing.T) {
	b := make([]byte, 4)

	_, err := DecodeU64(b, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = EncodeU32(1, b, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = DecodeU8(b, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBlobRoundTrip(t *testing.T) {
	b := make([]byte, 10)
	_, err := EncodeBlob([]byte{1, 2, 3}, 3, b, 2)
	require.NoError(t, err)

	got, err := DecodeBlob(b, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = EncodeBlob([]byte{1, 2}, 3, b, 0)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestReaderSequence(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	b := make([]byte, SpanU8+SpanU64+SpanPubkey+SpanBool)
	b[0] = 5
	_, err := EncodeU64(123456, b, 1)
	require.NoError(t, err)
	_, err = EncodePubkey(key, b, 9)
	require.NoError(t, err)
	b[41] = 1

	r := NewReader(b)
	r.ExpectSize(len(b))
	assert.Equal(t, uint8(5), r.U8())
	assert.Equal(t, uint64(123456), r.U64())
	assert.Equal(t, key, r.Pubkey())
	assert.True(t, r.Bool())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderLatchesError(t *testing.T) {
	r := NewReader([]byte{1, 2})
	r.U64()
	require.Error(t, r.Err())

	// subsequent reads stay zero and do not clear the error
	assert.Equal(t, uint8(0), r.U8())
	assert.ErrorIs(t, r.Err(), ErrOutOfRange)
}

func TestReaderExpectSizeMismatch(t *testing.T) {
	r := NewReader(make([]byte, 10))
	r.ExpectSize(11)
	assert.ErrorIs(t, r.Err(), ErrInvalidFormat)
}

func TestWriterRoundTrip(t *testing.T) {
	key := solana.NewWallet().PublicKey()

	w := NewWriter(SpanU8 + SpanU64 + SpanPubkey + SpanBool)
	w.U8(9)
	w.U64(777)
	w.Pubkey(key)
	w.Bool(true)

	data, err := w.Bytes()
	require.NoError(t, err)

	r := NewReader(data)
	assert.Equal(t, uint8(9), r.U8())
	assert.Equal(t, uint64(777), r.U64())
	assert.Equal(t, key, r.Pubkey())
	assert.True(t, r.Bool())
	require.NoError(t, r.Err())
}

func TestWriterOverflow(t *testing.T) {
	w := NewWriter(4)
	w.U64(1)
	_, err := w.Bytes()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWriterSkipLeavesZeroes(t *testing.T) {
	w := NewWriter(6)
	w.U8(1)
	w.Skip(4)
	w.U8(2)
	data, err := w.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 2}, data)
}

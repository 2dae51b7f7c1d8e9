// =============================
// File: internal/layout/layout.go
// =============================

// Package layout implements the fixed-offset binary codec shared by every
// on-chain account model in this SDK. All integers are little-endian, signed
// values are two's complement, and records carry no padding or alignment:
// a field's offset is exactly the sum of the spans of the fields before it.
// The on-chain programs read these byte offsets directly, so the spans here
// are a frozen ABI.
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Field spans in bytes.
const (
	SpanU8     = 1
	SpanU32    = 4
	SpanU64    = 8
	SpanI64    = 8
	SpanU128   = 16
	SpanI128   = 16
	SpanPubkey = 32
	SpanBool   = 1
)

var (
	// ErrOutOfRange reports an encode of a value that does not fit the
	// target field. Always a caller bug.
	ErrOutOfRange = errors.New("layout: value out of range")

	// ErrInvalidFormat reports bytes that cannot be decoded under the
	// expected layout (short buffer, bad discriminator). Indicates a
	// program or layout version mismatch and is never retryable.
	ErrInvalidFormat = errors.New("layout: invalid format")
)

func checkSpan(b []byte, offset, span int) error {
	if offset < 0 || offset+span > len(b) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrInvalidFormat, span, offset, len(b))
	}
	return nil
}

// DecodeU8 reads a single byte at offset.
func DecodeU8(b []byte, offset int) (uint8, error) {
	if err := checkSpan(b, offset, SpanU8); err != nil {
		return 0, err
	}
	return b[offset], nil
}

// EncodeU8 writes v at offset and returns the number of bytes written.
func EncodeU8(v uint8, b []byte, offset int) (int, error) {
	if err := checkSpan(b, offset, SpanU8); err != nil {
		return 0, err
	}
	b[offset] = v
	return SpanU8, nil
}

// DecodeU32 reads a little-endian uint32 at offset.
func DecodeU32(b []byte, offset int) (uint32, error) {
	if err := checkSpan(b, offset, SpanU32); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[offset:]), nil
}

// EncodeU32 writes v as little-endian at offset.
func EncodeU32(v uint32, b []byte, offset int) (int, error) {
	if err := checkSpan(b, offset, SpanU32); err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint32(b[offset:], v)
	return SpanU32, nil
}

// DecodeU64 reads a little-endian uint64 at offset.
func DecodeU64(b []byte, offset int) (uint64, error) {
	if err := checkSpan(b, offset, SpanU64); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[offset:]), nil
}

// EncodeU64 writes v as little-endian at offset.
func EncodeU64(v uint64, b []byte, offset int) (int, error) {
	if err := checkSpan(b, offset, SpanU64); err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint64(b[offset:], v)
	return SpanU64, nil
}

// DecodeI64 reads a little-endian two's-complement int64 at offset.
func DecodeI64(b []byte, offset int) (int64, error) {
	u, err := DecodeU64(b, offset)
	if err != nil {
		return 0, err
	}
	return int64(u), nil
}

// EncodeI64 writes v as little-endian two's complement at offset.
func EncodeI64(v int64, b []byte, offset int) (int, error) {
	return EncodeU64(uint64(v), b, offset)
}

// EncodeUintN writes the low n bytes of v little-endian at offset.
// Fails with ErrOutOfRange when v does not fit in n bytes. Used for fields
// narrower than their Go representation (opcode bytes, u32 counters).
func EncodeUintN(v uint64, n int, b []byte, offset int) (int, error) {
	if n <= 0 || n > 8 {
		return 0, fmt.Errorf("%w: unsupported width %d", ErrOutOfRange, n)
	}
	if n < 8 && v >= 1<<(uint(n)*8) {
		return 0, fmt.Errorf("%w: %d does not fit in %d bytes", ErrOutOfRange, v, n)
	}
	if err := checkSpan(b, offset, n); err != nil {
		return 0, err
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	copy(b[offset:offset+n], tmp[:n])
	return n, nil
}

// DecodeU128 reads a little-endian uint128 at offset.
func DecodeU128(b []byte, offset int) (bin.Uint128, error) {
	if err := checkSpan(b, offset, SpanU128); err != nil {
		return bin.Uint128{}, err
	}
	return bin.Uint128{
		Lo: binary.LittleEndian.Uint64(b[offset:]),
		Hi: binary.LittleEndian.Uint64(b[offset+8:]),
	}, nil
}

// EncodeU128 writes v as little-endian at offset.
func EncodeU128(v bin.Uint128, b []byte, offset int) (int, error) {
	if err := checkSpan(b, offset, SpanU128); err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint64(b[offset:], v.Lo)
	binary.LittleEndian.PutUint64(b[offset+8:], v.Hi)
	return SpanU128, nil
}

// DecodeI128 reads a little-endian two's-complement int128 at offset.
func DecodeI128(b []byte, offset int) (bin.Int128, error) {
	u, err := DecodeU128(b, offset)
	if err != nil {
		return bin.Int128{}, err
	}
	return bin.Int128(u), nil
}

// EncodeI128 writes v as little-endian two's complement at offset.
func EncodeI128(v bin.Int128, b []byte, offset int) (int, error) {
	return EncodeU128(bin.Uint128(v), b, offset)
}

// DecodePubkey reads a 32-byte public key at offset.
func DecodePubkey(b []byte, offset int) (solana.PublicKey, error) {
	if err := checkSpan(b, offset, SpanPubkey); err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b[offset : offset+SpanPubkey]), nil
}

// EncodePubkey writes key at offset.
func EncodePubkey(key solana.PublicKey, b []byte, offset int) (int, error) {
	if err := checkSpan(b, offset, SpanPubkey); err != nil {
		return 0, err
	}
	copy(b[offset:offset+SpanPubkey], key[:])
	return SpanPubkey, nil
}

// DecodeBool reads a 1-byte boolean at offset. Only 0 and 1 are valid.
func DecodeBool(b []byte, offset int) (bool, error) {
	v, err := DecodeU8(b, offset)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: invalid bool byte %d at offset %d", ErrInvalidFormat, v, offset)
}

// EncodeBool writes v as a single 0/1 byte at offset.
func EncodeBool(v bool, b []byte, offset int) (int, error) {
	var raw uint8
	if v {
		raw = 1
	}
	return EncodeU8(raw, b, offset)
}

// DecodeBlob copies span raw bytes at offset.
func DecodeBlob(b []byte, offset, span int) ([]byte, error) {
	if err := checkSpan(b, offset, span); err != nil {
		return nil, err
	}
	out := make([]byte, span)
	copy(out, b[offset:offset+span])
	return out, nil
}

// EncodeBlob writes the raw bytes of v at offset. v must be exactly span
// bytes long.
func EncodeBlob(v []byte, span int, b []byte, offset int) (int, error) {
	if len(v) != span {
		return 0, fmt.Errorf("%w: blob is %d bytes, field is %d", ErrOutOfRange, len(v), span)
	}
	if err := checkSpan(b, offset, span); err != nil {
		return 0, err
	}
	copy(b[offset:offset+span], v)
	return span, nil
}

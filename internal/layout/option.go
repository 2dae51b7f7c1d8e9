// =============================
// File: internal/layout/option.go
// =============================
package layout

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Option fields are a 1-byte discriminator followed by the inner payload.
// Discriminator 0 means absent (total span 1); discriminator 1 means present
// (total span 1 + inner span). Any other discriminator byte is a format
// error.

// EncodeOptionU64 writes v (nil for absent) at offset and returns the bytes
// written: 1 when absent, 1+SpanU64 when present.
func EncodeOptionU64(v *uint64, b []byte, offset int) (int, error) {
	if v == nil {
		return EncodeU8(0, b, offset)
	}
	if _, err := EncodeU8(1, b, offset); err != nil {
		return 0, err
	}
	n, err := EncodeU64(*v, b, offset+1)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// DecodeOptionU64 reads an optional uint64 at offset, returning the value
// (nil when absent) and the total span consumed.
func DecodeOptionU64(b []byte, offset int) (*uint64, int, error) {
	tag, err := DecodeU8(b, offset)
	if err != nil {
		return nil, 0, err
	}
	switch tag {
	case 0:
		return nil, 1, nil
	case 1:
		v, err := DecodeU64(b, offset+1)
		if err != nil {
			return nil, 0, err
		}
		return &v, 1 + SpanU64, nil
	}
	return nil, 0, fmt.Errorf("%w: invalid option discriminator %d at offset %d", ErrInvalidFormat, tag, offset)
}

// EncodeOptionPubkey writes key (nil for absent) at offset.
func EncodeOptionPubkey(key *solana.PublicKey, b []byte, offset int) (int, error) {
	if key == nil {
		return EncodeU8(0, b, offset)
	}
	if _, err := EncodeU8(1, b, offset); err != nil {
		return 0, err
	}
	n, err := EncodePubkey(*key, b, offset+1)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// DecodeOptionPubkey reads an optional public key at offset.
func DecodeOptionPubkey(b []byte, offset int) (*solana.PublicKey, int, error) {
	tag, err := DecodeU8(b, offset)
	if err != nil {
		return nil, 0, err
	}
	switch tag {
	case 0:
		return nil, 1, nil
	case 1:
		key, err := DecodePubkey(b, offset+1)
		if err != nil {
			return nil, 0, err
		}
		return &key, 1 + SpanPubkey, nil
	}
	return nil, 0, fmt.Errorf("%w: invalid option discriminator %d at offset %d", ErrInvalidFormat, tag, offset)
}

// DecodeCOptionPubkey reads the SPL-token style fixed-width option: a 4-byte
// little-endian discriminator followed by a 32-byte key that is always
// present in the buffer. Span is always 4+32 regardless of presence.
func DecodeCOptionPubkey(b []byte, offset int) (*solana.PublicKey, error) {
	tag, err := DecodeU32(b, offset)
	if err != nil {
		return nil, err
	}
	key, err := DecodePubkey(b, offset+SpanU32)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &key, nil
	}
	return nil, fmt.Errorf("%w: invalid coption discriminator %d at offset %d", ErrInvalidFormat, tag, offset)
}

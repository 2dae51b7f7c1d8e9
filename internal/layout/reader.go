// =============================
// File: internal/layout/reader.go
// =============================
package layout

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Reader walks a fixed-offset record front to back. The cursor advances by
// each field's span, so decode order must match the record's field order
// exactly. The first failure latches: later reads return zero values and
// Err() reports the original error.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int { return r.off }

// Err returns the first decode failure, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of undecoded bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Skip advances the cursor over n bytes without decoding them.
func (r *Reader) Skip(n int) {
	if r.err != nil {
		return
	}
	if err := checkSpan(r.data, r.off, n); err != nil {
		r.err = err
		return
	}
	r.off += n
}

func (r *Reader) U8() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := DecodeU8(r.data, r.off)
	if err != nil {
		r.err = err
		return 0
	}
	r.off += SpanU8
	return v
}

func (r *Reader) U32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := DecodeU32(r.data, r.off)
	if err != nil {
		r.err = err
		return 0
	}
	r.off += SpanU32
	return v
}

func (r *Reader) U64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := DecodeU64(r.data, r.off)
	if err != nil {
		r.err = err
		return 0
	}
	r.off += SpanU64
	return v
}

func (r *Reader) I64() int64 {
	if r.err != nil {
		return 0
	}
	v, err := DecodeI64(r.data, r.off)
	if err != nil {
		r.err = err
		return 0
	}
	r.off += SpanI64
	return v
}

func (r *Reader) U128() bin.Uint128 {
	if r.err != nil {
		return bin.Uint128{}
	}
	v, err := DecodeU128(r.data, r.off)
	if err != nil {
		r.err = err
		return bin.Uint128{}
	}
	r.off += SpanU128
	return v
}

func (r *Reader) Pubkey() solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	v, err := DecodePubkey(r.data, r.off)
	if err != nil {
		r.err = err
		return solana.PublicKey{}
	}
	r.off += SpanPubkey
	return v
}

func (r *Reader) Bool() bool {
	if r.err != nil {
		return false
	}
	v, err := DecodeBool(r.data, r.off)
	if err != nil {
		r.err = err
		return false
	}
	r.off += SpanBool
	return v
}

// ExpectSize fails the reader unless the underlying buffer is exactly span
// bytes. Fixed-size records check this before decoding any field.
func (r *Reader) ExpectSize(span int) {
	if r.err != nil {
		return
	}
	if len(r.data) != span {
		r.err = fmt.Errorf("%w: record is %d bytes, expected %d", ErrInvalidFormat, len(r.data), span)
	}
}

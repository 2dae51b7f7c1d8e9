// =============================
// File: internal/layout/writer.go
// =============================
package layout

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Writer builds a fixed-offset record front to back, the encode counterpart
// of Reader. The first failure latches and Bytes() reports it.
type Writer struct {
	data []byte
	off  int
	err  error
}

// NewWriter allocates a zeroed buffer of exactly span bytes.
func NewWriter(span int) *Writer {
	return &Writer{data: make([]byte, span)}
}

// Offset returns the current cursor position.
func (w *Writer) Offset() int { return w.off }

// Bytes returns the encoded record, or the first encode failure.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.data, nil
}

// Skip leaves n zero bytes at the cursor.
func (w *Writer) Skip(n int) {
	if w.err != nil {
		return
	}
	if err := checkSpan(w.data, w.off, n); err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) U8(v uint8) {
	if w.err != nil {
		return
	}
	n, err := EncodeU8(v, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) U32(v uint32) {
	if w.err != nil {
		return
	}
	n, err := EncodeU32(v, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) U64(v uint64) {
	if w.err != nil {
		return
	}
	n, err := EncodeU64(v, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) I64(v int64) {
	if w.err != nil {
		return
	}
	n, err := EncodeI64(v, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) U128(v bin.Uint128) {
	if w.err != nil {
		return
	}
	n, err := EncodeU128(v, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) Pubkey(key solana.PublicKey) {
	if w.err != nil {
		return
	}
	n, err := EncodePubkey(key, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) Bool(v bool) {
	if w.err != nil {
		return
	}
	n, err := EncodeBool(v, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

func (w *Writer) Blob(v []byte, span int) {
	if w.err != nil {
		return
	}
	n, err := EncodeBlob(v, span, w.data, w.off)
	if err != nil {
		w.err = err
		return
	}
	w.off += n
}

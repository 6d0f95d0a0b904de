// Package args implements the ordered binary argument format used for
// ledger calls: an append-only builder on the write side and a sequential
// reader on the decode side.
//
// Values are encoded little-endian. Strings carry a u32 length prefix
// followed by UTF-8 bytes. There are no type tags on the wire; correctness
// depends entirely on both sides agreeing on field order and type, which is
// fixed per entity in package wire. Reading a mismatched type at an offset
// is undefined by contract.
package args

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedResponse is returned when a read consumes past the end of the
// buffer. Every decode path must catch it and convert it to a fallback value.
var ErrMalformedResponse = errors.New("malformed response: read past end of buffer")

// Args accumulates typed values into one ordered binary buffer.
type Args struct {
	buf []byte
}

// New creates an empty argument buffer.
func New() *Args {
	return &Args{}
}

// AddString appends a u32 length prefix and the string's UTF-8 bytes.
func (a *Args) AddString(s string) *Args {
	a.buf = binary.LittleEndian.AppendUint32(a.buf, uint32(len(s)))
	a.buf = append(a.buf, s...)
	return a
}

// AddU32 appends an unsigned 32-bit integer.
func (a *Args) AddU32(v uint32) *Args {
	a.buf = binary.LittleEndian.AppendUint32(a.buf, v)
	return a
}

// AddU64 appends an unsigned 64-bit integer.
func (a *Args) AddU64(v uint64) *Args {
	a.buf = binary.LittleEndian.AppendUint64(a.buf, v)
	return a
}

// AddI32 appends a signed 32-bit integer in two's complement form.
func (a *Args) AddI32(v int32) *Args {
	a.buf = binary.LittleEndian.AppendUint32(a.buf, uint32(v))
	return a
}

// Bytes returns the accumulated buffer.
func (a *Args) Bytes() []byte {
	return a.buf
}

// Reader consumes typed values from a response buffer in the exact order
// they were written, advancing an internal cursor.
type Reader struct {
	buf []byte
	off int
}

// NewReader creates a reader over a response buffer.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// take returns the next n bytes or ErrMalformedResponse if fewer remain.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, ErrMalformedResponse
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// NextString consumes a u32 length prefix and that many UTF-8 bytes.
func (r *Reader) NextString() (string, error) {
	n, err := r.NextU32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NextU32 consumes an unsigned 32-bit integer.
func (r *Reader) NextU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// NextU64 consumes an unsigned 64-bit integer.
func (r *Reader) NextU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// NextI32 consumes a signed 32-bit integer.
func (r *Reader) NextI32() (int32, error) {
	v, err := r.NextU32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// codec provides the primitive big-endian fixed-width encoders and decoders
// the heap file's on-disk page format is built from. Every page byte flatbase
// ever writes passes through one of these functions, so the format stays
// bit-exact regardless of which operator or component produced the value.
package codec

import (
	"encoding/binary"
	"math"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

// MaxStringBytes is the largest STRING value codec can encode; the length
// prefix is a single unsigned byte.
const MaxStringBytes = 255

// PutU16 writes v as 2 big-endian bytes into buf at offset off.
func PutU16(buf []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(buf[off:off+2], v)
}

// U16 reads 2 big-endian bytes from buf at offset off.
func U16(buf []byte, off int) (uint16, error) {
	if off+2 > len(buf) {
		return 0, pkgerrors.Wrap(errs.ErrCorruptPage, "u16 read overruns buffer")
	}
	return binary.BigEndian.Uint16(buf[off : off+2]), nil
}

// PutI32 writes v as 4 big-endian bytes into buf at offset off.
func PutI32(buf []byte, off int, v int32) {
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(v))
}

// I32 reads 4 big-endian bytes from buf at offset off.
func I32(buf []byte, off int) (int32, error) {
	if off+4 > len(buf) {
		return 0, pkgerrors.Wrap(errs.ErrCorruptPage, "i32 read overruns buffer")
	}
	return int32(binary.BigEndian.Uint32(buf[off : off+4])), nil
}

// PutF32 writes v as 4 big-endian bytes into buf at offset off.
func PutF32(buf []byte, off int, v float32) {
	binary.BigEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
}

// F32 reads 4 big-endian bytes from buf at offset off.
func F32(buf []byte, off int) (float32, error) {
	if off+4 > len(buf) {
		return 0, pkgerrors.Wrap(errs.ErrCorruptPage, "f32 read overruns buffer")
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf[off : off+4])), nil
}

// PutString writes a length-prefixed (u8) UTF-8 string into buf at offset
// off and returns the number of bytes written. s longer than MaxStringBytes
// is a contract violation the caller (coltype) must reject before reaching
// here.
func PutString(buf []byte, off int, s string) int {
	b := []byte(s)
	buf[off] = byte(len(b))
	copy(buf[off+1:off+1+len(b)], b)
	return 1 + len(b)
}

// String reads a length-prefixed (u8) UTF-8 string from buf at offset off,
// returning the string and the number of bytes consumed.
func String(buf []byte, off int) (string, int, error) {
	if off+1 > len(buf) {
		return "", 0, pkgerrors.Wrap(errs.ErrCorruptPage, "string length read overruns buffer")
	}
	n := int(buf[off])
	if off+1+n > len(buf) {
		return "", 0, pkgerrors.Wrap(errs.ErrCorruptPage, "string body read overruns buffer")
	}
	return string(buf[off+1 : off+1+n]), 1 + n, nil
}

// StringSize returns the number of bytes PutString would consume for s,
// without writing anything.
func StringSize(s string) int {
	return 1 + len(s)
}

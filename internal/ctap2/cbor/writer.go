// Package cbor implements the definite-length, canonical CBOR subset this
// authenticator core needs: major types 0, 1, 2, 3, 4, 5, and the simple
// values true/false. It writes into and reads from caller-supplied byte
// buffers only; nothing here allocates on the decode path, and the encode
// path only ever appends into the buffer it was given.
package cbor

import "github.com/roottap/firmware-core/internal/ctap2"

const (
	majorUint    = 0
	majorNegInt  = 1
	majorByteStr = 2
	majorTextStr = 3
	majorArray   = 4
	majorMap     = 5
	majorSimple  = 7
)

const (
	simpleFalse = 20
	simpleTrue  = 21
)

// Writer appends canonical CBOR items into a fixed output buffer. Every
// method returns ctap2.StatusInvalidLength if the item would overflow the
// buffer, and ctap2.StatusInvalidParameter for values outside the range
// this codec supports.
type Writer struct {
	out []byte
	n   int
}

// NewWriter wraps out for writing. The writer never grows or reallocates
// out; it only tracks how many of its bytes have been used.
func NewWriter(out []byte) *Writer {
	return &Writer{out: out}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.n
}

// Bytes returns the written prefix of the output buffer.
func (w *Writer) Bytes() []byte {
	return w.out[:w.n]
}

func (w *Writer) pushByte(b byte) ctap2.Status {
	if w.n >= len(w.out) {
		return ctap2.StatusInvalidLength
	}
	w.out[w.n] = b
	w.n++
	return ctap2.StatusOK
}

func (w *Writer) pushBytes(data []byte) ctap2.Status {
	if w.n+len(data) > len(w.out) {
		return ctap2.StatusInvalidLength
	}
	copy(w.out[w.n:], data)
	w.n += len(data)
	return ctap2.StatusOK
}

// writeHead writes a major-type/length header using the smallest of the
// {embedded, 1-byte, 2-byte, 4-byte} additional-info encodings.
func (w *Writer) writeHead(major byte, length uint64) ctap2.Status {
	m := major << 5
	switch {
	case length < 24:
		return w.pushByte(m | byte(length))
	case length <= 0xff:
		if st := w.pushByte(m | 24); st != ctap2.StatusOK {
			return st
		}
		return w.pushByte(byte(length))
	case length <= 0xffff:
		if st := w.pushByte(m | 25); st != ctap2.StatusOK {
			return st
		}
		if st := w.pushByte(byte(length >> 8)); st != ctap2.StatusOK {
			return st
		}
		return w.pushByte(byte(length))
	default:
		if length > 0xffffffff {
			return ctap2.StatusInvalidParameter
		}
		if st := w.pushByte(m | 26); st != ctap2.StatusOK {
			return st
		}
		for shift := 24; shift >= 0; shift -= 8 {
			if st := w.pushByte(byte(length >> shift)); st != ctap2.StatusOK {
				return st
			}
		}
		return ctap2.StatusOK
	}
}

// Map writes a map header with the given number of key/value pairs. The
// caller is responsible for writing exactly 2*count subsequent items, in
// the canonical key order the spec requires for that map.
func (w *Writer) Map(count int) ctap2.Status {
	return w.writeHead(majorMap, uint64(count))
}

// Array writes an array header with the given element count. The caller
// writes exactly count subsequent items.
func (w *Writer) Array(count int) ctap2.Status {
	return w.writeHead(majorArray, uint64(count))
}

// Uint writes an unsigned integer.
func (w *Writer) Uint(v uint32) ctap2.Status {
	return w.writeHead(majorUint, uint64(v))
}

// Int writes a signed integer in [-(2^32), 2^32). Non-negative values are
// written exactly as Uint would; negative values use major type 1.
func (w *Writer) Int(v int64) ctap2.Status {
	if v >= 0 {
		if v > 0xffffffff {
			return ctap2.StatusInvalidParameter
		}
		return w.writeHead(majorUint, uint64(v))
	}
	if v < -4294967296 {
		return ctap2.StatusInvalidParameter
	}
	magnitude := uint64(-1 - v)
	return w.writeHead(majorNegInt, magnitude)
}

// TextString writes a UTF-8 text string.
func (w *Writer) TextString(s string) ctap2.Status {
	if st := w.writeHead(majorTextStr, uint64(len(s))); st != ctap2.StatusOK {
		return st
	}
	return w.pushBytes([]byte(s))
}

// ByteString writes a byte string.
func (w *Writer) ByteString(data []byte) ctap2.Status {
	if st := w.writeHead(majorByteStr, uint64(len(data))); st != ctap2.StatusOK {
		return st
	}
	return w.pushBytes(data)
}

// Bool writes a CBOR simple-value boolean.
func (w *Writer) Bool(v bool) ctap2.Status {
	if v {
		return w.pushByte(majorSimple<<5 | simpleTrue)
	}
	return w.pushByte(majorSimple<<5 | simpleFalse)
}

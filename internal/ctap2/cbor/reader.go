package cbor

import (
	"unicode/utf8"
	"unsafe"

	"github.com/roottap/firmware-core/internal/ctap2"
)

// Reader makes a single forward pass over a borrowed byte slice. Byte and
// text string accessors return slices into that same buffer; nothing is
// copied or allocated.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading. buf is not copied and must outlive the
// Reader and any strings returned from it.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the unconsumed tail of the input buffer.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

func (r *Reader) readByte() (byte, ctap2.Status) {
	if r.pos >= len(r.buf) {
		return 0, ctap2.StatusInvalidCbor
	}
	b := r.buf[r.pos]
	r.pos++
	return b, ctap2.StatusOK
}

func (r *Reader) readBytes(n int) ([]byte, ctap2.Status) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ctap2.StatusInvalidCbor
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, ctap2.StatusOK
}

// head reads a major-type/additional-info header and returns the major
// type and the decoded length/value. Additional info 27 through 31
// (including 31, indefinite length) yields StatusInvalidCbor.
func (r *Reader) head() (major byte, length uint64, st ctap2.Status) {
	b, st := r.readByte()
	if st != ctap2.StatusOK {
		return 0, 0, st
	}
	major = b >> 5
	add := b & 0x1f

	switch {
	case add < 24:
		return major, uint64(add), ctap2.StatusOK
	case add == 24:
		v, st := r.readByte()
		return major, uint64(v), st
	case add == 25:
		v, st := r.readBytes(2)
		if st != ctap2.StatusOK {
			return 0, 0, st
		}
		return major, uint64(v[0])<<8 | uint64(v[1]), ctap2.StatusOK
	case add == 26:
		v, st := r.readBytes(4)
		if st != ctap2.StatusOK {
			return 0, 0, st
		}
		return major, uint64(v[0])<<24 | uint64(v[1])<<16 | uint64(v[2])<<8 | uint64(v[3]), ctap2.StatusOK
	default:
		// 27 (8-byte length), 28-30 (reserved), 31 (indefinite) are all
		// rejected: this codec is definite-length only.
		return 0, 0, ctap2.StatusInvalidCbor
	}
}

func (r *Reader) expectMajor(want byte) (uint64, ctap2.Status) {
	save := r.pos
	major, length, st := r.head()
	if st != ctap2.StatusOK {
		return 0, st
	}
	if major != want {
		r.pos = save
		return 0, ctap2.StatusCborUnexpectedType
	}
	return length, ctap2.StatusOK
}

// Map reads a map header and returns its pair count.
func (r *Reader) Map() (int, ctap2.Status) {
	n, st := r.expectMajor(majorMap)
	return int(n), st
}

// Array reads an array header and returns its element count.
func (r *Reader) Array() (int, ctap2.Status) {
	n, st := r.expectMajor(majorArray)
	return int(n), st
}

// Uint reads an unsigned integer.
func (r *Reader) Uint() (uint32, ctap2.Status) {
	n, st := r.expectMajor(majorUint)
	if st != ctap2.StatusOK {
		return 0, st
	}
	if n > 0xffffffff {
		return 0, ctap2.StatusInvalidCbor
	}
	return uint32(n), ctap2.StatusOK
}

// Int reads an integer of either major type 0 or 1 and returns it as a
// signed int64.
func (r *Reader) Int() (int64, ctap2.Status) {
	save := r.pos
	major, length, st := r.head()
	if st != ctap2.StatusOK {
		return 0, st
	}
	switch major {
	case majorUint:
		return int64(length), ctap2.StatusOK
	case majorNegInt:
		return -1 - int64(length), ctap2.StatusOK
	default:
		r.pos = save
		return 0, ctap2.StatusCborUnexpectedType
	}
}

// ByteString reads a byte string and returns a slice borrowed from the
// input buffer.
func (r *Reader) ByteString() ([]byte, ctap2.Status) {
	n, st := r.expectMajor(majorByteStr)
	if st != ctap2.StatusOK {
		return nil, st
	}
	return r.readBytes(int(n))
}

// TextString reads a text string, validates it is well-formed UTF-8, and
// returns a string aliasing the input buffer.
func (r *Reader) TextString() (string, ctap2.Status) {
	n, st := r.expectMajor(majorTextStr)
	if st != ctap2.StatusOK {
		return "", st
	}
	b, st := r.readBytes(int(n))
	if st != ctap2.StatusOK {
		return "", st
	}
	if !utf8.Valid(b) {
		return "", ctap2.StatusInvalidCbor
	}
	if len(b) == 0 {
		return "", ctap2.StatusOK
	}
	return unsafe.String(&b[0], len(b)), ctap2.StatusOK
}

// Bool reads a simple-value boolean.
func (r *Reader) Bool() (bool, ctap2.Status) {
	save := r.pos
	b, st := r.readByte()
	if st != ctap2.StatusOK {
		return false, st
	}
	switch b {
	case majorSimple<<5 | simpleTrue:
		return true, ctap2.StatusOK
	case majorSimple<<5 | simpleFalse:
		return false, ctap2.StatusOK
	default:
		r.pos = save
		return false, ctap2.StatusCborUnexpectedType
	}
}

// Skip consumes exactly one CBOR item, recursing into arrays and maps so
// that unrecognized request fields can be discarded wholesale.
func (r *Reader) Skip() ctap2.Status {
	save := r.pos
	major, length, st := r.head()
	if st != ctap2.StatusOK {
		return st
	}
	switch major {
	case majorUint, majorNegInt:
		return ctap2.StatusOK
	case majorByteStr, majorTextStr:
		if _, st := r.readBytes(int(length)); st != ctap2.StatusOK {
			return st
		}
		return ctap2.StatusOK
	case majorArray:
		for i := uint64(0); i < length; i++ {
			if st := r.Skip(); st != ctap2.StatusOK {
				return st
			}
		}
		return ctap2.StatusOK
	case majorMap:
		for i := uint64(0); i < length*2; i++ {
			if st := r.Skip(); st != ctap2.StatusOK {
				return st
			}
		}
		return ctap2.StatusOK
	case majorSimple:
		return ctap2.StatusOK
	case 6: // tag: skippable, consume the tag and the single tagged item
		return r.Skip()
	default:
		r.pos = save
		return ctap2.StatusInvalidCbor
	}
}

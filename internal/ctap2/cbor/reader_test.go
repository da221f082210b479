package cbor

import (
	"testing"

	"github.com/roottap/firmware-core/internal/ctap2"
)

func TestReaderRejectsIndefiniteLength(t *testing.T) {
	// Major type 2 (byte string), additional info 31 (indefinite).
	r := NewReader([]byte{0x5f})
	if _, st := r.ByteString(); st != ctap2.StatusInvalidCbor {
		t.Fatalf("expected InvalidCbor, got %v", st)
	}
}

func TestReaderUnexpectedType(t *testing.T) {
	// A text string header where a map is expected.
	r := NewReader([]byte{0x63, 'f', 'o', 'o'})
	if _, st := r.Map(); st != ctap2.StatusCborUnexpectedType {
		t.Fatalf("expected CborUnexpectedType, got %v", st)
	}
}

func TestReaderInvalidUTF8(t *testing.T) {
	r := NewReader([]byte{0x61, 0xff})
	if _, st := r.TextString(); st != ctap2.StatusInvalidCbor {
		t.Fatalf("expected InvalidCbor, got %v", st)
	}
}

func TestReaderSkipNestedStructures(t *testing.T) {
	buf := make([]byte, 64)
	w := NewWriter(buf)
	// { 1: [1, 2, "x"], 2: {3: true} }
	w.Map(2)
	w.Uint(1)
	w.Array(3)
	w.Uint(1)
	w.Uint(2)
	w.TextString("x")
	w.Uint(2)
	w.Map(1)
	w.Uint(3)
	w.Bool(true)

	r := NewReader(w.Bytes())
	pairs, st := r.Map()
	if st != ctap2.StatusOK || pairs != 2 {
		t.Fatalf("map header: %d %v", pairs, st)
	}
	for i := 0; i < pairs; i++ {
		if _, st := r.Uint(); st != ctap2.StatusOK {
			t.Fatalf("key: %v", st)
		}
		if st := r.Skip(); st != ctap2.StatusOK {
			t.Fatalf("skip value %d: %v", i, st)
		}
	}
	if len(r.Remaining()) != 0 {
		t.Errorf("expected buffer fully consumed, %d bytes left", len(r.Remaining()))
	}
}

func TestReaderByteStringBorrowsBuffer(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)
	w.ByteString([]byte{0xde, 0xad, 0xbe, 0xef})

	r := NewReader(w.Bytes())
	got, st := r.ByteString()
	if st != ctap2.StatusOK {
		t.Fatal(st)
	}
	if len(got) != 4 || got[0] != 0xde {
		t.Errorf("got %x", got)
	}
}

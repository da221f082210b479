package pairing

import (
	"strings"
	"testing"
)

func TestGenerateProducesDigitOnlyURI(t *testing.T) {
	var aaguid [16]byte
	copy(aaguid[:], "ROOTTAP")

	code, err := Generate(aaguid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.HasPrefix(code.URI, "ROOTTAP:/") {
		t.Fatalf("unexpected URI prefix: %s", code.URI)
	}
	digits := strings.TrimPrefix(code.URI, "ROOTTAP:/")
	for i, r := range digits {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit rune %q at position %d in %s", r, i, digits)
		}
	}
	if code.Art() == "" {
		t.Errorf("expected non-empty rendered QR art")
	}
}

func TestGenerateNonceVariesAcrossCalls(t *testing.T) {
	var aaguid [16]byte
	a, err := Generate(aaguid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(aaguid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a.Nonce == b.Nonce {
		t.Errorf("expected distinct nonces across calls")
	}
	if a.URI == b.URI {
		t.Errorf("expected distinct URIs across calls")
	}
}

func TestDigitEncodeMatchesKnownVector(t *testing.T) {
	// 7 zero bytes encode to 17 zero digits.
	got := digitEncode(make([]byte, 7))
	want := "00000000000000000"
	if got != want {
		t.Errorf("digitEncode(zeros) = %q, want %q", got, want)
	}
}

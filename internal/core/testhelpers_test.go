package core

import (
	"crypto/sha256"
	mathrand "math/rand"
	"testing"

	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

// testRNG is a deterministic, varied RandomSource for tests: deterministic
// so test failures reproduce, varied so crypto/ecdsa key generation always
// terminates (a constant byte stream can starve its rejection sampling).
type testRNG struct {
	r *mathrand.Rand
}

func newTestRNG(seed int64) *testRNG {
	return &testRNG{r: mathrand.New(mathrand.NewSource(seed))}
}

func (t *testRNG) FillRandom(dst []byte) error {
	_, err := t.r.Read(dst)
	return err
}

func mustClientDataHash(label string) [ctap2.ClientDataHashSize]byte {
	return sha256.Sum256([]byte(label))
}

func mustOK(t *testing.T, st ctap2.Status) {
	t.Helper()
	if st != ctap2.StatusOK {
		t.Fatalf("unexpected status: %v", st)
	}
}

func encodeMakeCredentialRequest(t *testing.T, rpID string, userID []byte, clientDataHash [32]byte, opts *options) []byte {
	t.Helper()
	buf := make([]byte, ctap2.MaxMsgSize)
	w := cbor.NewWriter(buf)

	fieldCount := 4
	if opts != nil {
		fieldCount = 5
	}

	mustOK(t, w.Map(fieldCount))
	mustOK(t, w.Uint(1))
	mustOK(t, w.ByteString(clientDataHash[:]))
	mustOK(t, w.Uint(2))
	mustOK(t, w.Map(1))
	mustOK(t, w.TextString("id"))
	mustOK(t, w.TextString(rpID))
	mustOK(t, w.Uint(3))
	mustOK(t, w.Map(1))
	mustOK(t, w.TextString("id"))
	mustOK(t, w.ByteString(userID))
	mustOK(t, w.Uint(4))
	mustOK(t, w.Array(1))
	mustOK(t, w.Map(2))
	mustOK(t, w.TextString("alg"))
	mustOK(t, w.Int(-7))
	mustOK(t, w.TextString("type"))
	mustOK(t, w.TextString("public-key"))

	if opts != nil {
		mustOK(t, w.Uint(7))
		mustOK(t, w.Map(3))
		mustOK(t, w.TextString("up"))
		mustOK(t, w.Bool(opts.up))
		mustOK(t, w.TextString("uv"))
		mustOK(t, w.Bool(opts.uv))
		mustOK(t, w.TextString("rk"))
		mustOK(t, w.Bool(opts.rk))
	}

	return w.Bytes()
}

func encodeGetAssertionRequest(t *testing.T, rpID string, clientDataHash [32]byte, credID [16]byte) []byte {
	t.Helper()
	buf := make([]byte, ctap2.MaxMsgSize)
	w := cbor.NewWriter(buf)

	mustOK(t, w.Map(3))
	mustOK(t, w.Uint(1))
	mustOK(t, w.TextString(rpID))
	mustOK(t, w.Uint(2))
	mustOK(t, w.ByteString(clientDataHash[:]))
	mustOK(t, w.Uint(3))
	mustOK(t, w.Array(1))
	mustOK(t, w.Map(2))
	mustOK(t, w.TextString("type"))
	mustOK(t, w.TextString("public-key"))
	mustOK(t, w.TextString("id"))
	mustOK(t, w.ByteString(credID[:]))

	return w.Bytes()
}

package ctap2boundary

import (
	"crypto/sha256"
	mathrand "math/rand"
	"testing"

	"github.com/roottap/firmware-core/internal/core"
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

type fakeRNG struct{ r *mathrand.Rand }

func (f fakeRNG) FillRandom(dst []byte) error {
	_, err := f.r.Read(dst)
	return err
}

func TestInitRejectsNilOrUndersizedMem(t *testing.T) {
	if _, st := Init(nil); st != ctap2.StatusOther {
		t.Fatalf("nil mem: expected Other, got %v", st)
	}
	if _, st := Init(make([]byte, 1)); st != ctap2.StatusOther {
		t.Fatalf("undersized mem: expected Other, got %v", st)
	}
}

func TestInitSucceedsWithSufficientMem(t *testing.T) {
	a, st := Init(make([]byte, CtxSize()))
	if st != ctap2.StatusOK {
		t.Fatalf("Init: %v", st)
	}
	dirty, st := a.IsDirty()
	if st != ctap2.StatusOK {
		t.Fatalf("IsDirty: %v", st)
	}
	if dirty {
		t.Errorf("freshly initialized context should not be dirty")
	}
}

func TestHandleRequestBeforeInit(t *testing.T) {
	var a *Adapter
	resp := make([]byte, 16)
	_, st := a.HandleRequest([]byte{ctap2.CmdGetInfo}, resp, fakeRNG{mathrand.New(mathrand.NewSource(1))}, core.AlwaysApproveGate{})
	if st != ctap2.StatusOther {
		t.Fatalf("expected Other, got %v", st)
	}
}

func TestHandleRequestGetInfoAfterInit(t *testing.T) {
	a, st := Init(make([]byte, CtxSize()))
	mustBoundaryOK(t, st)

	resp := make([]byte, ctap2.MaxMsgSize+1)
	n, st := a.HandleRequest([]byte{ctap2.CmdGetInfo}, resp, fakeRNG{mathrand.New(mathrand.NewSource(1))}, core.AlwaysApproveGate{})
	mustBoundaryOK(t, st)
	if resp[0] != 0x00 {
		t.Fatalf("expected status byte 0, got 0x%02x", resp[0])
	}
	if n <= 1 {
		t.Fatalf("expected a populated GetInfo response, got length %d", n)
	}
}

func TestSaveStateRequiresInitialization(t *testing.T) {
	var a *Adapter
	out := make([]byte, PersistBlobSize())
	if _, st := a.SaveState(out); st != ctap2.StatusOther {
		t.Fatalf("expected Other, got %v", st)
	}
}

func TestSaveStateRejectsUndersizedOutput(t *testing.T) {
	a, st := Init(make([]byte, CtxSize()))
	mustBoundaryOK(t, st)

	out := make([]byte, PersistBlobSize()-1)
	if _, st := a.SaveState(out); st != ctap2.StatusInvalidLength {
		t.Fatalf("expected InvalidLength, got %v", st)
	}
}

func TestSaveLoadStateRoundTripThroughBoundary(t *testing.T) {
	a, st := Init(make([]byte, CtxSize()))
	mustBoundaryOK(t, st)

	rng := fakeRNG{mathrand.New(mathrand.NewSource(7))}
	clientDataHash := sha256.Sum256([]byte("boundary-test"))
	req := encodeBoundaryMakeCredentialRequest(t, "example.com", []byte{1}, clientDataHash)

	resp := make([]byte, ctap2.MaxMsgSize+1)
	_, st = a.HandleRequest(append([]byte{ctap2.CmdMakeCredential}, req...), resp, rng, core.AlwaysApproveGate{})
	mustBoundaryOK(t, st)

	dirty, st := a.IsDirty()
	mustBoundaryOK(t, st)
	if !dirty {
		t.Fatalf("expected dirty after MakeCredential")
	}

	out := make([]byte, PersistBlobSize())
	n, st := a.SaveState(out)
	mustBoundaryOK(t, st)

	b, st := Init(make([]byte, CtxSize()))
	mustBoundaryOK(t, st)
	if st := b.LoadState(out[:n]); st != ctap2.StatusOK {
		t.Fatalf("LoadState: %v", st)
	}

	dirty, st = b.IsDirty()
	mustBoundaryOK(t, st)
	if dirty {
		t.Errorf("a freshly loaded state should not be dirty")
	}

	if st := a.MarkClean(); st != ctap2.StatusOK {
		t.Fatalf("MarkClean: %v", st)
	}
	dirty, st = a.IsDirty()
	mustBoundaryOK(t, st)
	if dirty {
		t.Errorf("expected clean after MarkClean")
	}
}

func TestLoadStateRejectsWrongLength(t *testing.T) {
	a, st := Init(make([]byte, CtxSize()))
	mustBoundaryOK(t, st)
	if st := a.LoadState(make([]byte, PersistBlobSize()-1)); st != ctap2.StatusInvalidLength {
		t.Fatalf("expected InvalidLength, got %v", st)
	}
}

func mustBoundaryOK(t *testing.T, st ctap2.Status) {
	t.Helper()
	if st != ctap2.StatusOK {
		t.Fatalf("unexpected status: %v", st)
	}
}

func encodeBoundaryMakeCredentialRequest(t *testing.T, rpID string, userID []byte, clientDataHash [32]byte) []byte {
	t.Helper()
	buf := make([]byte, ctap2.MaxMsgSize)
	w := cbor.NewWriter(buf)

	mustBoundaryWriteOK(t, w.Map(4))
	mustBoundaryWriteOK(t, w.Uint(1))
	mustBoundaryWriteOK(t, w.ByteString(clientDataHash[:]))
	mustBoundaryWriteOK(t, w.Uint(2))
	mustBoundaryWriteOK(t, w.Map(1))
	mustBoundaryWriteOK(t, w.TextString("id"))
	mustBoundaryWriteOK(t, w.TextString(rpID))
	mustBoundaryWriteOK(t, w.Uint(3))
	mustBoundaryWriteOK(t, w.Map(1))
	mustBoundaryWriteOK(t, w.TextString("id"))
	mustBoundaryWriteOK(t, w.ByteString(userID))
	mustBoundaryWriteOK(t, w.Uint(4))
	mustBoundaryWriteOK(t, w.Array(1))
	mustBoundaryWriteOK(t, w.Map(2))
	mustBoundaryWriteOK(t, w.TextString("alg"))
	mustBoundaryWriteOK(t, w.Int(-7))
	mustBoundaryWriteOK(t, w.TextString("type"))
	mustBoundaryWriteOK(t, w.TextString("public-key"))

	return w.Bytes()
}

func mustBoundaryWriteOK(t *testing.T, st ctap2.Status) {
	t.Helper()
	if st != ctap2.StatusOK {
		t.Fatalf("unexpected write status: %v", st)
	}
}

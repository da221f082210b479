package simhost

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roottap/firmware-core/internal/core"
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2boundary"
)

func TestDeriveDeviceSeedIsStableForSamePassphrase(t *testing.T) {
	a, err := DeriveDeviceSeed([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("DeriveDeviceSeed: %v", err)
	}
	b, err := DeriveDeviceSeed([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("DeriveDeviceSeed: %v", err)
	}
	if a != b {
		t.Errorf("expected identical seeds for identical passphrases")
	}

	c, err := DeriveDeviceSeed([]byte("a different passphrase"))
	if err != nil {
		t.Fatalf("DeriveDeviceSeed: %v", err)
	}
	if a == c {
		t.Errorf("expected different seeds for different passphrases")
	}
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	seed, err := DeriveDeviceSeed([]byte("demo-device"))
	if err != nil {
		t.Fatalf("DeriveDeviceSeed: %v", err)
	}

	a := NewSeededSource(seed)
	bufA := make([]byte, 16)
	if err := a.FillRandom(bufA); err != nil {
		t.Fatalf("FillRandom: %v", err)
	}

	b := NewSeededSource(seed)
	bufB := make([]byte, 16)
	if err := b.FillRandom(bufB); err != nil {
		t.Fatalf("FillRandom: %v", err)
	}

	if string(bufA) != string(bufB) {
		t.Errorf("expected identical output from two sources derived from the same seed")
	}
}

func TestCSPRNGSourceFillsRequestedLength(t *testing.T) {
	var src CSPRNGSource
	buf := make([]byte, 32)
	if err := src.FillRandom(buf); err != nil {
		t.Fatalf("FillRandom: %v", err)
	}
	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Errorf("32 bytes of crypto/rand output were all zero: vanishingly unlikely, something's wrong")
	}
}

func TestServerRoundTripsGetInfoOverWebsocket(t *testing.T) {
	adapter, st := ctap2boundary.Init(make([]byte, ctap2boundary.CtxSize()))
	if st != ctap2.StatusOK {
		t.Fatalf("Init: %v", st)
	}

	srv := NewServer(adapter, CSPRNGSource{}, core.AlwaysApproveGate{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{ctap2.CmdGetInfo}); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, resp, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(resp) == 0 || resp[0] != 0x00 {
		t.Fatalf("unexpected response: %x", resp)
	}
}

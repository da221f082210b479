package core

import (
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

// handleGetInfo writes the fixed authenticatorGetInfo response. The
// request payload carries no parameters for this command and is ignored.
func handleGetInfo(ctx *Context, _ []byte, out []byte) (int, ctap2.Status) {
	w := cbor.NewWriter(out)

	if st := w.Map(5); st != ctap2.StatusOK {
		return 0, st
	}

	if st := w.Uint(1); st != ctap2.StatusOK { // versions
		return 0, st
	}
	if st := w.Array(1); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("FIDO_2_0"); st != ctap2.StatusOK {
		return 0, st
	}

	if st := w.Uint(3); st != ctap2.StatusOK { // aaguid
		return 0, st
	}
	if st := w.ByteString(ctap2.AAGUID[:]); st != ctap2.StatusOK {
		return 0, st
	}

	if st := w.Uint(4); st != ctap2.StatusOK { // options
		return 0, st
	}
	if st := w.Map(4); st != ctap2.StatusOK {
		return 0, st
	}
	if st := writeOption(w, "rk", false); st != ctap2.StatusOK {
		return 0, st
	}
	if st := writeOption(w, "up", true); st != ctap2.StatusOK {
		return 0, st
	}
	if st := writeOption(w, "uv", false); st != ctap2.StatusOK {
		return 0, st
	}
	if st := writeOption(w, "plat", false); st != ctap2.StatusOK {
		return 0, st
	}

	if st := w.Uint(5); st != ctap2.StatusOK { // maxMsgSize
		return 0, st
	}
	if st := w.Uint(ctap2.MaxMsgSize); st != ctap2.StatusOK {
		return 0, st
	}

	if st := w.Uint(10); st != ctap2.StatusOK { // pubKeyCredAlgorithms
		return 0, st
	}
	if st := w.Array(1); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Map(2); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("alg"); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Int(ctap2.ES256Alg); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("type"); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("public-key"); st != ctap2.StatusOK {
		return 0, st
	}

	return w.Len(), ctap2.StatusOK
}

func writeOption(w *cbor.Writer, name string, value bool) ctap2.Status {
	if st := w.TextString(name); st != ctap2.StatusOK {
		return st
	}
	return w.Bool(value)
}

package core

import "github.com/roottap/firmware-core/internal/ctap2"

// Dispatch routes one CTAP2 request (a command byte followed by a CBOR
// payload) to its handler and returns the number of bytes written to resp
// (including the leading status byte) on success. On error it returns the
// failing status and resp's contents are undefined beyond whatever a
// partial handler run may have produced; the boundary adapter is
// responsible for treating any nonzero status as "nothing usable was
// written".
func Dispatch(ctx *Context, req []byte, resp []byte, rng RandomSource, gate PresenceGate) (int, ctap2.Status) {
	if len(req) == 0 {
		return 0, ctap2.StatusInvalidLength
	}
	if len(resp) == 0 {
		return 0, ctap2.StatusInvalidLength
	}

	cmd := req[0]
	payload := req[1:]

	resp[0] = byte(ctap2.StatusOK)

	var n int
	var st ctap2.Status

	switch cmd {
	case ctap2.CmdGetInfo:
		n, st = handleGetInfo(ctx, payload, resp[1:])
	case ctap2.CmdMakeCredential:
		n, st = handleMakeCredential(ctx, payload, resp[1:], rng, gate)
	case ctap2.CmdGetAssertion:
		n, st = handleGetAssertion(ctx, payload, resp[1:], rng, gate)
	case ctap2.CmdClientPIN, ctap2.CmdReset, ctap2.CmdSelection:
		// Acknowledged entry points this core does not implement; see
		// spec's PURPOSE & SCOPE for the intended PIN/reset/selection
		// commands this is a stand-in for.
		return 0, ctap2.StatusInvalidCommand
	default:
		return 0, ctap2.StatusInvalidCommand
	}

	if st != ctap2.StatusOK {
		return 0, st
	}

	return 1 + n, ctap2.StatusOK
}

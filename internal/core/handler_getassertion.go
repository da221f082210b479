package core

import (
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

const getAssertionAuthDataLen = ctap2.RPIDHashSize + 1 + 4

type getAssertionRequest struct {
	rpID           string
	clientDataHash [ctap2.ClientDataHashSize]byte
	credID         [ctap2.CredentialIDSize]byte
}

func parseGetAssertionRequest(data []byte) (getAssertionRequest, ctap2.Status) {
	var req getAssertionRequest
	r := cbor.NewReader(data)
	n, st := r.Map()
	if st != ctap2.StatusOK {
		return req, st
	}

	var haveRPID, haveClientHash, haveAllowList bool

	for i := 0; i < n; i++ {
		key, st := r.Uint()
		if st != ctap2.StatusOK {
			return req, st
		}
		switch key {
		case 1:
			id, st := r.TextString()
			if st != ctap2.StatusOK {
				return req, st
			}
			req.rpID = id
			haveRPID = true
		case 2:
			b, st := r.ByteString()
			if st != ctap2.StatusOK {
				return req, st
			}
			if len(b) != ctap2.ClientDataHashSize {
				return req, ctap2.StatusInvalidLength
			}
			copy(req.clientDataHash[:], b)
			haveClientHash = true
		case 3:
			count, st := r.Array()
			if st != ctap2.StatusOK {
				return req, st
			}
			if count < 1 {
				return req, ctap2.StatusMissingParameter
			}
			credID, st := parseCredentialDescriptor(r)
			if st != ctap2.StatusOK {
				return req, st
			}
			req.credID = credID
			for i := 1; i < count; i++ {
				if st := r.Skip(); st != ctap2.StatusOK {
					return req, st
				}
			}
			haveAllowList = true
		default:
			if st := r.Skip(); st != ctap2.StatusOK {
				return req, st
			}
		}
	}

	switch {
	case !haveRPID, !haveClientHash, !haveAllowList:
		return req, ctap2.StatusMissingParameter
	}

	return req, ctap2.StatusOK
}

// handleGetAssertion implements authenticatorGetAssertion: locate the
// matching credential, gate on user presence, advance the sign counter,
// and sign authData||clientDataHash with the credential's private key.
func handleGetAssertion(ctx *Context, data []byte, out []byte, rng RandomSource, gate PresenceGate) (int, ctap2.Status) {
	req, st := parseGetAssertionRequest(data)
	if st != ctap2.StatusOK {
		return 0, st
	}

	rpHash := rpIDHash(req.rpID)
	cred, st := ctx.findCredential(req.credID, rpHash)
	if st != ctap2.StatusOK {
		return 0, st
	}

	if st := gate.Wait(); st != ctap2.StatusOK {
		return 0, st
	}

	newSignCount := cred.SignCount + 1 // wraps around at 2^32 by unsigned overflow

	var authData [getAssertionAuthDataLen]byte
	copy(authData[:ctap2.RPIDHashSize], rpHash[:])
	authData[ctap2.RPIDHashSize] = flagUP
	authData[ctap2.RPIDHashSize+1] = byte(newSignCount >> 24)
	authData[ctap2.RPIDHashSize+2] = byte(newSignCount >> 16)
	authData[ctap2.RPIDHashSize+3] = byte(newSignCount >> 8)
	authData[ctap2.RPIDHashSize+4] = byte(newSignCount)

	signedData := make([]byte, 0, len(authData)+len(req.clientDataHash))
	signedData = append(signedData, authData[:]...)
	signedData = append(signedData, req.clientDataHash[:]...)

	priv := privateKeyFromBytes(cred.PrivateKey)
	sig, err := signAssertion(priv, signedData, rng)
	if err != nil {
		return 0, ctap2.StatusOther
	}

	w := cbor.NewWriter(out)
	if st := w.Map(3); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Uint(1); st != ctap2.StatusOK { // credential descriptor
		return 0, st
	}
	if st := w.Map(2); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("id"); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.ByteString(req.credID[:]); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("type"); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.TextString("public-key"); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Uint(2); st != ctap2.StatusOK { // authData
		return 0, st
	}
	if st := w.ByteString(authData[:]); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Uint(3); st != ctap2.StatusOK { // signature
		return 0, st
	}
	if st := w.ByteString(sig); st != ctap2.StatusOK {
		return 0, st
	}

	cred.SignCount = newSignCount
	ctx.markDirty()

	return w.Len(), ctap2.StatusOK
}

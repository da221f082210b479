package core

import (
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

const (
	flagUP = 0x01
	flagUV = 0x04
	flagAT = 0x40
)

type makeCredentialRequest struct {
	clientDataHash [ctap2.ClientDataHashSize]byte
	rpID           string
	userID         [ctap2.MaxUserIDSize]byte
	userIDLen      uint8
	opts           options
}

func parseMakeCredentialRequest(data []byte) (makeCredentialRequest, ctap2.Status) {
	var req makeCredentialRequest
	req.opts = defaultOptions()

	r := cbor.NewReader(data)
	n, st := r.Map()
	if st != ctap2.StatusOK {
		return req, st
	}

	var haveClientHash, haveRP, haveUser, havePubKeyParams, algAccepted bool

	for i := 0; i < n; i++ {
		key, st := r.Uint()
		if st != ctap2.StatusOK {
			return req, st
		}
		switch key {
		case 1:
			b, st := r.ByteString()
			if st != ctap2.StatusOK {
				return req, st
			}
			if len(b) != ctap2.ClientDataHashSize {
				return req, ctap2.StatusInvalidLength
			}
			copy(req.clientDataHash[:], b)
			haveClientHash = true
		case 2:
			id, st := parseRP(r)
			if st != ctap2.StatusOK {
				return req, st
			}
			req.rpID = id
			haveRP = true
		case 3:
			id, idLen, st := parseUser(r)
			if st != ctap2.StatusOK {
				return req, st
			}
			req.userID, req.userIDLen = id, idLen
			haveUser = true
		case 4:
			ok, st := parsePubKeyCredParams(r)
			if st != ctap2.StatusOK {
				return req, st
			}
			algAccepted = ok
			havePubKeyParams = true
		case 7:
			opts, st := parseOptions(r)
			if st != ctap2.StatusOK {
				return req, st
			}
			req.opts = opts
		default:
			if st := r.Skip(); st != ctap2.StatusOK {
				return req, st
			}
		}
	}

	switch {
	case !haveClientHash, !haveRP, !haveUser, !havePubKeyParams:
		return req, ctap2.StatusMissingParameter
	case !algAccepted:
		return req, ctap2.StatusUnsupportedAlgorithm
	}

	return req, ctap2.StatusOK
}

// handleMakeCredential implements authenticatorMakeCredential: it mutates
// the credential store only after the new credential, its authData, and
// its COSE public key have all been built successfully (the staging
// pattern), and it never writes to the store on an error path.
func handleMakeCredential(ctx *Context, data []byte, out []byte, rng RandomSource, gate PresenceGate) (int, ctap2.Status) {
	req, st := parseMakeCredentialRequest(data)
	if st != ctap2.StatusOK {
		return 0, st
	}

	slot, st := ctx.allocSlot()
	if st != ctap2.StatusOK {
		return 0, st
	}

	priv, err := generateP256Key(rng)
	if err != nil {
		return 0, ctap2.StatusOther
	}

	var credID [ctap2.CredentialIDSize]byte
	if err := rng.FillRandom(credID[:]); err != nil {
		return 0, ctap2.StatusOther
	}

	var staged Credential
	staged.InUse = true
	staged.SignCount = 0
	staged.RPIDHash = rpIDHash(req.rpID)
	staged.CredID = credID
	staged.UserID = req.userID
	staged.UserIDLen = req.userIDLen
	priv.D.FillBytes(staged.PrivateKey[:])

	coseKey := make([]byte, 256)
	coseWriter := cbor.NewWriter(coseKey)
	if st := encodeCOSEKey(&priv.PublicKey, coseWriter); st != ctap2.StatusOK {
		return 0, st
	}

	flags := byte(flagAT | flagUP)
	if req.opts.uv {
		flags |= flagUV
	}

	authData := make([]byte, 512)
	authLen, st := buildMakeCredentialAuthData(staged.RPIDHash, flags, staged.SignCount, credID, coseWriter.Bytes(), authData)
	if st != ctap2.StatusOK {
		return 0, st
	}

	if req.opts.up {
		if st := gate.Wait(); st != ctap2.StatusOK {
			return 0, st
		}
	}

	*slot = staged
	ctx.markDirty()

	w := cbor.NewWriter(out)
	if st := w.Map(3); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Uint(1); st != ctap2.StatusOK { // fmt
		return 0, st
	}
	if st := w.TextString("none"); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Uint(2); st != ctap2.StatusOK { // authData
		return 0, st
	}
	if st := w.ByteString(authData[:authLen]); st != ctap2.StatusOK {
		return 0, st
	}
	if st := w.Uint(3); st != ctap2.StatusOK { // attStmt
		return 0, st
	}
	if st := w.Map(0); st != ctap2.StatusOK {
		return 0, st
	}

	*slot = staged
	ctx.markDirty()

	return w.Len(), ctap2.StatusOK
}

func buildMakeCredentialAuthData(rpIDHash [ctap2.RPIDHashSize]byte, flags byte, signCount uint32, credID [ctap2.CredentialIDSize]byte, coseKey []byte, out []byte) (int, ctap2.Status) {
	need := ctap2.RPIDHashSize + 1 + 4 + 16 + 2 + len(credID) + len(coseKey)
	if len(out) < need {
		return 0, ctap2.StatusInvalidLength
	}

	n := 0
	n += copy(out[n:], rpIDHash[:])

	out[n] = flags
	n++

	out[n] = byte(signCount >> 24)
	out[n+1] = byte(signCount >> 16)
	out[n+2] = byte(signCount >> 8)
	out[n+3] = byte(signCount)
	n += 4

	n += copy(out[n:], ctap2.AAGUID[:])

	out[n] = byte(len(credID) >> 8)
	out[n+1] = byte(len(credID))
	n += 2

	n += copy(out[n:], credID[:])
	n += copy(out[n:], coseKey)

	return n, ctap2.StatusOK
}

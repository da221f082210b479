package core

import (
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

// parseRP reads an rp map, requiring a text "id" sub-key. Other sub-keys
// are skipped.
func parseRP(r *cbor.Reader) (string, ctap2.Status) {
	n, st := r.Map()
	if st != ctap2.StatusOK {
		return "", st
	}
	var id string
	var have bool
	for i := 0; i < n; i++ {
		key, st := r.TextString()
		if st != ctap2.StatusOK {
			return "", st
		}
		switch key {
		case "id":
			id, st = r.TextString()
			if st != ctap2.StatusOK {
				return "", st
			}
			have = true
		default:
			if st := r.Skip(); st != ctap2.StatusOK {
				return "", st
			}
		}
	}
	if !have {
		return "", ctap2.StatusMissingParameter
	}
	return id, ctap2.StatusOK
}

// parseUser reads a user map, requiring a byte-string "id" sub-key of
// length 1-32. Other sub-keys are skipped.
func parseUser(r *cbor.Reader) ([ctap2.MaxUserIDSize]byte, uint8, ctap2.Status) {
	var id [ctap2.MaxUserIDSize]byte
	n, st := r.Map()
	if st != ctap2.StatusOK {
		return id, 0, st
	}
	var idLen uint8
	var have bool
	for i := 0; i < n; i++ {
		key, st := r.TextString()
		if st != ctap2.StatusOK {
			return id, 0, st
		}
		switch key {
		case "id":
			raw, st := r.ByteString()
			if st != ctap2.StatusOK {
				return id, 0, st
			}
			if len(raw) == 0 || len(raw) > ctap2.MaxUserIDSize {
				return id, 0, ctap2.StatusInvalidLength
			}
			copy(id[:], raw)
			idLen = uint8(len(raw))
			have = true
		default:
			if st := r.Skip(); st != ctap2.StatusOK {
				return id, 0, st
			}
		}
	}
	if !have {
		return id, 0, ctap2.StatusMissingParameter
	}
	return id, idLen, ctap2.StatusOK
}

// parsePubKeyCredParams reads the pubKeyCredParams array and reports
// whether at least one entry names ES256/"public-key".
func parsePubKeyCredParams(r *cbor.Reader) (bool, ctap2.Status) {
	n, st := r.Array()
	if st != ctap2.StatusOK {
		return false, st
	}
	found := false
	for i := 0; i < n; i++ {
		mn, st := r.Map()
		if st != ctap2.StatusOK {
			return false, st
		}
		var alg int64
		var typ string
		var hasAlg, hasType bool
		for j := 0; j < mn; j++ {
			key, st := r.TextString()
			if st != ctap2.StatusOK {
				return false, st
			}
			switch key {
			case "alg":
				alg, st = r.Int()
				if st != ctap2.StatusOK {
					return false, st
				}
				hasAlg = true
			case "type":
				typ, st = r.TextString()
				if st != ctap2.StatusOK {
					return false, st
				}
				hasType = true
			default:
				if st := r.Skip(); st != ctap2.StatusOK {
					return false, st
				}
			}
		}
		if hasAlg && hasType && alg == ctap2.ES256Alg && typ == "public-key" {
			found = true
		}
	}
	return found, ctap2.StatusOK
}

// options carries the (up, uv, rk) option booleans, defaulted per spec.
type options struct {
	up, uv, rk bool
}

func defaultOptions() options {
	return options{up: true, uv: false, rk: false}
}

// parseOptions reads the options map, starting from defaults and
// overriding whichever booleans are present. Unknown sub-keys are
// skipped.
func parseOptions(r *cbor.Reader) (options, ctap2.Status) {
	opts := defaultOptions()
	n, st := r.Map()
	if st != ctap2.StatusOK {
		return opts, st
	}
	for i := 0; i < n; i++ {
		key, st := r.TextString()
		if st != ctap2.StatusOK {
			return opts, st
		}
		switch key {
		case "up":
			v, st := r.Bool()
			if st != ctap2.StatusOK {
				return opts, st
			}
			opts.up = v
		case "uv":
			v, st := r.Bool()
			if st != ctap2.StatusOK {
				return opts, st
			}
			opts.uv = v
		case "rk":
			v, st := r.Bool()
			if st != ctap2.StatusOK {
				return opts, st
			}
			opts.rk = v
		default:
			if st := r.Skip(); st != ctap2.StatusOK {
				return opts, st
			}
		}
	}
	return opts, ctap2.StatusOK
}

// parseCredentialDescriptor reads a descriptor map, requiring "type" to be
// "public-key" and "id" to be exactly CredentialIDSize bytes.
func parseCredentialDescriptor(r *cbor.Reader) ([ctap2.CredentialIDSize]byte, ctap2.Status) {
	var credID [ctap2.CredentialIDSize]byte
	n, st := r.Map()
	if st != ctap2.StatusOK {
		return credID, st
	}
	var typ string
	var hasType, hasID bool
	for i := 0; i < n; i++ {
		key, st := r.TextString()
		if st != ctap2.StatusOK {
			return credID, st
		}
		switch key {
		case "type":
			typ, st = r.TextString()
			if st != ctap2.StatusOK {
				return credID, st
			}
			hasType = true
		case "id":
			raw, st := r.ByteString()
			if st != ctap2.StatusOK {
				return credID, st
			}
			if len(raw) != ctap2.CredentialIDSize {
				return credID, ctap2.StatusInvalidLength
			}
			copy(credID[:], raw)
			hasID = true
		default:
			if st := r.Skip(); st != ctap2.StatusOK {
				return credID, st
			}
		}
	}
	if !hasType {
		return credID, ctap2.StatusMissingParameter
	}
	if typ != "public-key" {
		return credID, ctap2.StatusInvalidParameter
	}
	if !hasID {
		return credID, ctap2.StatusMissingParameter
	}
	return credID, ctap2.StatusOK
}

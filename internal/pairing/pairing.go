// Package pairing renders a QR code a companion app scans to discover the
// simulated authenticator, adapted from the teacher's pkg/qrcode: the same
// hand-rolled definite-length CBOR map and digit-encoding technique,
// carrying this core's AAGUID and a per-run pairing nonce instead of a
// caBLE v2 handshake key.
package pairing

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/roottap/firmware-core/internal/ctap2"
)

// nonceSize is the length of the pairing nonce embedded in the QR payload.
const nonceSize = 16

// Code is a rendered pairing QR code together with the URI it encodes.
type Code struct {
	URI   string
	Nonce [nonceSize]byte
	art   string
}

// Generate builds a new pairing code for aaguid: a fresh random nonce,
// a hand-rolled CBOR map of {0: aaguid, 1: nonce}, digit-encoded the way
// the teacher's digitEncode does for caBLE v2, and rendered as an ASCII
// QR code.
func Generate(aaguid [16]byte) (*Code, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("pairing: generate nonce: %w", err)
	}

	payload := encodePairingCBOR(aaguid, nonce)
	uri := "ROOTTAP:/" + digitEncode(payload)

	qr, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("pairing: render qr: %w", err)
	}

	return &Code{URI: uri, Nonce: nonce, art: qr.ToSmallString(false)}, nil
}

// Art returns the terminal-printable QR code.
func (c *Code) Art() string {
	return c.art
}

// encodePairingCBOR builds a definite-length CBOR map {0: bytes(16),
// 1: bytes(16)} by hand, the same byte-at-a-time style as the teacher's
// encodeQRContents, since the pairing payload is fixed-shape and doesn't
// need a general encoder.
func encodePairingCBOR(aaguid, nonce [16]byte) []byte {
	const cborMajorByteString = 2

	var out []byte
	out = append(out, 0xa0|2) // map(2)
	out = append(out, 0)      // key 0
	out = append(out, (cborMajorByteString<<5)|16)
	out = append(out, aaguid[:]...)
	out = append(out, 1) // key 1
	out = append(out, (cborMajorByteString<<5)|16)
	out = append(out, nonce[:]...)
	return out
}

// digitEncode packs bytes into decimal digit runs, 7 bytes per 17-digit
// chunk, matching the teacher's pkg/qrcode.digitEncode exactly (caBLE v2
// QR payloads use this packing so the URI stays digits-only).
func digitEncode(d []byte) string {
	const chunkSize = 7
	const chunkDigits = 17
	const zeros = "00000000000000000"

	var ret string
	for len(d) >= chunkSize {
		var chunk [8]byte
		copy(chunk[:], d[:chunkSize])
		v := strconv.FormatUint(binary.LittleEndian.Uint64(chunk[:]), 10)
		ret += zeros[:chunkDigits-len(v)]
		ret += v
		d = d[chunkSize:]
	}

	if len(d) != 0 {
		const partialChunkDigits = 0x0fda8530
		digits := 15 & (partialChunkDigits >> (4 * len(d)))
		var chunk [8]byte
		copy(chunk[:], d)
		v := strconv.FormatUint(binary.LittleEndian.Uint64(chunk[:]), 10)
		ret += zeros[:digits-len(v)]
		ret += v
	}

	return ret
}

// DeviceAAGUID is a convenience re-export so callers don't need to import
// internal/ctap2 solely to print the authenticator's identity alongside
// the pairing code.
var DeviceAAGUID = ctap2.AAGUID

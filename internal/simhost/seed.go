// Package simhost is the host side of the simulator: it supplies the
// RandomSource and PresenceGate the engine borrows for the duration of a
// call, derives a stable device seed, and exposes the engine over a
// loopback websocket so a real WebAuthn client can drive it without USB
// or BLE hardware.
package simhost

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// keyPurposeDeviceSeed mirrors the teacher's keyPurposeTunnelID-style
// purpose tagging in pkg/tunnel.deriveTunnelID: a small integer tag mixed
// into the HKDF info parameter so different derived values never collide
// even when derived from the same passphrase.
const keyPurposeDeviceSeed = 1

// DeriveDeviceSeed derives a stable 32-byte device seed from an
// operator-supplied passphrase, the same HKDF-SHA256 construction the
// teacher's pkg/tunnel uses for its tunnel ID and handshake keys. A fixed
// passphrase always yields the same seed, letting an operator reuse one
// simulated device identity across runs without persisting key material
// on disk.
func DeriveDeviceSeed(passphrase []byte) ([32]byte, error) {
	var seed [32]byte
	info := []byte{keyPurposeDeviceSeed}
	r := hkdf.New(sha256.New, passphrase, nil, info)
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return seed, fmt.Errorf("simhost: derive device seed: %w", err)
	}
	return seed, nil
}

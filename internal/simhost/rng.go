package simhost

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// CSPRNGSource is the engine's default RandomSource: crypto/rand.Reader
// treated as the shared, thread-safe entropy sink the spec describes
// (§5, Shared resources).
type CSPRNGSource struct{}

// FillRandom fills dst with cryptographically secure random bytes.
func (CSPRNGSource) FillRandom(dst []byte) error {
	_, err := io.ReadFull(rand.Reader, dst)
	return err
}

// SeededSource is a reproducible RandomSource for demos and scripted
// integration tests: every byte it ever returns comes from one HKDF-SHA256
// expansion of a device seed (see DeriveDeviceSeed), so the same
// passphrase always produces the same sequence of credentials. It is
// explicitly unsuitable for anything but simulation — a real
// authenticator must use CSPRNGSource.
type SeededSource struct {
	r io.Reader
}

// NewSeededSource builds a SeededSource from a device seed.
func NewSeededSource(seed [32]byte) *SeededSource {
	return &SeededSource{r: hkdf.Expand(sha256.New, seed[:], []byte("simhost rng stream"))}
}

// FillRandom fills dst with the next bytes of the HKDF expansion. HKDF's
// expand step is limited to 255 hash-output lengths (8160 bytes for
// SHA-256); once that budget is exhausted every call fails with the hkdf
// reader's entropy-limit error, wrapped.
func (s *SeededSource) FillRandom(dst []byte) error {
	if _, err := io.ReadFull(s.r, dst); err != nil {
		return fmt.Errorf("simhost: seeded rng exhausted: %w", err)
	}
	return nil
}

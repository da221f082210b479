package core

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2/cbor"
)

// RandomSource is the host-supplied CSPRNG capability the spec treats as
// an environment capability rather than something the engine provides for
// itself: fill dst with cryptographically random bytes.
type RandomSource interface {
	FillRandom(dst []byte) error
}

// randReader adapts a RandomSource to io.Reader so it can feed the
// standard library's crypto/ecdsa primitives directly.
type randReader struct {
	src RandomSource
}

func (r randReader) Read(p []byte) (int, error) {
	if err := r.src.FillRandom(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func rpIDHash(rpID string) [ctap2.RPIDHashSize]byte {
	return sha256.Sum256([]byte(rpID))
}

// generateP256Key draws a fresh P-256 keypair from rng.
func generateP256Key(rng RandomSource) (*ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), randReader{rng})
	if err != nil {
		return nil, fmt.Errorf("generate P-256 key: %w", err)
	}
	return priv, nil
}

// privateKeyFromBytes reconstructs a P-256 private key from its raw
// 32-byte scalar, the form stored in a Credential record.
func privateKeyFromBytes(raw [ctap2.PrivateKeySize]byte) *ecdsa.PrivateKey {
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw[:])
	x, y := curve.ScalarBaseMult(raw[:])
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}
}

// encodeCOSEKey writes the COSE_Key public-key form for pub in the
// canonical key order the spec requires: 1 (kty), 3 (alg), -1 (crv),
// -2 (x), -3 (y).
func encodeCOSEKey(pub *ecdsa.PublicKey, w *cbor.Writer) ctap2.Status {
	var x, y [32]byte
	pub.X.FillBytes(x[:])
	pub.Y.FillBytes(y[:])

	if st := w.Map(5); st != ctap2.StatusOK {
		return st
	}
	if st := w.Uint(1); st != ctap2.StatusOK { // kty
		return st
	}
	if st := w.Uint(2); st != ctap2.StatusOK { // EC2
		return st
	}
	if st := w.Int(3); st != ctap2.StatusOK { // alg
		return st
	}
	if st := w.Int(ctap2.ES256Alg); st != ctap2.StatusOK {
		return st
	}
	if st := w.Int(-1); st != ctap2.StatusOK { // crv
		return st
	}
	if st := w.Uint(1); st != ctap2.StatusOK { // P-256
		return st
	}
	if st := w.Int(-2); st != ctap2.StatusOK { // x
		return st
	}
	if st := w.ByteString(x[:]); st != ctap2.StatusOK {
		return st
	}
	if st := w.Int(-3); st != ctap2.StatusOK { // y
		return st
	}
	return w.ByteString(y[:])
}

// signAssertion computes an ECDSA P-256 signature over SHA-256(message)
// using the credential's private key, encoded as ASN.1 DER.
func signAssertion(priv *ecdsa.PrivateKey, message []byte, rng RandomSource) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig, err := ecdsa.SignASN1(randReader{rng}, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign assertion: %w", err)
	}
	return sig, nil
}

var _ io.Reader = randReader{}

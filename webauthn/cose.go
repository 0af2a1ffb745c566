package webauthn

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/go-passkeys/go-passkeys/internal/cbor"
)

// COSE key type values.
//
// https://www.iana.org/assignments/cose/cose.xhtml#key-type
const (
	coseKeyTypeOKP = 1
	coseKeyTypeEC2 = 2
)

// COSE elliptic curve values.
//
// https://www.iana.org/assignments/cose/cose.xhtml#elliptic-curves
const (
	coseCurveP256   = 1
	coseCurveEd25519 = 6
)

// coseKey is the CBOR wire representation of a COSE_Key, using the integer
// labels from the COSE registry. Map key order is canonicalized by the
// internal/cbor encoder, not by struct field order.
type coseKey struct {
	Kty int    `cbor:"1,keyasint"`
	Alg int    `cbor:"3,keyasint"`
	Crv int    `cbor:"-1,keyasint,omitempty"`
	X   []byte `cbor:"-2,keyasint,omitempty"`
	Y   []byte `cbor:"-3,keyasint,omitempty"`
}

// PublicKey pairs a parsed crypto.PublicKey with the COSE algorithm it was
// registered under.
type PublicKey struct {
	Algorithm Algorithm
	Public    crypto.PublicKey
}

// EncodePublicKey renders pub as canonical CBOR COSE_Key bytes, suitable for
// embedding in attestedCredentialData.
func EncodePublicKey(alg Algorithm, pub crypto.PublicKey) ([]byte, error) {
	switch alg {
	case ES256:
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("webauthn: ES256 requires an ECDSA public key, got %T", pub)
		}
		size := (ecdsaPub.Curve.Params().BitSize + 7) / 8
		return cbor.Marshal(coseKey{
			Kty: coseKeyTypeEC2,
			Alg: int(ES256),
			Crv: coseCurveP256,
			X:   ecdsaPub.X.FillBytes(make([]byte, size)),
			Y:   ecdsaPub.Y.FillBytes(make([]byte, size)),
		})
	case EdDSA:
		edPub, ok := pub.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("webauthn: EdDSA requires an Ed25519 public key, got %T", pub)
		}
		return cbor.Marshal(coseKey{
			Kty: coseKeyTypeOKP,
			Alg: int(EdDSA),
			Crv: coseCurveEd25519,
			X:   []byte(edPub),
		})
	default:
		return nil, fmt.Errorf("webauthn: cannot encode public key for algorithm %s", alg)
	}
}

// DecodePublicKey parses a leading COSE_Key from b and returns it alongside
// the number of bytes consumed (since it may be followed by extension CBOR).
func DecodePublicKey(b []byte) (*PublicKey, int, error) {
	var key coseKey
	rest, err := cbor.UnmarshalFirst(b, &key)
	if err != nil {
		return nil, 0, fmt.Errorf("webauthn: decoding COSE key: %w", err)
	}
	consumed := len(b) - len(rest)

	switch key.Kty {
	case coseKeyTypeEC2:
		if key.Crv != coseCurveP256 {
			return nil, 0, fmt.Errorf("webauthn: unsupported EC2 curve %d", key.Crv)
		}
		pub := &ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(key.X),
			Y:     new(big.Int).SetBytes(key.Y),
		}
		return &PublicKey{Algorithm: Algorithm(key.Alg), Public: pub}, consumed, nil
	case coseKeyTypeOKP:
		if key.Crv != coseCurveEd25519 {
			return nil, 0, fmt.Errorf("webauthn: unsupported OKP curve %d", key.Crv)
		}
		return &PublicKey{Algorithm: Algorithm(key.Alg), Public: ed25519.PublicKey(key.X)}, consumed, nil
	default:
		return nil, 0, fmt.Errorf("webauthn: unsupported COSE key type %d", key.Kty)
	}
}

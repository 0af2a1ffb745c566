// Package webauthn holds the wire types shared by the client and the
// authenticator: COSE algorithms and keys, CollectedClientData, the binary
// AuthenticatorData envelope, and attestation objects.
//
// https://www.w3.org/TR/webauthn-3/
package webauthn

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
)

// Algorithm identifies both a public key scheme and its associated hash
// function, using the COSE algorithm registry.
//
// https://www.w3.org/TR/webauthn-3/#typedefdef-cosealgorithmidentifier
// https://www.iana.org/assignments/cose/cose.xhtml#algorithms
type Algorithm int

// The algorithms this package recognizes. Only ES256 and EdDSA are ever
// selected by the Authenticator; the others are retained so callers can
// identify third-party public keys by value.
const (
	ES256 Algorithm = -7
	ES384 Algorithm = -35
	ES512 Algorithm = -36
	EdDSA Algorithm = -8
	RS256 Algorithm = -257
	RS384 Algorithm = -258
	RS512 Algorithm = -259
)

var algStrings = map[Algorithm]string{
	ES256: "ES256",
	ES384: "ES384",
	ES512: "ES512",
	EdDSA: "EdDSA",
	RS256: "RS256",
	RS384: "RS384",
	RS512: "RS512",
}

// String returns a human readable representation of the algorithm.
func (a Algorithm) String() string {
	if s, ok := algStrings[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(0x%x)", int(a))
}

// Supported reports whether the Authenticator in this package is able to
// generate keys and sign with this algorithm. ES256 is mandatory, EdDSA is
// optional but supported; everything else (including RS256) is not.
func (a Algorithm) Supported() bool {
	return a == ES256 || a == EdDSA
}

// GenerateKey creates a new private key for the given algorithm. Only ES256
// and EdDSA are supported.
func GenerateKey(alg Algorithm) (crypto.Signer, error) {
	switch alg {
	case ES256:
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case EdDSA:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, err
	default:
		return nil, fmt.Errorf("webauthn: unsupported algorithm for key generation: %s", alg)
	}
}

// Sign produces a signature over data using priv, per alg's rules. ES256
// signatures are ASN.1 DER encoded, matching the WebAuthn/CTAP2 wire format.
func Sign(priv crypto.Signer, alg Algorithm, data []byte) ([]byte, error) {
	switch alg {
	case ES256:
		ecdsaPriv, ok := priv.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("webauthn: invalid private key type for ES256: %T", priv)
		}
		h := sha256.Sum256(data)
		return ecdsa.SignASN1(rand.Reader, ecdsaPriv, h[:])
	case EdDSA:
		ed25519Priv, ok := priv.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("webauthn: invalid private key type for EdDSA: %T", priv)
		}
		return ed25519.Sign(ed25519Priv, data), nil
	default:
		return nil, fmt.Errorf("webauthn: unsupported signing algorithm: %s", alg)
	}
}

// VerifySignature is a low-level API used to validate raw signatures for a
// given COSE algorithm.
func VerifySignature(pub crypto.PublicKey, alg Algorithm, data, sig []byte) error {
	switch alg {
	case ES256:
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("webauthn: invalid public key type for ES256 algorithm: %T", pub)
		}
		h := sha256.Sum256(data)
		if !ecdsa.VerifyASN1(ecdsaPub, h[:], sig) {
			return fmt.Errorf("webauthn: invalid ES256 signature")
		}
	case ES384:
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("webauthn: invalid public key type for ES384 algorithm: %T", pub)
		}
		h := sha512.Sum384(data)
		if !ecdsa.VerifyASN1(ecdsaPub, h[:], sig) {
			return fmt.Errorf("webauthn: invalid ES384 signature")
		}
	case ES512:
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("webauthn: invalid public key type for ES512 algorithm: %T", pub)
		}
		h := sha512.Sum512(data)
		if !ecdsa.VerifyASN1(ecdsaPub, h[:], sig) {
			return fmt.Errorf("webauthn: invalid ES512 signature")
		}
	case EdDSA:
		ed25519Pub, ok := pub.(ed25519.PublicKey)
		if !ok {
			return fmt.Errorf("webauthn: invalid public key type for EdDSA algorithm: %T", pub)
		}
		if !ed25519.Verify(ed25519Pub, data, sig) {
			return fmt.Errorf("webauthn: invalid EdDSA signature")
		}
	default:
		return fmt.Errorf("webauthn: unsupported signing algorithm: %s", alg)
	}
	return nil
}

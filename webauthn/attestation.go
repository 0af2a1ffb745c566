package webauthn

import (
	"crypto"
	"fmt"

	"github.com/go-passkeys/go-passkeys/internal/cbor"
)

// Attestation statement format identifiers this package produces.
//
// https://www.w3.org/TR/webauthn-3/#sctn-defined-attestation-formats
const (
	AttestationFormatNone   = "none"
	AttestationFormatPacked = "packed"
)

// AttestationObject is the CBOR-encoded {fmt, attStmt, authData} map
// returned from a successful registration.
type AttestationObject struct {
	Format                string `cbor:"fmt"`
	AttestationStatement  cbor.RawMessage `cbor:"attStmt"`
	AuthenticatorData     []byte `cbor:"authData"`
}

// packedAttestationStatement is the attStmt shape for self-attestation: a
// signature over authData‖clientDataHash using the credential's own key, so
// alg identifies the credential's own algorithm and no certificate chain is
// present.
//
// https://www.w3.org/TR/webauthn-3/#sctn-packed-attestation
type packedAttestationStatement struct {
	Alg int    `cbor:"alg"`
	Sig []byte `cbor:"sig"`
}

// BuildNoneAttestation produces an AttestationObject with an empty attStmt.
func BuildNoneAttestation(authData []byte) ([]byte, error) {
	stmt, err := cbor.Marshal(map[string]any{})
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(AttestationObject{
		Format:               AttestationFormatNone,
		AttestationStatement: stmt,
		AuthenticatorData:    authData,
	})
}

// BuildPackedSelfAttestation produces a "packed" self-attestation: it signs
// authData‖clientDataHash with the credential's own private key using alg,
// and carries no certificate chain (self-attestation only, per spec scope).
func BuildPackedSelfAttestation(priv crypto.Signer, alg Algorithm, authData, clientDataHash []byte) ([]byte, error) {
	signed := make([]byte, 0, len(authData)+len(clientDataHash))
	signed = append(signed, authData...)
	signed = append(signed, clientDataHash...)

	sig, err := Sign(priv, alg, signed)
	if err != nil {
		return nil, fmt.Errorf("webauthn: signing packed attestation: %w", err)
	}

	stmt, err := cbor.Marshal(packedAttestationStatement{Alg: int(alg), Sig: sig})
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(AttestationObject{
		Format:               AttestationFormatPacked,
		AttestationStatement: stmt,
		AuthenticatorData:    authData,
	})
}

// ParseAttestationObject parses the CBOR bytes returned from a credential
// creation ceremony.
func ParseAttestationObject(b []byte) (*AttestationObject, error) {
	var obj AttestationObject
	if err := cbor.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("webauthn: parsing attestation object: %w", err)
	}
	if len(obj.AuthenticatorData) == 0 {
		return nil, fmt.Errorf("webauthn: attestation object has no authData")
	}
	return &obj, nil
}

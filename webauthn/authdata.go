package webauthn

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/go-passkeys/go-passkeys/internal/cbor"
)

// AttestedCredentialData is present on the authData produced by a
// registration ceremony: the authenticator's identity, the new credential's
// ID, and its public key.
type AttestedCredentialData struct {
	AAGUID       AAGUID
	CredentialID []byte
	PublicKey    *PublicKey
}

// AuthenticatorData is the signed binary envelope carrying rpIdHash, flags,
// the signature counter, and (on registration) the new public key.
//
// Bit-exact wire layout:
//
//	rpIdHash (32)  ‖  flags (1)  ‖  signCount (4, BE)  ‖
//	[attestedCredentialData]  ‖  [extensions]
//
// https://www.w3.org/TR/webauthn-3/#sctn-authenticator-data
type AuthenticatorData struct {
	RPIDHash                [32]byte
	Flags                   Flags
	SignCount               uint32
	AttestedCredentialData  *AttestedCredentialData
	Extensions              []byte // raw CBOR map, or nil
}

// NewAuthenticatorData builds an AuthenticatorData for rpID with the given
// flags and counter. Attested credential data and extensions are attached
// via the returned value's fields.
func NewAuthenticatorData(rpID string, flags Flags, signCount uint32) *AuthenticatorData {
	return &AuthenticatorData{
		RPIDHash:  sha256.Sum256([]byte(rpID)),
		Flags:     flags,
		SignCount: signCount,
	}
}

// RPIDHashBytes returns the rpIdHash as a slice.
func (a *AuthenticatorData) RPIDHashBytes() []byte {
	return a.RPIDHash[:]
}

// Marshal renders the authenticator data to its exact binary wire form.
func (a *AuthenticatorData) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(a.RPIDHash[:])

	flags := a.Flags
	if a.AttestedCredentialData != nil {
		flags |= FlagAttestedCredentialData
	} else {
		flags &^= FlagAttestedCredentialData
	}
	if len(a.Extensions) > 0 {
		flags |= FlagExtensionData
	} else {
		flags &^= FlagExtensionData
	}
	buf.WriteByte(byte(flags))

	var counter [4]byte
	binary.BigEndian.PutUint32(counter[:], a.SignCount)
	buf.Write(counter[:])

	if a.AttestedCredentialData != nil {
		acd := a.AttestedCredentialData
		buf.Write(acd.AAGUID[:])

		if len(acd.CredentialID) > 0xffff {
			return nil, fmt.Errorf("webauthn: credential ID too long: %d bytes", len(acd.CredentialID))
		}
		var idLen [2]byte
		binary.BigEndian.PutUint16(idLen[:], uint16(len(acd.CredentialID)))
		buf.Write(idLen[:])
		buf.Write(acd.CredentialID)

		keyBytes, err := EncodePublicKey(acd.PublicKey.Algorithm, acd.PublicKey.Public)
		if err != nil {
			return nil, fmt.Errorf("webauthn: encoding attested public key: %w", err)
		}
		buf.Write(keyBytes)
	}

	if len(a.Extensions) > 0 {
		buf.Write(a.Extensions)
	}

	return buf.Bytes(), nil
}

// ParseAuthenticatorData parses authData into its fields, verifying that its
// rpIdHash matches SHA-256(rpID).
func ParseAuthenticatorData(rpID string, b []byte) (*AuthenticatorData, error) {
	ad, err := ParseAuthenticatorDataUnchecked(b)
	if err != nil {
		return nil, err
	}
	want := sha256.Sum256([]byte(rpID))
	if want != ad.RPIDHash {
		return nil, fmt.Errorf("webauthn: authenticator data doesn't match relying party ID")
	}
	return ad, nil
}

// ParseAuthenticatorDataUnchecked parses authData without validating the
// rpIdHash against a known RP ID, for callers that verify it separately.
func ParseAuthenticatorDataUnchecked(b []byte) (*AuthenticatorData, error) {
	var ad AuthenticatorData
	if len(b) < 32 {
		return nil, fmt.Errorf("webauthn: not enough bytes for rpid hash")
	}
	copy(ad.RPIDHash[:], b[:32])
	b = b[32:]

	if len(b) < 1 {
		return nil, fmt.Errorf("webauthn: not enough bytes for flags")
	}
	ad.Flags = Flags(b[0])
	b = b[1:]

	if len(b) < 4 {
		return nil, fmt.Errorf("webauthn: not enough bytes for counter")
	}
	ad.SignCount = binary.BigEndian.Uint32(b[:4])
	b = b[4:]

	if ad.Flags.AttestedCredentialData() {
		if len(b) < 16 {
			return nil, fmt.Errorf("webauthn: not enough bytes for aaguid")
		}
		var acd AttestedCredentialData
		copy(acd.AAGUID[:], b[:16])
		b = b[16:]

		if len(b) < 2 {
			return nil, fmt.Errorf("webauthn: not enough bytes for credential ID length")
		}
		idLen := int(binary.BigEndian.Uint16(b[:2]))
		b = b[2:]

		if len(b) < idLen {
			return nil, fmt.Errorf("webauthn: not enough bytes for credential ID")
		}
		acd.CredentialID = append([]byte(nil), b[:idLen]...)
		b = b[idLen:]

		pub, consumed, err := DecodePublicKey(b)
		if err != nil {
			return nil, fmt.Errorf("webauthn: parsing attested public key: %w", err)
		}
		acd.PublicKey = pub
		b = b[consumed:]
		ad.AttestedCredentialData = &acd
	}

	if ad.Flags.ExtensionData() {
		if len(b) == 0 {
			return nil, fmt.Errorf("webauthn: extension flag set but no extension data present")
		}
		ad.Extensions = append([]byte(nil), b...)
		b = nil
	}

	if len(b) != 0 {
		return nil, fmt.Errorf("webauthn: %d unexpected trailing bytes in authenticator data", len(b))
	}

	return &ad, nil
}

// MarshalExtensions is a convenience for building the extensions CBOR map
// from a Go value (usually a map[string]any).
func MarshalExtensions(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

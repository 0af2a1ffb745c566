// Package cbor wraps github.com/fxamacker/cbor/v2 with the deterministic
// encoding CTAP2 requires: sorted map keys (by length then byte value),
// definite-length items, and shortest-form integers.
//
// https://fidoalliance.org/specs/fido-v2.0-ps-20190130/fido-client-to-authenticator-protocol-v2.0-ps-20190130.html#ctap2-canonical-cbor-encoding-form
package cbor

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// RawMessage is a pre-encoded or to-be-decoded-later CBOR value.
type RawMessage = cbor.RawMessage

var encMode = mustCTAP2EncMode()

func mustCTAP2EncMode() cbor.EncMode {
	em, err := cbor.CTAP2EncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: building CTAP2 encode mode: %v", err))
	}
	return em
}

// Marshal encodes v using CTAP2 canonical CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CTAP2/CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// UnmarshalFirst decodes a single leading CBOR value from data into v and
// returns the unconsumed remainder, for parsing a sequence of concatenated
// CBOR items (as attestedCredentialData does: a COSE key optionally followed
// by an extensions map).
func UnmarshalFirst(data []byte, v any) (rest []byte, err error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return nil, err
	}
	return data[dec.NumBytesRead():], nil
}

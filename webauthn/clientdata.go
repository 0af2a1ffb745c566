package webauthn

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Bytes is opaque binary data that is base64url (no padding) encoded when it
// appears in JSON, matching clientDataJSON's challenge/user-handle encoding.
//
// https://www.w3.org/TR/webauthn-3/#dom-authenticatorresponse-clientdatajson
type Bytes []byte

// MarshalJSON encodes b as an unpadded base64url string.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.RawURLEncoding.EncodeToString(b))
}

// UnmarshalJSON decodes an unpadded base64url string into b.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("webauthn: bytes value doesn't parse into string: %w", err)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("webauthn: invalid base64url: %w", err)
	}
	*b = decoded
	return nil
}

// Equal reports whether b holds the same bytes as other, in constant time.
func (b Bytes) Equal(other []byte) bool {
	return subtle.ConstantTimeCompare([]byte(b), other) == 1
}

// String returns the unpadded base64url encoding of b.
func (b Bytes) String() string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// ClientDataType distinguishes a registration ceremony from an
// authentication ceremony.
type ClientDataType string

// The two ceremony types a client ever produces.
const (
	ClientDataTypeCreate ClientDataType = "webauthn.create"
	ClientDataTypeGet    ClientDataType = "webauthn.get"
)

// CollectedClientData is the JSON structure signed (by hash) during every
// ceremony. Key order on the wire is significant: type, challenge, origin,
// crossOrigin, then topOrigin (if present), then any caller-supplied
// ExtraData fields — MarshalJSON preserves this order exactly, since the
// bytes produced here are the same bytes later hashed and base64url-encoded
// as clientDataJSON.
//
// https://www.w3.org/TR/webauthn-3/#dictionary-client-data
type CollectedClientData struct {
	Type        ClientDataType
	Challenge   Bytes
	Origin      string
	CrossOrigin bool
	// TopOrigin is only written when non-empty, matching the optional
	// topOrigin field used in cross-origin iframe ceremonies.
	TopOrigin string
	// ExtraData, if non-nil, must marshal to a JSON object; its fields are
	// appended verbatim after the fixed keys above.
	ExtraData any
}

// MarshalJSON renders the client data with the exact key order the
// specification requires.
func (c CollectedClientData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeJSONField(&buf, "type", string(c.Type), true); err != nil {
		return nil, err
	}
	if err := writeJSONField(&buf, "challenge", c.Challenge, false); err != nil {
		return nil, err
	}
	if err := writeJSONField(&buf, "origin", c.Origin, false); err != nil {
		return nil, err
	}
	if err := writeJSONField(&buf, "crossOrigin", c.CrossOrigin, false); err != nil {
		return nil, err
	}
	if c.TopOrigin != "" {
		if err := writeJSONField(&buf, "topOrigin", c.TopOrigin, false); err != nil {
			return nil, err
		}
	}
	if c.ExtraData != nil {
		extra, err := json.Marshal(c.ExtraData)
		if err != nil {
			return nil, fmt.Errorf("webauthn: marshaling extra client data: %w", err)
		}
		inner := bytes.TrimSuffix(bytes.TrimPrefix(bytes.TrimSpace(extra), []byte("{")), []byte("}"))
		if len(inner) > 0 {
			buf.WriteByte(',')
			buf.Write(inner)
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONField(buf *bytes.Buffer, key string, value any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return err
	}
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("webauthn: marshaling client data field %q: %w", key, err)
	}
	buf.Write(keyJSON)
	buf.WriteByte(':')
	buf.Write(valueJSON)
	return nil
}

// UnmarshalJSON parses clientDataJSON, keeping any keys beyond the fixed set
// available via ExtraData as a map[string]json.RawMessage.
func (c *CollectedClientData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("webauthn: parsing client data: %w", err)
	}

	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &c.Type); err != nil {
			return fmt.Errorf("webauthn: parsing client data type: %w", err)
		}
		delete(raw, "type")
	}
	if v, ok := raw["challenge"]; ok {
		if err := json.Unmarshal(v, &c.Challenge); err != nil {
			return fmt.Errorf("webauthn: parsing client data challenge: %w", err)
		}
		delete(raw, "challenge")
	}
	if v, ok := raw["origin"]; ok {
		if err := json.Unmarshal(v, &c.Origin); err != nil {
			return fmt.Errorf("webauthn: parsing client data origin: %w", err)
		}
		delete(raw, "origin")
	}
	if v, ok := raw["crossOrigin"]; ok {
		if err := json.Unmarshal(v, &c.CrossOrigin); err != nil {
			return fmt.Errorf("webauthn: parsing client data crossOrigin: %w", err)
		}
		delete(raw, "crossOrigin")
	}
	if v, ok := raw["topOrigin"]; ok {
		if err := json.Unmarshal(v, &c.TopOrigin); err != nil {
			return fmt.Errorf("webauthn: parsing client data topOrigin: %w", err)
		}
		delete(raw, "topOrigin")
	}
	if len(raw) > 0 {
		c.ExtraData = raw
	}
	return nil
}

// ExtraDataAs unmarshals the leftover extra fields captured during
// UnmarshalJSON into v. It is only meaningful after parsing a clientDataJSON
// blob; it returns an error if no extra data was captured.
func (c *CollectedClientData) ExtraDataAs(v any) error {
	raw, ok := c.ExtraData.(map[string]json.RawMessage)
	if !ok {
		return fmt.Errorf("webauthn: no extra client data to decode")
	}
	merged, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, v)
}

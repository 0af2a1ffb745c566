package webauthn

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// AAGUID is the 16-byte authenticator model identifier embedded in attested
// credential data.
type AAGUID [16]byte

// NewAAGUID generates a random, version-4 AAGUID, suitable for identifying a
// particular software authenticator instance/build.
func NewAAGUID() AAGUID {
	var a AAGUID
	copy(a[:], uuid.New()[:])
	return a
}

// String renders the AAGUID in its canonical UUID form.
func (a AAGUID) String() string {
	return uuid.UUID(a).String()
}

// MarshalJSON renders the AAGUID as a hex string, matching FIDO metadata
// service conventions.
func (a AAGUID) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", hex.EncodeToString(a[:]))), nil
}

// UnmarshalJSON parses either a UUID-formatted or a bare hex string.
func (a *AAGUID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if id, err := uuid.Parse(s); err == nil {
		*a = AAGUID(id)
		return nil
	}
	data, err := hex.DecodeString(s)
	if err != nil || len(data) != 16 {
		return fmt.Errorf("webauthn: invalid aaguid %q", s)
	}
	copy(a[:], data)
	return nil
}

package webauthn

import (
	"fmt"
	"strings"
)

// Flags represents the authenticator data flags byte.
//
// https://www.w3.org/TR/webauthn-3/#authdata-flags
type Flags byte

// Flag bit values, authoritative per the data model.
const (
	FlagUserPresent            Flags = 1 << 0 // UP
	FlagUserVerified           Flags = 1 << 2 // UV
	FlagBackupEligible         Flags = 1 << 3 // BE
	FlagBackedUp               Flags = 1 << 4 // BS
	FlagAttestedCredentialData Flags = 1 << 6 // AT
	FlagExtensionData          Flags = 1 << 7 // ED
)

// NewFlags builds a Flags byte from the individual bits the Authenticator
// decides on for a given response.
func NewFlags(userPresent, userVerified, attestedCredentialData, extensionData bool) Flags {
	var f Flags
	if userPresent {
		f |= FlagUserPresent
	}
	if userVerified {
		f |= FlagUserVerified
	}
	if attestedCredentialData {
		f |= FlagAttestedCredentialData
	}
	if extensionData {
		f |= FlagExtensionData
	}
	return f
}

// String returns a human readable representation of the flags.
func (f Flags) String() string {
	var vals []string
	if f.UserPresent() {
		vals = append(vals, "UP")
	}
	if f.UserVerified() {
		vals = append(vals, "UV")
	}
	if f.BackupEligible() {
		vals = append(vals, "BE")
	}
	if f.BackedUp() {
		vals = append(vals, "BS")
	}
	if f.AttestedCredentialData() {
		vals = append(vals, "AT")
	}
	if f.ExtensionData() {
		vals = append(vals, "ED")
	}
	if len(vals) == 0 {
		return "Flags()"
	}
	return fmt.Sprintf("Flags(%s)", strings.Join(vals, "|"))
}

// UserPresent identifies if the authenticator performed a successful user
// presence test.
func (f Flags) UserPresent() bool { return f&FlagUserPresent != 0 }

// UserVerified identifies if the authenticator performed user verification.
func (f Flags) UserVerified() bool { return f&FlagUserVerified != 0 }

// BackupEligible identifies if a credential can be backed up to external
// storage (such as a passkey), or is single-device.
func (f Flags) BackupEligible() bool { return f&FlagBackupEligible != 0 }

// BackedUp identifies if a credential has been synced to external storage.
func (f Flags) BackedUp() bool { return f&FlagBackedUp != 0 }

// AttestedCredentialData identifies if the authData carries attested
// credential data (AAGUID, credential ID, and public key).
func (f Flags) AttestedCredentialData() bool { return f&FlagAttestedCredentialData != 0 }

// ExtensionData identifies if the authData carries an extensions CBOR map.
func (f Flags) ExtensionData() bool { return f&FlagExtensionData != 0 }

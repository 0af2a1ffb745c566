package webauthn

// PublicKeyCredentialType is always "public-key" in this version of the
// specification, but is kept as a type for forward compatibility.
type PublicKeyCredentialType string

// PublicKey is the only defined credential type.
const PublicKey PublicKeyCredentialType = "public-key"

// AuthenticatorTransport hints at how a client might reach an authenticator.
// The in-process authenticator modeled here always reports "internal".
type AuthenticatorTransport string

// Transport hints. Only Internal is produced by this package's reference
// Authenticator, but the others are kept for interop with descriptors a
// caller may construct by hand.
const (
	TransportUSB      AuthenticatorTransport = "usb"
	TransportNFC      AuthenticatorTransport = "nfc"
	TransportBLE      AuthenticatorTransport = "ble"
	TransportInternal AuthenticatorTransport = "internal"
	TransportHybrid   AuthenticatorTransport = "hybrid"
)

// UserVerificationRequirement expresses how strongly a Relying Party wants
// the authenticator to verify the user.
//
// https://www.w3.org/TR/webauthn-3/#enum-userVerificationRequirement
type UserVerificationRequirement string

// The three verification requirement levels.
const (
	UserVerificationRequired    UserVerificationRequirement = "required"
	UserVerificationPreferred  UserVerificationRequirement = "preferred"
	UserVerificationDiscouraged UserVerificationRequirement = "discouraged"
)

// ResidentKeyRequirement expresses whether the Relying Party wants a
// discoverable (resident) credential.
type ResidentKeyRequirement string

// Resident key requirement levels.
const (
	ResidentKeyDiscouraged ResidentKeyRequirement = "discouraged"
	ResidentKeyPreferred   ResidentKeyRequirement = "preferred"
	ResidentKeyRequired    ResidentKeyRequirement = "required"
)

// AttestationConveyancePreference expresses how much attestation detail the
// Relying Party wants. This package always returns "none" or "packed"
// self-attestation regardless of the caller's preference, since no
// device-attestation chain is implemented.
type AttestationConveyancePreference string

// Attestation conveyance levels.
const (
	AttestationNone          AttestationConveyancePreference = "none"
	AttestationIndirect      AttestationConveyancePreference = "indirect"
	AttestationDirect        AttestationConveyancePreference = "direct"
	AttestationEnterprise    AttestationConveyancePreference = "enterprise"
)

// PublicKeyCredentialHints carries non-binding hints from the Relying Party
// about the expected credential / authenticator form factor.
type PublicKeyCredentialHints string

// Defined hint values.
const (
	HintSecurityKey  PublicKeyCredentialHints = "security-key"
	HintClientDevice PublicKeyCredentialHints = "client-device"
	HintHybrid       PublicKeyCredentialHints = "hybrid"
)

// PublicKeyCredentialRpEntity identifies the Relying Party.
//
// Invariant: ID, when present, must be a registrable suffix of the effective
// domain of the caller's origin (or equal to it) — enforced by
// rpid.RpIdVerifier, not by this type.
type PublicKeyCredentialRpEntity struct {
	ID   string
	Name string
}

// PublicKeyCredentialUserEntity identifies the user account the credential
// is for.
type PublicKeyCredentialUserEntity struct {
	// ID is opaque and must be at most 64 bytes.
	ID          Bytes
	Name        string
	DisplayName string
}

// PublicKeyCredentialParameters names one acceptable (type, algorithm) pair.
type PublicKeyCredentialParameters struct {
	Type      PublicKeyCredentialType
	Algorithm Algorithm
}

// PublicKeyCredentialDescriptor identifies a specific credential, used in
// exclude/allow lists.
type PublicKeyCredentialDescriptor struct {
	Type       PublicKeyCredentialType
	ID         Bytes
	Transports []AuthenticatorTransport
}

// AuthenticatorSelectionCriteria lets the Relying Party express authenticator
// requirements for registration.
type AuthenticatorSelectionCriteria struct {
	AuthenticatorAttachment string
	ResidentKey             ResidentKeyRequirement
	RequireResidentKey      bool
	UserVerification        UserVerificationRequirement
}

// PublicKeyCredentialCreationOptions mirrors the JS
// PublicKeyCredentialCreationOptions dictionary.
//
// https://www.w3.org/TR/webauthn-3/#dictionary-makecredentialoptions
type PublicKeyCredentialCreationOptions struct {
	RP                     PublicKeyCredentialRpEntity
	User                   PublicKeyCredentialUserEntity
	Challenge              Bytes
	PubKeyCredParams       []PublicKeyCredentialParameters
	Timeout                uint32
	ExcludeCredentials     []PublicKeyCredentialDescriptor
	AuthenticatorSelection *AuthenticatorSelectionCriteria
	Hints                  []PublicKeyCredentialHints
	Attestation            AttestationConveyancePreference
}

// CredentialCreationOptions is the options argument to navigator.credentials.create().
type CredentialCreationOptions struct {
	PublicKey PublicKeyCredentialCreationOptions
}

// PublicKeyCredentialRequestOptions mirrors the JS
// PublicKeyCredentialRequestOptions dictionary.
type PublicKeyCredentialRequestOptions struct {
	Challenge        Bytes
	Timeout          uint32
	RPID             string
	AllowCredentials []PublicKeyCredentialDescriptor
	UserVerification UserVerificationRequirement
	Hints            []PublicKeyCredentialHints
}

// CredentialRequestOptions is the options argument to navigator.credentials.get().
type CredentialRequestOptions struct {
	PublicKey PublicKeyCredentialRequestOptions
}

// AuthenticatorAttestationResponse is the response payload returned from a
// successful registration ceremony.
type AuthenticatorAttestationResponse struct {
	ClientDataJSON    Bytes
	AttestationObject Bytes
	Transports        []AuthenticatorTransport
	PublicKey         Bytes
	PublicKeyAlgorithm Algorithm
	AuthenticatorData  Bytes
}

// AuthenticatorAssertionResponse is the response payload returned from a
// successful authentication ceremony.
type AuthenticatorAssertionResponse struct {
	ClientDataJSON    Bytes
	AuthenticatorData Bytes
	Signature         Bytes
	UserHandle        Bytes
}

// PublicKeyCredential is the envelope returned by both register and
// authenticate, matching the JS PublicKeyCredential interface.
type PublicKeyCredential[R any] struct {
	ID                     string
	RawID                  Bytes
	Response               R
	ClientExtensionResults map[string]any
	Type                   PublicKeyCredentialType
	AuthenticatorAttachment string
}

package authenticator

import (
	"context"

	"github.com/go-passkeys/go-passkeys/webauthn"
)

// UIHintKind discriminates the UIHint variants a host can be asked to
// render. Go has no tagged union, so UIHint carries all four payload shapes
// and Kind says which one is populated.
type UIHintKind int

// The UIHint variants, mirroring the four prompts a CTAP2 authenticator can
// surface to its host during a ceremony.
const (
	// HintInformExcludedCredentialFound: the operation cannot complete
	// because the user already has a credential registered. Passkey is set.
	HintInformExcludedCredentialFound UIHintKind = iota
	// HintInformNoCredentialsFound: the operation cannot complete because no
	// matching credential exists. No payload fields are set.
	HintInformNoCredentialsFound
	// HintRequestNewCredential: request permission to save a new credential.
	// User, RP, and Options are set.
	HintRequestNewCredential
	// HintRequestExistingCredential: request permission to use an existing
	// credential. Passkey is set.
	HintRequestExistingCredential
)

// CeremonyOptions carries the up/uv/rk flags a UIHint's RequestNewCredential
// variant shows the host, so it can render an accurate prompt.
type CeremonyOptions struct {
	ResidentKey      bool
	UserPresence     bool
	UserVerification bool
}

// UIHint is additional information an Authenticator can display to a host
// with a UI, surfaced before check_user runs. The original Rust UIHint<'a, P>
// borrows its payload for the duration of the call; here it carries owned
// copies instead, since the host must not retain references past ceremony
// completion regardless of the language's memory model.
type UIHint struct {
	Kind UIHintKind

	Passkey *Passkey
	User    *webauthn.PublicKeyCredentialUserEntity
	RP      *webauthn.PublicKeyCredentialRpEntity
	Options *CeremonyOptions
}

// InformExcludedCredentialFound builds the hint shown when excludeCredentials
// already matched a stored passkey.
func InformExcludedCredentialFound(pk Passkey) UIHint {
	return UIHint{Kind: HintInformExcludedCredentialFound, Passkey: &pk}
}

// InformNoCredentialsFound builds the hint shown when an assertion's
// candidate set came up empty.
func InformNoCredentialsFound() UIHint {
	return UIHint{Kind: HintInformNoCredentialsFound}
}

// RequestNewCredential builds the hint shown before creating a credential.
func RequestNewCredential(user webauthn.PublicKeyCredentialUserEntity, rp webauthn.PublicKeyCredentialRpEntity, opts CeremonyOptions) UIHint {
	return UIHint{Kind: HintRequestNewCredential, User: &user, RP: &rp, Options: &opts}
}

// RequestExistingCredential builds the hint shown before using a stored
// passkey to sign an assertion.
func RequestExistingCredential(pk Passkey) UIHint {
	return UIHint{Kind: HintRequestExistingCredential, Passkey: &pk}
}

// UserCheck is the result of a presence/verification gesture.
type UserCheck struct {
	Presence     bool
	Verification bool
}

// UserValidationMethod is the pluggable capability an Authenticator uses to
// gather user presence and verification from its host. Implementations back
// onto whatever UI the embedding application provides (biometrics, a PIN
// prompt, a hardware button) — the Authenticator never renders UI itself.
type UserValidationMethod interface {
	// CheckUser blocks until the host resolves the gesture, or ctx is
	// canceled. hint carries context the host can use to render the
	// prompt; presence/verification say which gestures the operation
	// requires.
	CheckUser(ctx context.Context, hint UIHint, presence, verification bool) (UserCheck, error)

	// IsPresenceEnabled reports whether this host can test user presence.
	IsPresenceEnabled(ctx context.Context) bool

	// IsVerificationEnabled reports the host's verification capability:
	// nil means incapable of UV entirely, a false pointee means capable but
	// unconfigured, a true pointee means capable and configured.
	IsVerificationEnabled(ctx context.Context) *bool
}

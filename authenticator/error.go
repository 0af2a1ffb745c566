package authenticator

import "fmt"

// Ctap2ErrorKind is the CTAP2-level error taxonomy an Authenticator can
// return from MakeCredential, GetAssertion, GetInfo, or Reset.
type Ctap2ErrorKind string

// The error kinds the Authenticator produces.
const (
	// CredentialExcluded means excludeCredentials matched an existing
	// (rpID, credentialID) pair.
	CredentialExcluded Ctap2ErrorKind = "credential_excluded"
	// NoCredentials means the allowList intersection, or the discoverable
	// scan, produced no candidates.
	NoCredentials Ctap2ErrorKind = "no_credentials"
	// OperationDenied means the user declined, or presence/verification
	// wasn't gathered as required.
	OperationDenied Ctap2ErrorKind = "operation_denied"
	// UnsupportedAlgorithm means no entry in pubKeyCredParams names an
	// algorithm this authenticator supports.
	UnsupportedAlgorithm Ctap2ErrorKind = "unsupported_algorithm"
	// InvalidOption means the requested option combination is impossible on
	// this authenticator (e.g. uv requested but unavailable).
	InvalidOption Ctap2ErrorKind = "invalid_option"
	// Other covers store errors, cryptographic errors, and internal
	// invariant breaches.
	Other Ctap2ErrorKind = "other"
)

// Ctap2Error is the error type every Authenticator operation returns on
// failure.
type Ctap2Error struct {
	Kind Ctap2ErrorKind
	// Cause is the underlying error, if any (a store failure, a context
	// cancellation, ...). Never a signature or private key.
	Cause error
}

func (e *Ctap2Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ctap2: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("ctap2: %s", e.Kind)
}

func (e *Ctap2Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Ctap2Error with the same Kind, so callers
// can write errors.Is(err, authenticator.ErrNoCredentials) style checks.
func (e *Ctap2Error) Is(target error) bool {
	t, ok := target.(*Ctap2Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newCtap2Error(kind Ctap2ErrorKind, cause error) *Ctap2Error {
	return &Ctap2Error{Kind: kind, Cause: cause}
}

// Sentinel errors for errors.Is comparisons against a returned *Ctap2Error's
// Kind, one per kind, with no Cause attached.
var (
	ErrCredentialExcluded  = &Ctap2Error{Kind: CredentialExcluded}
	ErrNoCredentials       = &Ctap2Error{Kind: NoCredentials}
	ErrOperationDenied     = &Ctap2Error{Kind: OperationDenied}
	ErrUnsupportedAlgorithm = &Ctap2Error{Kind: UnsupportedAlgorithm}
	ErrInvalidOption       = &Ctap2Error{Kind: InvalidOption}
	ErrOther               = &Ctap2Error{Kind: Other}
)

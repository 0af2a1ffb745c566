package authenticator

import (
	"crypto"
	"time"

	"github.com/go-passkeys/go-passkeys/webauthn"
)

// Passkey is a stored credential: the authenticator's private key material
// plus the metadata needed to answer future assertions against it. Private
// key material never leaves the authenticator boundary; it is the caller's
// CredentialStore that holds it at rest.
type Passkey struct {
	CredentialID []byte
	RPID         string
	UserHandle   []byte
	Algorithm    webauthn.Algorithm
	PrivateKey   crypto.Signer

	// Counter is nil when this credential doesn't track a signature
	// counter, matching the "modern platform authenticator" default of
	// transmitting signCount=0 and never incrementing it.
	Counter *uint32

	CreatedAt time.Time
	LastUsed  time.Time

	// Extensions holds any opaque per-credential extension state (e.g.
	// credProps, PRF salts) as raw CBOR, or nil.
	Extensions []byte
}

// Discoverability describes how liberally an Authenticator may create
// discoverable (resident) credentials, as reported by a CredentialStore.
type Discoverability string

// The discoverability policies a CredentialStore can advertise.
const (
	// DiscoverabilityAlways means every credential this store saves is
	// discoverable, regardless of the request's residentKey option.
	DiscoverabilityAlways Discoverability = "always"
	// DiscoverabilityPreferred means the store honors residentKey as a
	// preference but will accept non-discoverable credentials too.
	DiscoverabilityPreferred Discoverability = "preferred"
	// DiscoverabilityOnlyNonDiscoverable means the store never creates
	// discoverable credentials.
	DiscoverabilityOnlyNonDiscoverable Discoverability = "only_non_discoverable"
)

// StoreInfo reports a CredentialStore's capabilities.
type StoreInfo struct {
	Discoverability Discoverability
}

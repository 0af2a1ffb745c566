// Package rpid derives and validates WebAuthn Relying Party IDs from an
// origin, against the Public Suffix List.
//
// https://www.w3.org/TR/webauthn-3/#relying-party-identifier
package rpid

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Error is the taxonomy of failures AssertDomain can produce. These are
// fatal at the client boundary and never reach the Authenticator.
type Error string

// The RP ID verification error kinds.
const (
	// ErrInvalidRpId means the claimed RP ID is not well-formed, is itself a
	// public suffix, or PSL lookup failed.
	ErrInvalidRpId Error = "invalid_rp_id"
	// ErrOriginRpMismatch means the origin is unrelated to the claimed RP ID.
	ErrOriginRpMismatch Error = "origin_rp_mismatch"
	// ErrUnprotectedOrigin means the origin is non-HTTPS and not localhost.
	ErrUnprotectedOrigin Error = "unprotected_origin"
	// ErrInsecureLocalhostNotAllowed means localhost was used without opt-in.
	ErrInsecureLocalhostNotAllowed Error = "insecure_localhost_not_allowed"
)

func (e Error) Error() string { return string(e) }

// EffectiveTLDProvider resolves a domain's registrable suffix (effective
// TLD + 1), e.g. "future.1password.com" -> "1password.com". It is pluggable
// so hosts with a private PSL (enterprise or test deployments) can supply
// their own provider, the way the original Rust implementation's
// BrokenTLDProvider test fixture does.
type EffectiveTLDProvider interface {
	EffectiveTLDPlusOne(domain string) (string, error)
}

// DefaultProvider resolves registrable domains using the public suffix list
// bundled with golang.org/x/net/publicsuffix.
var DefaultProvider EffectiveTLDProvider = publicSuffixProvider{}

type publicSuffixProvider struct{}

func (publicSuffixProvider) EffectiveTLDPlusOne(domain string) (string, error) {
	return publicsuffix.EffectiveTLDPlusOne(domain)
}

// RpIdVerifier decides whether a caller-declared RP ID is permissible for a
// given origin, and returns the effective RP ID whose SHA-256 is bound into
// every credential and assertion.
type RpIdVerifier struct {
	provider                EffectiveTLDProvider
	allowsInsecureLocalhost bool
}

// New builds a RpIdVerifier backed by provider.
func New(provider EffectiveTLDProvider) *RpIdVerifier {
	return &RpIdVerifier{provider: provider}
}

// NewDefault builds a RpIdVerifier backed by the public suffix list.
func NewDefault() *RpIdVerifier {
	return New(DefaultProvider)
}

// AllowInsecureLocalhost toggles whether http://localhost origins are
// accepted without TLS or PSL checks. Returns the verifier for chaining.
func (v *RpIdVerifier) AllowInsecureLocalhost(allow bool) *RpIdVerifier {
	v.allowsInsecureLocalhost = allow
	return v
}

// AssertDomain resolves and validates the effective RP ID for origin, given
// an optional claimed RP ID from the request. claimedRPID is nil when the
// caller didn't set PublicKeyCredentialRpEntity.ID / rpId.
//
// https://www.w3.org/TR/webauthn-3/#sctn-create-a-new-credential (relying
// party identifier resolution)
func (v *RpIdVerifier) AssertDomain(origin *url.URL, claimedRPID *string) (string, error) {
	effectiveDomain := strings.ToLower(origin.Hostname())
	isLocalhost := effectiveDomain == "localhost"

	var claimed string
	if claimedRPID != nil {
		claimed = strings.ToLower(*claimedRPID)
		if hasEmptyLabel(claimed) {
			return "", ErrInvalidRpId
		}
		if !isLabelSuffix(effectiveDomain, claimed) {
			return "", ErrOriginRpMismatch
		}
	} else if hasEmptyLabel(effectiveDomain) {
		return "", ErrInvalidRpId
	}

	if isLocalhost {
		if v.allowsInsecureLocalhost {
			return "localhost", nil
		}
		return "", ErrInsecureLocalhostNotAllowed
	}

	if origin.Scheme != "https" {
		return "", ErrUnprotectedOrigin
	}

	if claimedRPID == nil {
		return effectiveDomain, nil
	}

	registrable, err := v.provider.EffectiveTLDPlusOne(effectiveDomain)
	if err != nil {
		return "", ErrInvalidRpId
	}
	if !isLabelSuffix(claimed, registrable) {
		return "", ErrInvalidRpId
	}

	return claimed, nil
}

// isLabelSuffix reports whether suffix is equal to domain, or is a
// dot-delimited label suffix of it — e.g. "1password.com" is a label suffix
// of "future.1password.com", but "word.com" is not.
func isLabelSuffix(domain, suffix string) bool {
	if domain == suffix {
		return true
	}
	return strings.HasSuffix(domain, "."+suffix)
}

// hasEmptyLabel reports whether s contains a zero-length dot-delimited
// label, e.g. "example...com".
func hasEmptyLabel(s string) bool {
	if s == "" {
		return true
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" {
			return true
		}
	}
	return false
}

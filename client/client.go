// Package client implements the WebAuthn ceremony orchestrator: it resolves
// the relying party ID from an origin, builds and hashes CollectedClientData,
// decides user-verification policy, drives an authenticator.Authenticator,
// and assembles the response envelopes a Relying Party expects back.
package client

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"net/url"

	"github.com/go-passkeys/go-passkeys/authenticator"
	"github.com/go-passkeys/go-passkeys/rpid"
	"github.com/go-passkeys/go-passkeys/webauthn"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Client drives a single authenticator.Authenticator through WebAuthn
// registration and authentication ceremonies.
type Client struct {
	authenticator *authenticator.Authenticator
	rpIDVerifier  *rpid.RpIdVerifier
	log           *logrus.Entry
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithRpIdVerifier overrides the default (public-suffix-list-backed)
// RpIdVerifier, e.g. to allow insecure localhost or to plug in a private
// suffix list provider.
func WithRpIdVerifier(v *rpid.RpIdVerifier) Option {
	return func(c *Client) { c.rpIDVerifier = v }
}

// WithLogger overrides the logrus entry used for operational breadcrumbs.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client that drives auth.
func New(auth *authenticator.Authenticator, opts ...Option) *Client {
	c := &Client{
		authenticator: auth,
		rpIDVerifier:  rpid.NewDefault(),
		log:           logrus.WithField("component", "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveUV translates a WebAuthn userVerification policy into the CTAP2 uv
// option, per the UV policy mapping table: Required always requests uv
// (the authenticator itself fails InvalidOption if unsupported); Discouraged
// never does; Preferred follows the host's own verification capability.
func (c *Client) resolveUV(ctx context.Context, req webauthn.UserVerificationRequirement) bool {
	switch req {
	case webauthn.UserVerificationRequired:
		return true
	case webauthn.UserVerificationDiscouraged:
		return false
	default: // Preferred, or left unset (WebAuthn's default policy)
		v := c.authenticator.IsVerificationEnabled(ctx)
		return v != nil && *v
	}
}

func residentKeyRequested(sel *webauthn.AuthenticatorSelectionCriteria) bool {
	if sel == nil {
		return false
	}
	return sel.RequireResidentKey || sel.ResidentKey == webauthn.ResidentKeyRequired
}

// Register runs a full credential-creation ceremony against origin.
// extraClientData, if non-nil, is marshaled to JSON and spliced into
// clientDataJSON after the fixed WebAuthn keys.
func (c *Client) Register(ctx context.Context, origin *url.URL, options webauthn.CredentialCreationOptions, extraClientData any) (*webauthn.PublicKeyCredential[webauthn.AuthenticatorAttestationResponse], error) {
	var claimed *string
	if options.PublicKey.RP.ID != "" {
		claimed = &options.PublicKey.RP.ID
	}
	effectiveRPID, err := c.rpIDVerifier.AssertDomain(origin, claimed)
	if err != nil {
		return nil, err
	}
	options.PublicKey.RP.ID = effectiveRPID

	cdj := webauthn.CollectedClientData{
		Type:      webauthn.ClientDataTypeCreate,
		Challenge: options.PublicKey.Challenge,
		Origin:    origin.String(),
		ExtraData: extraClientData,
	}
	cdjBytes, err := json.Marshal(cdj)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	clientDataHash := sha256.Sum256(cdjBytes)

	uv := c.resolveUV(ctx, requestedUV(options.PublicKey.AuthenticatorSelection))

	result, err := c.authenticator.MakeCredential(ctx, authenticator.MakeCredentialParams{
		ClientDataHash:   clientDataHash[:],
		RP:               options.PublicKey.RP,
		User:             options.PublicKey.User,
		PubKeyCredParams: options.PublicKey.PubKeyCredParams,
		ExcludeList:      options.PublicKey.ExcludeCredentials,
		Options: authenticator.CeremonyOptions{
			ResidentKey:      residentKeyRequested(options.PublicKey.AuthenticatorSelection),
			UserPresence:     true,
			UserVerification: uv,
		},
	})
	if err != nil {
		return nil, err
	}

	publicKeySPKI, err := x509.MarshalPKIXPublicKey(result.PublicKey.Public)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	c.log.WithField("rp_id", effectiveRPID).Info("registration ceremony completed")

	return &webauthn.PublicKeyCredential[webauthn.AuthenticatorAttestationResponse]{
		ID:    webauthn.Bytes(result.CredentialID).String(),
		RawID: webauthn.Bytes(result.CredentialID),
		Response: webauthn.AuthenticatorAttestationResponse{
			ClientDataJSON:     webauthn.Bytes(cdjBytes),
			AttestationObject:  webauthn.Bytes(result.AttestationObject),
			Transports:         []webauthn.AuthenticatorTransport{webauthn.TransportInternal},
			PublicKey:          webauthn.Bytes(publicKeySPKI),
			PublicKeyAlgorithm: result.Algorithm,
			AuthenticatorData:  webauthn.Bytes(result.AuthenticatorData),
		},
		ClientExtensionResults:  map[string]any{},
		Type:                    webauthn.PublicKey,
		AuthenticatorAttachment: "platform",
	}, nil
}

// requestedUV extracts the userVerification policy from an
// AuthenticatorSelectionCriteria, defaulting to Preferred when none was
// given, matching the WebAuthn specification's default.
func requestedUV(sel *webauthn.AuthenticatorSelectionCriteria) webauthn.UserVerificationRequirement {
	if sel == nil || sel.UserVerification == "" {
		return webauthn.UserVerificationPreferred
	}
	return sel.UserVerification
}

// Authenticate runs a full assertion ceremony against origin.
// extraClientData, if non-nil, is marshaled to JSON and spliced into
// clientDataJSON after the fixed WebAuthn keys.
func (c *Client) Authenticate(ctx context.Context, origin *url.URL, options webauthn.CredentialRequestOptions, extraClientData any) (*webauthn.PublicKeyCredential[webauthn.AuthenticatorAssertionResponse], error) {
	var claimed *string
	if options.PublicKey.RPID != "" {
		claimed = &options.PublicKey.RPID
	}
	effectiveRPID, err := c.rpIDVerifier.AssertDomain(origin, claimed)
	if err != nil {
		return nil, err
	}
	options.PublicKey.RPID = effectiveRPID

	cdj := webauthn.CollectedClientData{
		Type:      webauthn.ClientDataTypeGet,
		Challenge: options.PublicKey.Challenge,
		Origin:    origin.String(),
		ExtraData: extraClientData,
	}
	cdjBytes, err := json.Marshal(cdj)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	clientDataHash := sha256.Sum256(cdjBytes)

	uv := c.resolveUV(ctx, options.PublicKey.UserVerification)

	result, err := c.authenticator.GetAssertion(ctx, authenticator.GetAssertionParams{
		RPID:           effectiveRPID,
		ClientDataHash: clientDataHash[:],
		AllowList:      options.PublicKey.AllowCredentials,
		Options: authenticator.CeremonyOptions{
			UserPresence:     true,
			UserVerification: uv,
		},
	})
	if err != nil {
		return nil, err
	}

	c.log.WithField("rp_id", effectiveRPID).Info("authentication ceremony completed")

	return &webauthn.PublicKeyCredential[webauthn.AuthenticatorAssertionResponse]{
		ID:    webauthn.Bytes(result.CredentialID).String(),
		RawID: webauthn.Bytes(result.CredentialID),
		Response: webauthn.AuthenticatorAssertionResponse{
			ClientDataJSON:    webauthn.Bytes(cdjBytes),
			AuthenticatorData: webauthn.Bytes(result.AuthenticatorData),
			Signature:         webauthn.Bytes(result.Signature),
			UserHandle:        webauthn.Bytes(result.UserHandle),
		},
		ClientExtensionResults:  map[string]any{},
		Type:                    webauthn.PublicKey,
		AuthenticatorAttachment: "platform",
	}, nil
}

// Package authenticator implements an in-process CTAP2 authenticator:
// credential creation, assertion generation, signature counter bookkeeping,
// and the presence/verification/discoverability policy state machine a
// WebAuthn client drives during a ceremony.
package authenticator

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/go-passkeys/go-passkeys/webauthn"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// credentialIDSize is the length, in bytes, of a freshly generated
// credential ID.
const credentialIDSize = 16

// Authenticator is a CTAP2 responder: MakeCredential, GetAssertion, GetInfo,
// and Reset. A single Authenticator value is not safe for concurrent
// ceremonies — callers must serialize access to one instance, the way a
// physical authenticator only runs one command at a time.
type Authenticator struct {
	aaguid    webauthn.AAGUID
	store     CredentialStore
	validator UserValidationMethod
	log       *logrus.Entry

	useCounter        bool
	attestationFormat string
}

// Option configures an Authenticator at construction time.
type Option func(*Authenticator)

// WithCounter enables signature counter bookkeeping: new credentials start
// at 0 and increment by one on every successful assertion.
func WithCounter() Option {
	return func(a *Authenticator) { a.useCounter = true }
}

// WithoutCounter disables signature counter bookkeeping (the default):
// signCount is always transmitted as 0, matching modern platform
// authenticator behavior.
func WithoutCounter() Option {
	return func(a *Authenticator) { a.useCounter = false }
}

// WithAttestationFormat selects the attestation format MakeCredential
// produces: webauthn.AttestationFormatNone (the default) or
// webauthn.AttestationFormatPacked for self-attestation.
func WithAttestationFormat(format string) Option {
	return func(a *Authenticator) { a.attestationFormat = format }
}

// WithLogger overrides the logrus entry used for operational breadcrumbs.
func WithLogger(log *logrus.Entry) Option {
	return func(a *Authenticator) { a.log = log }
}

// New builds an Authenticator identified by aaguid, backed by store for
// persistence and validator for presence/verification gestures.
func New(aaguid webauthn.AAGUID, store CredentialStore, validator UserValidationMethod, opts ...Option) *Authenticator {
	a := &Authenticator{
		aaguid:            aaguid,
		store:             store,
		validator:         validator,
		attestationFormat: webauthn.AttestationFormatNone,
		log:               logrus.WithField("component", "authenticator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MakeCredentialParams carries the inputs to a registration ceremony.
type MakeCredentialParams struct {
	ClientDataHash   []byte
	RP               webauthn.PublicKeyCredentialRpEntity
	User             webauthn.PublicKeyCredentialUserEntity
	PubKeyCredParams []webauthn.PublicKeyCredentialParameters
	ExcludeList      []webauthn.PublicKeyCredentialDescriptor
	Extensions       []byte
	Options          CeremonyOptions
}

// MakeCredentialResult carries a successful registration's outputs.
type MakeCredentialResult struct {
	CredentialID      []byte
	Algorithm         webauthn.Algorithm
	PublicKey         *webauthn.PublicKey
	AuthenticatorData []byte
	AttestationObject []byte
}

// MakeCredential implements the CTAP2 authenticatorMakeCredential command.
func (a *Authenticator) MakeCredential(ctx context.Context, params MakeCredentialParams) (*MakeCredentialResult, error) {
	if params.RP.ID == "" {
		return nil, newCtap2Error(InvalidOption, trace.BadParameter("rp.id must not be empty"))
	}

	alg, err := a.selectAlgorithm(params.PubKeyCredParams)
	if err != nil {
		return nil, err
	}

	if err := a.rejectExcluded(ctx, params.RP.ID, params.ExcludeList, params.Options); err != nil {
		return nil, err
	}

	if params.Options.UserVerification {
		if v := a.validator.IsVerificationEnabled(ctx); v == nil || !*v {
			return nil, newCtap2Error(InvalidOption, fmt.Errorf("user verification requested but not available"))
		}
	}

	check, err := a.validator.CheckUser(ctx, RequestNewCredential(params.User, params.RP, params.Options), params.Options.UserPresence, params.Options.UserVerification)
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}
	if err := enforceCheck(params.Options, check); err != nil {
		return nil, err
	}

	priv, err := webauthn.GenerateKey(alg)
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	credentialID := make([]byte, credentialIDSize)
	if _, err := rand.Read(credentialID); err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	var counter *uint32
	if a.useCounter {
		zero := uint32(0)
		counter = &zero
	}

	now := time.Now()
	passkey := Passkey{
		CredentialID: credentialID,
		RPID:         params.RP.ID,
		UserHandle:   params.User.ID,
		Algorithm:    alg,
		PrivateKey:   priv,
		Counter:      counter,
		CreatedAt:    now,
		LastUsed:     now,
		Extensions:   params.Extensions,
	}
	if err := a.store.SaveCredential(passkey); err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	signCount := uint32(0)
	if counter != nil {
		signCount = *counter
	}

	ad := webauthn.NewAuthenticatorData(params.RP.ID, webauthn.NewFlags(check.Presence, check.Verification, true, len(params.Extensions) > 0), signCount)
	ad.AttestedCredentialData = &webauthn.AttestedCredentialData{
		AAGUID:       a.aaguid,
		CredentialID: credentialID,
		PublicKey:    &webauthn.PublicKey{Algorithm: alg, Public: priv.Public()},
	}
	ad.Extensions = params.Extensions

	authData, err := ad.Marshal()
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	var attestationObject []byte
	switch a.attestationFormat {
	case webauthn.AttestationFormatPacked:
		attestationObject, err = webauthn.BuildPackedSelfAttestation(priv, alg, authData, params.ClientDataHash)
	default:
		attestationObject, err = webauthn.BuildNoneAttestation(authData)
	}
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	a.log.WithFields(logrus.Fields{"rp_id": params.RP.ID, "alg": alg.String()}).Info("credential created")

	return &MakeCredentialResult{
		CredentialID:      credentialID,
		Algorithm:         alg,
		PublicKey:         &webauthn.PublicKey{Algorithm: alg, Public: priv.Public()},
		AuthenticatorData: authData,
		AttestationObject: attestationObject,
	}, nil
}

// GetAssertionParams carries the inputs to an authentication ceremony.
type GetAssertionParams struct {
	RPID           string
	ClientDataHash []byte
	AllowList      []webauthn.PublicKeyCredentialDescriptor
	Options        CeremonyOptions
	Extensions     []byte
}

// GetAssertionResult carries a successful authentication ceremony's outputs.
type GetAssertionResult struct {
	CredentialID      []byte
	AuthenticatorData []byte
	Signature         []byte
	// UserHandle is set when the candidate was resolved via a discoverable
	// (allowList-less) lookup, so the client can surface the account the
	// assertion belongs to.
	UserHandle []byte
}

// GetAssertion implements the CTAP2 authenticatorGetAssertion command.
func (a *Authenticator) GetAssertion(ctx context.Context, params GetAssertionParams) (*GetAssertionResult, error) {
	if params.Options.UserVerification {
		if v := a.validator.IsVerificationEnabled(ctx); v == nil || !*v {
			return nil, newCtap2Error(InvalidOption, fmt.Errorf("user verification requested but not available"))
		}
	}

	discoverable := len(params.AllowList) == 0
	var ids [][]byte
	if !discoverable {
		ids = make([][]byte, len(params.AllowList))
		for i, d := range params.AllowList {
			ids[i] = d.ID
		}
	}

	candidates, err := a.store.FindCredentials(ids, params.RPID)
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}
	if len(candidates) == 0 {
		if _, err := a.validator.CheckUser(ctx, InformNoCredentialsFound(), params.Options.UserPresence, params.Options.UserVerification); err != nil {
			a.log.WithError(err).Debug("check_user failed while presenting no-credentials hint")
		}
		return nil, newCtap2Error(NoCredentials, nil)
	}

	candidate := candidates[0]

	check, err := a.validator.CheckUser(ctx, RequestExistingCredential(candidate), params.Options.UserPresence, params.Options.UserVerification)
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}
	if err := enforceCheck(params.Options, check); err != nil {
		return nil, err
	}

	signCount := uint32(0)
	if candidate.Counter != nil {
		bumped := *candidate.Counter + 1
		candidate.Counter = &bumped
		candidate.LastUsed = time.Now()
		if err := a.store.UpdateCredential(candidate); err != nil {
			return nil, newCtap2Error(Other, trace.Wrap(err))
		}
		signCount = bumped
	}

	ad := webauthn.NewAuthenticatorData(params.RPID, webauthn.NewFlags(check.Presence, check.Verification, false, len(params.Extensions) > 0), signCount)
	ad.Extensions = params.Extensions

	authData, err := ad.Marshal()
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	signed := make([]byte, 0, len(authData)+len(params.ClientDataHash))
	signed = append(signed, authData...)
	signed = append(signed, params.ClientDataHash...)
	sig, err := webauthn.Sign(candidate.PrivateKey, candidate.Algorithm, signed)
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	a.log.WithField("rp_id", params.RPID).Info("assertion generated")

	result := &GetAssertionResult{
		CredentialID:      candidate.CredentialID,
		AuthenticatorData: authData,
		Signature:         sig,
	}
	if discoverable {
		result.UserHandle = candidate.UserHandle
	}
	return result, nil
}

// GetInfoOptions reports the option set an Authenticator supports.
type GetInfoOptions struct {
	ResidentKey      bool
	UserPresence     bool
	UserVerification *bool
}

// GetInfoResult is the response to the CTAP2 authenticatorGetInfo command.
type GetInfoResult struct {
	Versions   []string
	AAGUID     webauthn.AAGUID
	Options    GetInfoOptions
	Transports []webauthn.AuthenticatorTransport
	Extensions []string
	Algorithms []webauthn.Algorithm
}

// GetInfo implements the CTAP2 authenticatorGetInfo command.
func (a *Authenticator) GetInfo(ctx context.Context) (*GetInfoResult, error) {
	info, err := a.store.GetInfo()
	if err != nil {
		return nil, newCtap2Error(Other, trace.Wrap(err))
	}

	return &GetInfoResult{
		Versions: []string{"FIDO_2_0", "FIDO_2_1"},
		AAGUID:   a.aaguid,
		Options: GetInfoOptions{
			ResidentKey:      info.Discoverability != DiscoverabilityOnlyNonDiscoverable,
			UserPresence:     a.validator.IsPresenceEnabled(ctx),
			UserVerification: a.validator.IsVerificationEnabled(ctx),
		},
		Transports: []webauthn.AuthenticatorTransport{webauthn.TransportInternal},
		Extensions: []string{"credProps"},
		Algorithms: []webauthn.Algorithm{webauthn.ES256, webauthn.EdDSA},
	}, nil
}

// ConfirmReset builds the hint shown before Reset discards every stored
// credential. It has no analogue in the four MakeCredential/GetAssertion
// hints since Reset is not a per-credential ceremony.
func ConfirmReset() UIHint {
	return UIHint{Kind: uiHintConfirmReset}
}

const uiHintConfirmReset UIHintKind = 100

// Reset implements the CTAP2 authenticatorReset command: it discards every
// stored credential after gathering the strongest gesture the host supports
// (presence, and verification if available).
func (a *Authenticator) Reset(ctx context.Context) error {
	verification := false
	if v := a.validator.IsVerificationEnabled(ctx); v != nil && *v {
		verification = true
	}

	check, err := a.validator.CheckUser(ctx, ConfirmReset(), true, verification)
	if err != nil {
		return newCtap2Error(Other, trace.Wrap(err))
	}
	if !check.Presence || (verification && !check.Verification) {
		return newCtap2Error(OperationDenied, nil)
	}

	if err := a.store.Reset(); err != nil {
		return newCtap2Error(Other, trace.Wrap(err))
	}
	a.log.Info("authenticator reset")
	return nil
}

// IsVerificationEnabled exposes the host's verification capability to
// callers, such as a Client, that must decide a ceremony's uv option before
// issuing a command.
func (a *Authenticator) IsVerificationEnabled(ctx context.Context) *bool {
	return a.validator.IsVerificationEnabled(ctx)
}

func (a *Authenticator) selectAlgorithm(params []webauthn.PublicKeyCredentialParameters) (webauthn.Algorithm, error) {
	if len(params) == 0 {
		return webauthn.ES256, nil
	}
	for _, p := range params {
		if p.Algorithm.Supported() {
			return p.Algorithm, nil
		}
	}
	return 0, newCtap2Error(UnsupportedAlgorithm, nil)
}

func (a *Authenticator) rejectExcluded(ctx context.Context, rpID string, excludeList []webauthn.PublicKeyCredentialDescriptor, opts CeremonyOptions) error {
	for _, d := range excludeList {
		found, err := a.store.FindCredentials([][]byte{d.ID}, rpID)
		if err != nil {
			return newCtap2Error(Other, trace.Wrap(err))
		}
		if len(found) == 0 {
			continue
		}
		if _, err := a.validator.CheckUser(ctx, InformExcludedCredentialFound(found[0]), opts.UserPresence, opts.UserVerification); err != nil {
			a.log.WithError(err).Debug("check_user failed while presenting excluded-credential hint")
		}
		return newCtap2Error(CredentialExcluded, nil)
	}
	return nil
}

func enforceCheck(requested CeremonyOptions, got UserCheck) error {
	if requested.UserPresence && !got.Presence {
		return newCtap2Error(OperationDenied, nil)
	}
	if requested.UserVerification && !got.Verification {
		return newCtap2Error(OperationDenied, nil)
	}
	return nil
}

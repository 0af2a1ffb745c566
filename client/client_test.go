package client_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/go-passkeys/go-passkeys/authenticator"
	"github.com/go-passkeys/go-passkeys/authenticator/authtest"
	"github.com/go-passkeys/go-passkeys/client"
	"github.com/go-passkeys/go-passkeys/rpid"
	"github.com/go-passkeys/go-passkeys/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func newClient(t *testing.T, validator authenticator.UserValidationMethod, opts ...client.Option) *client.Client {
	t.Helper()
	auth := authenticator.New(webauthn.NewAAGUID(), authenticator.NewMemoryStore(), validator)
	return client.New(auth, opts...)
}

func creationOptions(rpID string) webauthn.CredentialCreationOptions {
	return webauthn.CredentialCreationOptions{
		PublicKey: webauthn.PublicKeyCredentialCreationOptions{
			RP:        webauthn.PublicKeyCredentialRpEntity{ID: rpID, Name: "Example"},
			User:      webauthn.PublicKeyCredentialUserEntity{ID: webauthn.Bytes("user-1"), Name: "user", DisplayName: "User"},
			Challenge: webauthn.Bytes("challenge-bytes"),
			PubKeyCredParams: []webauthn.PublicKeyCredentialParameters{
				{Type: webauthn.PublicKey, Algorithm: webauthn.ES256},
			},
		},
	}
}

func requestOptions(rpID string, allow []webauthn.PublicKeyCredentialDescriptor) webauthn.CredentialRequestOptions {
	return webauthn.CredentialRequestOptions{
		PublicKey: webauthn.PublicKeyCredentialRequestOptions{
			Challenge:        webauthn.Bytes("auth-challenge-bytes"),
			RPID:             rpID,
			AllowCredentials: allow,
		},
	}
}

// S1: create and authenticate at the exact registered origin.
func TestCreateAndAuthenticate(t *testing.T) {
	validator := authtest.VerifiedUser(2)
	c := newClient(t, validator)
	origin := mustParseURL(t, "https://future.1password.com")

	created, err := c.Register(context.Background(), origin, creationOptions("future.1password.com"), nil)
	require.NoError(t, err)

	_, err = webauthn.ParseAuthenticatorData("future.1password.com", created.Response.AuthenticatorData)
	require.NoError(t, err)

	assertion, err := c.Authenticate(context.Background(), origin, requestOptions("future.1password.com", []webauthn.PublicKeyCredentialDescriptor{
		{Type: webauthn.PublicKey, ID: created.RawID},
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, assertion.ID)

	validator.AssertExpectations(t)
}

// S9: extra client data appears verbatim in the decoded clientDataJSON.
func TestCreateAndAuthenticateWithExtraClientData(t *testing.T) {
	type androidClientData struct {
		AndroidPackageName string `json:"android_package_name"`
	}
	validator := authtest.VerifiedUser(2)
	c := newClient(t, validator)
	origin := mustParseURL(t, "https://example.com")
	extra := androidClientData{AndroidPackageName: "com.example.app"}

	created, err := c.Register(context.Background(), origin, creationOptions("example.com"), extra)
	require.NoError(t, err)

	var cdj webauthn.CollectedClientData
	require.NoError(t, cdj.UnmarshalJSON(created.Response.ClientDataJSON))
	var parsedExtra androidClientData
	require.NoError(t, cdj.ExtraDataAs(&parsedExtra))
	assert.Equal(t, extra, parsedExtra)

	assertion, err := c.Authenticate(context.Background(), origin, requestOptions("example.com", []webauthn.PublicKeyCredentialDescriptor{
		{Type: webauthn.PublicKey, ID: created.RawID},
	}), extra)
	require.NoError(t, err)

	var assertionCDJ webauthn.CollectedClientData
	require.NoError(t, assertionCDJ.UnmarshalJSON(assertion.Response.ClientDataJSON))
	var parsedAssertionExtra androidClientData
	require.NoError(t, assertionCDJ.ExtraDataAs(&parsedAssertionExtra))
	assert.Equal(t, extra, parsedAssertionExtra)
}

// S2: origin is a subdomain of the claimed RP ID; registration succeeds and
// the effective RP ID is the claimed one, not the full origin host.
func TestCreateAndAuthenticateWithOriginSubdomain(t *testing.T) {
	validator := authtest.VerifiedUser(2)
	c := newClient(t, validator)
	origin := mustParseURL(t, "https://www.future.1password.com")

	created, err := c.Register(context.Background(), origin, creationOptions("future.1password.com"), nil)
	require.NoError(t, err)

	ad, err := webauthn.ParseAuthenticatorData("future.1password.com", created.Response.AuthenticatorData)
	require.NoError(t, err)
	assert.True(t, ad.Flags.AttestedCredentialData())

	_, err = c.Authenticate(context.Background(), origin, requestOptions("future.1password.com", []webauthn.PublicKeyCredentialDescriptor{
		{Type: webauthn.PublicKey, ID: created.RawID},
	}), nil)
	require.NoError(t, err)
}

// S3: no claimed RP ID falls back to the full origin host.
func TestCreateAndAuthenticateWithoutRPID(t *testing.T) {
	validator := authtest.VerifiedUser(1)
	c := newClient(t, validator)
	origin := mustParseURL(t, "https://www.future.1password.com")

	created, err := c.Register(context.Background(), origin, creationOptions(""), nil)
	require.NoError(t, err)

	_, err = webauthn.ParseAuthenticatorData("www.future.1password.com", created.Response.AuthenticatorData)
	require.NoError(t, err)
}

// S8: an empty pubKeyCredParams list defaults to ES256.
func TestCreateAndAuthenticateWithoutCredParams(t *testing.T) {
	validator := authtest.VerifiedUser(1)
	c := newClient(t, validator)
	origin := mustParseURL(t, "https://example.com")

	opts := creationOptions("example.com")
	opts.PublicKey.PubKeyCredParams = nil

	created, err := c.Register(context.Background(), origin, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, webauthn.ES256, created.Response.PublicKeyAlgorithm)
}

func TestRegisterTriggersUVWhenRequired(t *testing.T) {
	validator := &authtest.MockUserValidationMethod{}
	validator.On("IsVerificationEnabled", mock.Anything).Return(boolPtr(true))
	validator.On("CheckUser", mock.Anything, mock.Anything, true, true).
		Return(authenticator.UserCheck{Presence: true, Verification: true}, nil).Once()

	c := newClient(t, validator)
	opts := creationOptions("example.com")
	opts.PublicKey.AuthenticatorSelection = &webauthn.AuthenticatorSelectionCriteria{
		UserVerification: webauthn.UserVerificationRequired,
	}

	_, err := c.Register(context.Background(), mustParseURL(t, "https://example.com"), opts, nil)
	require.NoError(t, err)
	validator.AssertExpectations(t)
}

func TestRegisterDoesNotTriggerUVWhenDiscouraged(t *testing.T) {
	validator := &authtest.MockUserValidationMethod{}
	validator.On("IsVerificationEnabled", mock.Anything).Return(boolPtr(true))
	validator.On("CheckUser", mock.Anything, mock.Anything, true, false).
		Return(authenticator.UserCheck{Presence: true, Verification: false}, nil).Once()

	c := newClient(t, validator)
	opts := creationOptions("example.com")
	opts.PublicKey.AuthenticatorSelection = &webauthn.AuthenticatorSelectionCriteria{
		UserVerification: webauthn.UserVerificationDiscouraged,
	}

	_, err := c.Register(context.Background(), mustParseURL(t, "https://example.com"), opts, nil)
	require.NoError(t, err)
	validator.AssertExpectations(t)
}

func TestRegisterRejectsUnprotectedOrigin(t *testing.T) {
	validator := authtest.VerifiedUser(0)
	c := newClient(t, validator)

	_, err := c.Register(context.Background(), mustParseURL(t, "http://example.com"), creationOptions("example.com"), nil)
	assert.ErrorIs(t, err, rpid.ErrUnprotectedOrigin)
}

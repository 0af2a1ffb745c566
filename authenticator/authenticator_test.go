package authenticator_test

import (
	"context"
	"testing"

	"github.com/go-passkeys/go-passkeys/authenticator"
	"github.com/go-passkeys/go-passkeys/authenticator/authtest"
	"github.com/go-passkeys/go-passkeys/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func newTestAuthenticator(validator authenticator.UserValidationMethod) (*authenticator.Authenticator, *authenticator.MemoryStore) {
	store := authenticator.NewMemoryStore()
	return authenticator.New(webauthn.NewAAGUID(), store, validator), store
}

func makeCredentialParams() authenticator.MakeCredentialParams {
	return authenticator.MakeCredentialParams{
		ClientDataHash: []byte("client-data-hash-0123456789012"),
		RP:             webauthn.PublicKeyCredentialRpEntity{ID: "example.com", Name: "Example"},
		User:           webauthn.PublicKeyCredentialUserEntity{ID: webauthn.Bytes("user-1"), Name: "user", DisplayName: "User"},
		PubKeyCredParams: []webauthn.PublicKeyCredentialParameters{
			{Type: webauthn.PublicKey, Algorithm: webauthn.ES256},
		},
		Options: authenticator.CeremonyOptions{UserPresence: true, UserVerification: true},
	}
}

func TestMakeCredentialAndGetAssertion(t *testing.T) {
	validator := authtest.VerifiedUser(2)
	a, _ := newTestAuthenticator(validator)

	created, err := a.MakeCredential(context.Background(), makeCredentialParams())
	require.NoError(t, err)
	assert.Len(t, created.CredentialID, 16)
	assert.Equal(t, webauthn.ES256, created.Algorithm)

	assertion, err := a.GetAssertion(context.Background(), authenticator.GetAssertionParams{
		RPID:           "example.com",
		ClientDataHash: []byte("assertion-client-data-hash-012"),
		AllowList: []webauthn.PublicKeyCredentialDescriptor{
			{Type: webauthn.PublicKey, ID: webauthn.Bytes(created.CredentialID)},
		},
		Options: authenticator.CeremonyOptions{UserPresence: true, UserVerification: true},
	})
	require.NoError(t, err)
	assert.Equal(t, created.CredentialID, assertion.CredentialID)
	assert.Nil(t, assertion.UserHandle, "allowList lookups don't surface the user handle")

	err = webauthn.VerifySignature(created.PublicKey.Public, created.Algorithm,
		append(append([]byte(nil), assertion.AuthenticatorData...), []byte("assertion-client-data-hash-012")...),
		assertion.Signature)
	require.NoError(t, err)

	validator.AssertExpectations(t)
}

func TestMakeCredentialDefaultsToES256WhenParamsEmpty(t *testing.T) {
	validator := authtest.VerifiedUser(1)
	a, _ := newTestAuthenticator(validator)

	params := makeCredentialParams()
	params.PubKeyCredParams = nil

	result, err := a.MakeCredential(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, webauthn.ES256, result.Algorithm)
}

func TestMakeCredentialUnsupportedAlgorithm(t *testing.T) {
	validator := authtest.VerifiedUser(0)
	a, _ := newTestAuthenticator(validator)

	params := makeCredentialParams()
	params.PubKeyCredParams = []webauthn.PublicKeyCredentialParameters{
		{Type: webauthn.PublicKey, Algorithm: webauthn.RS256},
	}

	_, err := a.MakeCredential(context.Background(), params)
	var ctapErr *authenticator.Ctap2Error
	require.ErrorAs(t, err, &ctapErr)
	assert.Equal(t, authenticator.UnsupportedAlgorithm, ctapErr.Kind)
}

func TestMakeCredentialRejectsExcludedCredential(t *testing.T) {
	validator := authtest.VerifiedUser(2)
	a, _ := newTestAuthenticator(validator)

	params := makeCredentialParams()
	created, err := a.MakeCredential(context.Background(), params)
	require.NoError(t, err)

	params.ExcludeList = []webauthn.PublicKeyCredentialDescriptor{
		{Type: webauthn.PublicKey, ID: webauthn.Bytes(created.CredentialID)},
	}
	_, err = a.MakeCredential(context.Background(), params)
	var ctapErr *authenticator.Ctap2Error
	require.ErrorAs(t, err, &ctapErr)
	assert.Equal(t, authenticator.CredentialExcluded, ctapErr.Kind)
}

func TestMakeCredentialRequiresVerificationWhenUnavailable(t *testing.T) {
	validator := authtest.UnverifiedUser(0)
	a, _ := newTestAuthenticator(validator)

	_, err := a.MakeCredential(context.Background(), makeCredentialParams())
	var ctapErr *authenticator.Ctap2Error
	require.ErrorAs(t, err, &ctapErr)
	assert.Equal(t, authenticator.InvalidOption, ctapErr.Kind)
	validator.AssertExpectations(t)
}

func TestGetAssertionNoCredentials(t *testing.T) {
	validator := &authtest.MockUserValidationMethod{}
	validator.On("IsVerificationEnabled", mock.Anything).Return(boolPtr(true))
	validator.On("CheckUser", mock.Anything, authenticator.InformNoCredentialsFound(), true, true).
		Return(authenticator.UserCheck{}, nil).Once()
	a, _ := newTestAuthenticator(validator)

	_, err := a.GetAssertion(context.Background(), authenticator.GetAssertionParams{
		RPID:           "example.com",
		ClientDataHash: []byte("hash"),
		Options:        authenticator.CeremonyOptions{UserPresence: true, UserVerification: true},
	})
	var ctapErr *authenticator.Ctap2Error
	require.ErrorAs(t, err, &ctapErr)
	assert.Equal(t, authenticator.NoCredentials, ctapErr.Kind)
}

func TestGetAssertionDiscoverableSurfacesUserHandle(t *testing.T) {
	validator := authtest.VerifiedUser(2)
	a, _ := newTestAuthenticator(validator)

	created, err := a.MakeCredential(context.Background(), makeCredentialParams())
	require.NoError(t, err)

	assertion, err := a.GetAssertion(context.Background(), authenticator.GetAssertionParams{
		RPID:           "example.com",
		ClientDataHash: []byte("hash"),
		Options:        authenticator.CeremonyOptions{UserPresence: true, UserVerification: true},
	})
	require.NoError(t, err)
	assert.Equal(t, created.CredentialID, assertion.CredentialID)
	assert.Equal(t, []byte("user-1"), assertion.UserHandle)
}

func TestCounterIncrementsWhenEnabled(t *testing.T) {
	validator := authtest.VerifiedUser(3)
	store := authenticator.NewMemoryStore()
	a := authenticator.New(webauthn.NewAAGUID(), store, validator, authenticator.WithCounter())

	created, err := a.MakeCredential(context.Background(), makeCredentialParams())
	require.NoError(t, err)

	allow := []webauthn.PublicKeyCredentialDescriptor{{Type: webauthn.PublicKey, ID: webauthn.Bytes(created.CredentialID)}}
	params := authenticator.GetAssertionParams{
		RPID:           "example.com",
		ClientDataHash: []byte("hash"),
		AllowList:      allow,
		Options:        authenticator.CeremonyOptions{UserPresence: true, UserVerification: true},
	}

	first, err := a.GetAssertion(context.Background(), params)
	require.NoError(t, err)
	second, err := a.GetAssertion(context.Background(), params)
	require.NoError(t, err)

	firstAD, err := webauthn.ParseAuthenticatorDataUnchecked(first.AuthenticatorData)
	require.NoError(t, err)
	secondAD, err := webauthn.ParseAuthenticatorDataUnchecked(second.AuthenticatorData)
	require.NoError(t, err)
	assert.Less(t, firstAD.SignCount, secondAD.SignCount)
}

func TestGetInfoReportsVerificationCapability(t *testing.T) {
	validator := authtest.VerifiedUser(0)
	a, _ := newTestAuthenticator(validator)

	info, err := a.GetInfo(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info.Options.UserVerification)
	assert.True(t, *info.Options.UserVerification)
	assert.Contains(t, info.Algorithms, webauthn.ES256)
}

func TestResetClearsCredentials(t *testing.T) {
	validator := authtest.VerifiedUser(2)
	a, store := newTestAuthenticator(validator)

	_, err := a.MakeCredential(context.Background(), makeCredentialParams())
	require.NoError(t, err)

	require.NoError(t, a.Reset(context.Background()))

	found, err := store.FindCredentials(nil, "example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

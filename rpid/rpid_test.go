package rpid

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func TestAssertDomain(t *testing.T) {
	v := NewDefault()

	// S4: public suffix claimed directly.
	_, err := v.AssertDomain(mustParse(t, "https://example.com"), strPtr("com"))
	assert.Equal(t, ErrInvalidRpId, err)

	// Empty labels in the claimed RP ID.
	_, err = v.AssertDomain(mustParse(t, "https://example...com"), strPtr("...com"))
	assert.Equal(t, ErrInvalidRpId, err)

	// S2: subdomain ignored in favor of claimed RP ID.
	rpID, err := v.AssertDomain(mustParse(t, "https://www.future.1password.com"), strPtr("future.1password.com"))
	require.NoError(t, err)
	assert.Equal(t, "future.1password.com", rpID)

	// S3: no claimed RP ID uses the effective domain.
	rpID, err = v.AssertDomain(mustParse(t, "https://www.future.1password.com"), nil)
	require.NoError(t, err)
	assert.Equal(t, "www.future.1password.com", rpID)

	// S5: non-HTTPS, non-localhost origin.
	_, err = v.AssertDomain(mustParse(t, "http://example.com"), strPtr("example.com"))
	assert.Equal(t, ErrUnprotectedOrigin, err)

	// S7: localhost origin claiming an unrelated RP ID.
	_, err = v.AssertDomain(mustParse(t, "http://localhost:8080"), strPtr("example.com"))
	assert.Equal(t, ErrOriginRpMismatch, err)

	// S6: localhost disallowed by default.
	_, err = v.AssertDomain(mustParse(t, "http://localhost:8080"), strPtr("localhost"))
	assert.Equal(t, ErrInsecureLocalhostNotAllowed, err)
	_, err = v.AssertDomain(mustParse(t, "http://localhost:8080"), nil)
	assert.Equal(t, ErrInsecureLocalhostNotAllowed, err)

	// S6: localhost allowed when opted in.
	v.AllowInsecureLocalhost(true)
	rpID, err = v.AssertDomain(mustParse(t, "http://localhost:8080"), strPtr("localhost"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", rpID)
	rpID, err = v.AssertDomain(mustParse(t, "http://localhost:8080"), nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", rpID)
}

func TestAssertDomainS1(t *testing.T) {
	v := NewDefault()
	rpID, err := v.AssertDomain(mustParse(t, "https://future.1password.com"), strPtr("future.1password.com"))
	require.NoError(t, err)
	assert.Equal(t, "future.1password.com", rpID)
}

type brokenProvider struct{}

func (brokenProvider) EffectiveTLDPlusOne(domain string) (string, error) {
	return "", assert.AnError
}

func TestAssertDomainWithPrivateProvider(t *testing.T) {
	v := New(brokenProvider{})
	_, err := v.AssertDomain(mustParse(t, "https://www.future.1password.com"), strPtr("future.1password.com"))
	assert.Equal(t, ErrInvalidRpId, err)
}

// Package authtest provides a testify/mock-backed UserValidationMethod for
// exercising authenticator.Authenticator without a real UI, the Go analogue
// of the original implementation's mockall-generated MockUserValidationMethod.
package authtest

import (
	"context"

	"github.com/go-passkeys/go-passkeys/authenticator"
	"github.com/stretchr/testify/mock"
)

// MockUserValidationMethod is a authenticator.UserValidationMethod test
// double built on testify/mock.
type MockUserValidationMethod struct {
	mock.Mock
}

// CheckUser implements authenticator.UserValidationMethod.
func (m *MockUserValidationMethod) CheckUser(ctx context.Context, hint authenticator.UIHint, presence, verification bool) (authenticator.UserCheck, error) {
	args := m.Called(ctx, hint, presence, verification)
	check, _ := args.Get(0).(authenticator.UserCheck)
	return check, args.Error(1)
}

// IsPresenceEnabled implements authenticator.UserValidationMethod.
func (m *MockUserValidationMethod) IsPresenceEnabled(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// IsVerificationEnabled implements authenticator.UserValidationMethod.
func (m *MockUserValidationMethod) IsVerificationEnabled(ctx context.Context) *bool {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*bool)
	return v
}

func boolPtr(b bool) *bool { return &b }

// VerifiedUser builds a mock that always reports presence and verification
// enabled, and answers every CheckUser call with a successful presence+
// verification result, expected to be called exactly times times.
func VerifiedUser(times int) *MockUserValidationMethod {
	m := &MockUserValidationMethod{}
	m.On("IsVerificationEnabled", mock.Anything).Return(boolPtr(true)).Maybe()
	m.On("IsPresenceEnabled", mock.Anything).Return(true).Maybe()
	if times > 0 {
		m.On("CheckUser", mock.Anything, mock.Anything, true, true).
			Return(authenticator.UserCheck{Presence: true, Verification: true}, nil).
			Times(times)
	}
	return m
}

// VerifiedUserWithHint is like VerifiedUser but additionally asserts the
// hint passed to CheckUser matches expectedHint.
func VerifiedUserWithHint(times int, expectedHint authenticator.UIHint) *MockUserValidationMethod {
	m := &MockUserValidationMethod{}
	m.On("IsVerificationEnabled", mock.Anything).Return(boolPtr(true))
	m.On("IsPresenceEnabled", mock.Anything).Return(true)
	m.On("CheckUser", mock.Anything, expectedHint, true, true).
		Return(authenticator.UserCheck{Presence: true, Verification: true}, nil).
		Times(times)
	return m
}

// UnverifiedUser builds a mock reporting UV as capable-but-unconfigured,
// answering CheckUser with presence only.
func UnverifiedUser(times int) *MockUserValidationMethod {
	m := &MockUserValidationMethod{}
	m.On("IsVerificationEnabled", mock.Anything).Return(boolPtr(false)).Maybe()
	m.On("IsPresenceEnabled", mock.Anything).Return(true).Maybe()
	if times > 0 {
		m.On("CheckUser", mock.Anything, mock.Anything, true, false).
			Return(authenticator.UserCheck{Presence: true, Verification: false}, nil).
			Times(times)
	}
	return m
}

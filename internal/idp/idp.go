// Package idp adapts the remote identity provider's procedures behind a
// small typed interface so the credential flows never see SDK types.
package idp

import (
	"context"
	"errors"
)

// Provider failure kinds. Callers branch on these with errors.Is; anything
// else is a transport or provider-internal failure.
var (
	ErrNotAuthorized   = errors.New("idp: not authorized")
	ErrUserExists      = errors.New("idp: username already exists")
	ErrUserNotFound    = errors.New("idp: user not found")
	ErrCodeMismatch    = errors.New("idp: invalid or expired confirmation code")
	ErrInvalidPassword = errors.New("idp: password does not satisfy policy")
)

// TokenSet is the access/id/refresh token triple issued on successful
// authentication.
type TokenSet struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// ChallengeNewPasswordRequired is the challenge kind the provider issues
// for accounts still holding a temporary password.
const ChallengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"

// AuthOutcome is the result of an authentication step: either a token
// triple, or a named challenge with the opaque session that must be echoed
// back on the next step.
type AuthOutcome struct {
	Tokens        *TokenSet
	ChallengeName string
	Session       string
}

// Service is the set of remote procedures the credential flows need.
type Service interface {
	// CreateUser provisions an identity with a temporary password, the
	// email pre-verified and provider-native notifications suppressed.
	// Returns the provider-assigned subject identifier.
	CreateUser(ctx context.Context, email, name, temporaryPassword string) (string, error)

	// Authenticate runs direct username/password authentication.
	Authenticate(ctx context.Context, email, password string) (*AuthOutcome, error)

	// RespondToChallenge answers a NEW_PASSWORD_REQUIRED challenge using
	// the session returned by Authenticate.
	RespondToChallenge(ctx context.Context, email, newPassword, session string) (*AuthOutcome, error)

	// ForgotPassword asks the provider to send a recovery code through its
	// own channel.
	ForgotPassword(ctx context.Context, email string) error

	// ConfirmForgotPassword submits the recovery code and the new password.
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error
}

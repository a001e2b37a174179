// Package auth orchestrates the credential lifecycle against the identity
// provider and mirrors accepted identities into the local user directory.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/videoauth/auth-service/internal/idp"
	"github.com/videoauth/auth-service/internal/tokens"
	"github.com/videoauth/auth-service/internal/users"
	"github.com/videoauth/auth-service/pkg/logger"
)

// Service composes the provider adapter and the directory repository.
// Operations share no mutable state; a Service is safe for concurrent use.
type Service struct {
	idp   idp.Service
	users users.Repository
}

// NewService creates the credential-flow orchestrator.
func NewService(provider idp.Service, repo users.Repository) *Service {
	return &Service{idp: provider, users: repo}
}

// RegisterInput carries the fields required to provision an identity.
type RegisterInput struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	NationalID string `json:"nationalId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Register creates the identity at the provider with a temporary password
// and mirrors it locally. The two writes are not transactional: when the
// provider accepts but the local write fails, the orphaned remote identity
// is reported as a partial failure for manual reconciliation, never
// retried (a retry could double-create the remote identity).
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Name == "" || in.Email == "" || in.NationalID == "" || in.Password == "" {
		return validationErr("name, email, nationalId and password are required")
	}

	// refuse locally-known duplicates before touching the provider
	if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil {
		return upstreamErr("directory lookup failed", err)
	} else if existing != nil {
		return validationErr("email already registered")
	}
	if existing, err := s.users.FindByNationalID(ctx, in.NationalID); err != nil {
		return upstreamErr("directory lookup failed", err)
	} else if existing != nil {
		return validationErr("national id already registered")
	}

	subjectID, err := s.idp.CreateUser(ctx, in.Email, in.Name, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, idp.ErrUserExists):
			return &Error{Kind: KindValidation, Detail: "email already registered", Err: err}
		case errors.Is(err, idp.ErrInvalidPassword):
			return &Error{Kind: KindValidation, Detail: "password does not satisfy policy", Err: err}
		default:
			return upstreamErr("identity provider rejected registration", err)
		}
	}

	u := &users.User{
		Name:       in.Name,
		NationalID: in.NationalID,
		Email:      in.Email,
		SubjectID:  subjectID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		logger.Errorf("reconciliation required: identity %s created at provider but directory write failed: %v", subjectID, err)
		return &Error{
			Kind:   KindPartial,
			Detail: "identity created at provider but local directory write failed",
			Err:    err,
		}
	}
	return nil
}

// Login runs direct credential authentication and returns the token triple.
// Rejections collapse into one invalid-credentials answer so callers learn
// nothing about which field was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*idp.TokenSet, error) {
	if email == "" || password == "" {
		return nil, validationErr("email and password are required")
	}

	out, err := s.idp.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, idp.ErrNotAuthorized) || errors.Is(err, idp.ErrUserNotFound) {
			return nil, &Error{Kind: KindInvalidCredentials, Detail: "invalid email or password", Err: err}
		}
		return nil, upstreamErr("authentication failed upstream", err)
	}
	if out.ChallengeName != "" {
		return nil, &Error{
			Kind:   KindUnexpectedChallenge,
			Detail: fmt.Sprintf("provider returned challenge %s during direct login", out.ChallengeName),
		}
	}
	if out.Tokens == nil {
		return nil, upstreamErr("provider returned neither tokens nor challenge", nil)
	}
	return out.Tokens, nil
}

// ConfirmTemporaryPassword drives the two-step challenge exchange that
// rotates a temporary password, returning the token triple as proof.
func (s *Service) ConfirmTemporaryPassword(ctx context.Context, email, temporaryPassword, newPassword string) (*idp.TokenSet, error) {
	if email == "" || temporaryPassword == "" || newPassword == "" {
		return nil, validationErr("email, temporaryPassword and newPassword are required")
	}

	rot := &passwordRotation{state: rotationInit}

	rot.state = rotationAuthenticating
	out, err := s.idp.Authenticate(ctx, email, temporaryPassword)
	if err != nil {
		if errors.Is(err, idp.ErrNotAuthorized) || errors.Is(err, idp.ErrUserNotFound) {
			rot.fail(&Error{Kind: KindInvalidCredentials, Detail: "invalid email or temporary password", Err: err})
		} else {
			rot.fail(&Error{Kind: KindUpstream, Detail: "authentication failed upstream", Err: err})
		}
		return nil, rot.failure
	}

	if out.ChallengeName != idp.ChallengeNewPasswordRequired {
		logger.Warnf("unexpected challenge %q for %s during temporary password confirmation", out.ChallengeName, email)
		rot.fail(&Error{
			Kind:   KindUnexpectedChallenge,
			Detail: "account is not pending a password change",
		})
		return nil, rot.failure
	}
	rot.receiveChallenge(out.Session)

	rot.state = rotationResponding
	final, err := s.idp.RespondToChallenge(ctx, email, newPassword, rot.session)
	if err != nil {
		if errors.Is(err, idp.ErrInvalidPassword) {
			rot.fail(&Error{Kind: KindValidation, Detail: "new password does not satisfy policy", Err: err})
		} else {
			rot.fail(&Error{Kind: KindUpstream, Detail: "challenge response failed upstream", Err: err})
		}
		return nil, rot.failure
	}
	if final.Tokens == nil {
		rot.fail(&Error{
			Kind:   KindUnexpectedChallenge,
			Detail: "provider did not return tokens after challenge response",
		})
		return nil, rot.failure
	}

	rot.complete(final.Tokens)
	return rot.tokens, nil
}

// InitiatePasswordRecovery asks the provider to send a recovery code. An
// unknown account is acknowledged exactly like a known one so the endpoint
// cannot be used to enumerate accounts.
func (s *Service) InitiatePasswordRecovery(ctx context.Context, email string) error {
	if email == "" {
		return validationErr("email is required")
	}
	if err := s.idp.ForgotPassword(ctx, email); err != nil {
		if errors.Is(err, idp.ErrUserNotFound) {
			logger.Debugf("password recovery requested for unknown account")
			return nil
		}
		return upstreamErr("could not start password recovery", err)
	}
	return nil
}

// ConfirmPasswordRecovery submits the emailed code and the new password.
func (s *Service) ConfirmPasswordRecovery(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return validationErr("email, code and newPassword are required")
	}
	if err := s.idp.ConfirmForgotPassword(ctx, email, code, newPassword); err != nil {
		switch {
		case errors.Is(err, idp.ErrCodeMismatch), errors.Is(err, idp.ErrUserNotFound):
			return &Error{Kind: KindInvalidRecoveryCode, Detail: "invalid or expired recovery code", Err: err}
		case errors.Is(err, idp.ErrInvalidPassword):
			return &Error{Kind: KindValidation, Detail: "new password does not satisfy policy", Err: err}
		default:
			return upstreamErr("could not confirm password recovery", err)
		}
	}
	return nil
}

// ValidatePrincipal resolves a verified principal to its directory mirror.
// A missing mirror is a consistency anomaly: every provider identity should
// have been mirrored at registration.
func (s *Service) ValidatePrincipal(ctx context.Context, p *tokens.Principal) (*users.User, error) {
	u, err := s.users.FindBySubjectID(ctx, p.Subject)
	if err != nil {
		return nil, upstreamErr("directory lookup failed", err)
	}
	if u == nil {
		return nil, &Error{Kind: KindNotFound, Detail: "no directory record for this identity"}
	}
	return u, nil
}

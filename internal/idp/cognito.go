package idp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// cognitoAPI is the slice of the Cognito client the adapter uses.
type cognitoAPI interface {
	AdminCreateUser(ctx context.Context, in *cip.AdminCreateUserInput, opts ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, opts ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, opts ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
}

// Cognito implements Service against an AWS Cognito user pool.
type Cognito struct {
	client     cognitoAPI
	userPoolID string
	clientID   string
	timeout    time.Duration
}

var _ Service = (*Cognito)(nil)

// NewCognito wraps a Cognito client for the given pool and app client.
// Every call gets a per-call deadline so a hung provider surfaces as an
// upstream failure instead of a stuck handler.
func NewCognito(client *cip.Client, userPoolID, clientID string) *Cognito {
	return &Cognito{
		client:     client,
		userPoolID: userPoolID,
		clientID:   clientID,
		timeout:    5 * time.Second,
	}
}

func (c *Cognito) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Cognito) CreateUser(ctx context.Context, email, name, temporaryPassword string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId:        aws.String(c.userPoolID),
		Username:          aws.String(email),
		TemporaryPassword: aws.String(temporaryPassword),
		MessageAction:     types.MessageActionTypeSuppress,
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(name)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
	})
	if err != nil {
		return "", mapError("AdminCreateUser", err)
	}
	if out.User == nil {
		return "", fmt.Errorf("idp: AdminCreateUser returned no user")
	}
	// the pool assigns a UUID subject; prefer the sub attribute, fall back
	// to the username the pool reports
	for _, attr := range out.User.Attributes {
		if aws.ToString(attr.Name) == "sub" && aws.ToString(attr.Value) != "" {
			return aws.ToString(attr.Value), nil
		}
	}
	return aws.ToString(out.User.Username), nil
}

func (c *Cognito) Authenticate(ctx context.Context, email, password string) (*AuthOutcome, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, mapError("InitiateAuth", err)
	}

	if out.ChallengeName != "" {
		return &AuthOutcome{
			ChallengeName: string(out.ChallengeName),
			Session:       aws.ToString(out.Session),
		}, nil
	}
	return &AuthOutcome{Tokens: tokenSet(out.AuthenticationResult)}, nil
}

func (c *Cognito) RespondToChallenge(ctx context.Context, email, newPassword, session string) (*AuthOutcome, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.client.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(c.clientID),
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		Session:       aws.String(session),
		ChallengeResponses: map[string]string{
			"USERNAME":     email,
			"NEW_PASSWORD": newPassword,
		},
	})
	if err != nil {
		return nil, mapError("RespondToAuthChallenge", err)
	}
	return &AuthOutcome{Tokens: tokenSet(out.AuthenticationResult)}, nil
}

func (c *Cognito) ForgotPassword(ctx context.Context, email string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return mapError("ForgotPassword", err)
	}
	return nil
}

func (c *Cognito) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return mapError("ConfirmForgotPassword", err)
	}
	return nil
}

func tokenSet(res *types.AuthenticationResultType) *TokenSet {
	if res == nil {
		return nil
	}
	return &TokenSet{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
	}
}

// mapError translates the SDK's typed exceptions into the adapter's
// failure kinds, keeping the provider message for server-side logs.
func mapError(op string, err error) error {
	var (
		notAuthorized *types.NotAuthorizedException
		userExists    *types.UsernameExistsException
		userNotFound  *types.UserNotFoundException
		codeMismatch  *types.CodeMismatchException
		codeExpired   *types.ExpiredCodeException
		badPassword   *types.InvalidPasswordException
	)
	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("%w: %s: %v", ErrNotAuthorized, op, err)
	case errors.As(err, &userExists):
		return fmt.Errorf("%w: %s: %v", ErrUserExists, op, err)
	case errors.As(err, &userNotFound):
		return fmt.Errorf("%w: %s: %v", ErrUserNotFound, op, err)
	case errors.As(err, &codeMismatch), errors.As(err, &codeExpired):
		return fmt.Errorf("%w: %s: %v", ErrCodeMismatch, op, err)
	case errors.As(err, &badPassword):
		return fmt.Errorf("%w: %s: %v", ErrInvalidPassword, op, err)
	default:
		return fmt.Errorf("idp: %s: %w", op, err)
	}
}

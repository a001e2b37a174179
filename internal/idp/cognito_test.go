package idp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/require"
)

type fakeCognitoAPI struct {
	createOut  *cip.AdminCreateUserOutput
	createErr  error
	authOut    *cip.InitiateAuthOutput
	authErr    error
	respondOut *cip.RespondToAuthChallengeOutput
	respondErr error
	forgotErr  error
	confirmErr error

	lastCreate  *cip.AdminCreateUserInput
	lastAuth    *cip.InitiateAuthInput
	lastRespond *cip.RespondToAuthChallengeInput
}

func (f *fakeCognitoAPI) AdminCreateUser(_ context.Context, in *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	f.lastCreate = in
	return f.createOut, f.createErr
}

func (f *fakeCognitoAPI) InitiateAuth(_ context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.lastAuth = in
	return f.authOut, f.authErr
}

func (f *fakeCognitoAPI) RespondToAuthChallenge(_ context.Context, in *cip.RespondToAuthChallengeInput, _ ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error) {
	f.lastRespond = in
	return f.respondOut, f.respondErr
}

func (f *fakeCognitoAPI) ForgotPassword(_ context.Context, _ *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, f.forgotErr
}

func (f *fakeCognitoAPI) ConfirmForgotPassword(_ context.Context, _ *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	return &cip.ConfirmForgotPasswordOutput{}, f.confirmErr
}

func newTestCognito(api cognitoAPI) *Cognito {
	return &Cognito{client: api, userPoolID: "us-east-1_Test", clientID: "client-abc", timeout: time.Second}
}

func TestCreateUserSuppressesNotificationAndReturnsSub(t *testing.T) {
	fake := &fakeCognitoAPI{
		createOut: &cip.AdminCreateUserOutput{User: &types.UserType{
			Username: aws.String("ana@x.com"),
			Attributes: []types.AttributeType{
				{Name: aws.String("sub"), Value: aws.String("uuid-123")},
			},
		}},
	}
	sub, err := newTestCognito(fake).CreateUser(context.Background(), "ana@x.com", "Ana", "Temp1!")
	require.NoError(t, err)
	require.Equal(t, "uuid-123", sub)

	require.Equal(t, types.MessageActionTypeSuppress, fake.lastCreate.MessageAction)
	attrs := map[string]string{}
	for _, a := range fake.lastCreate.UserAttributes {
		attrs[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	require.Equal(t, "true", attrs["email_verified"])
	require.Equal(t, "Ana", attrs["name"])
}

func TestCreateUserFallsBackToUsername(t *testing.T) {
	fake := &fakeCognitoAPI{
		createOut: &cip.AdminCreateUserOutput{User: &types.UserType{Username: aws.String("uuid-as-username")}},
	}
	sub, err := newTestCognito(fake).CreateUser(context.Background(), "a@x.com", "A", "Temp1!")
	require.NoError(t, err)
	require.Equal(t, "uuid-as-username", sub)
}

func TestAuthenticateReturnsTokens(t *testing.T) {
	fake := &fakeCognitoAPI{
		authOut: &cip.InitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String("at"),
			IdToken:      aws.String("it"),
			RefreshToken: aws.String("rt"),
		}},
	}
	out, err := newTestCognito(fake).Authenticate(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	require.Empty(t, out.ChallengeName)
	require.Equal(t, &TokenSet{AccessToken: "at", IDToken: "it", RefreshToken: "rt"}, out.Tokens)
	require.Equal(t, types.AuthFlowTypeUserPasswordAuth, fake.lastAuth.AuthFlow)
}

func TestAuthenticateSurfacesChallengeAndSession(t *testing.T) {
	fake := &fakeCognitoAPI{
		authOut: &cip.InitiateAuthOutput{
			ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
			Session:       aws.String("opaque-session"),
		},
	}
	out, err := newTestCognito(fake).Authenticate(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	require.Equal(t, ChallengeNewPasswordRequired, out.ChallengeName)
	require.Equal(t, "opaque-session", out.Session)
	require.Nil(t, out.Tokens)
}

func TestRespondToChallengeEchoesSession(t *testing.T) {
	fake := &fakeCognitoAPI{
		respondOut: &cip.RespondToAuthChallengeOutput{AuthenticationResult: &types.AuthenticationResultType{
			AccessToken: aws.String("at"),
		}},
	}
	out, err := newTestCognito(fake).RespondToChallenge(context.Background(), "a@x.com", "NewPw1!", "opaque-session")
	require.NoError(t, err)
	require.NotNil(t, out.Tokens)
	require.Equal(t, "opaque-session", aws.ToString(fake.lastRespond.Session))
	require.Equal(t, types.ChallengeNameTypeNewPasswordRequired, fake.lastRespond.ChallengeName)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"not authorized", &types.NotAuthorizedException{Message: aws.String("bad creds")}, ErrNotAuthorized},
		{"user exists", &types.UsernameExistsException{Message: aws.String("dup")}, ErrUserExists},
		{"user not found", &types.UserNotFoundException{Message: aws.String("none")}, ErrUserNotFound},
		{"code mismatch", &types.CodeMismatchException{Message: aws.String("bad code")}, ErrCodeMismatch},
		{"code expired", &types.ExpiredCodeException{Message: aws.String("late")}, ErrCodeMismatch},
		{"weak password", &types.InvalidPasswordException{Message: aws.String("weak")}, ErrInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError("Op", tc.in)
			require.ErrorIs(t, got, tc.want)
		})
	}

	plain := errors.New("connection reset")
	got := mapError("Op", plain)
	require.ErrorIs(t, got, plain)
	require.NotErrorIs(t, got, ErrNotAuthorized)
}

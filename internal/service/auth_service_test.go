package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://trainlog.test"

func newTestAuthService(repos repository.Repositories, mailer *fakeMailer) *authService {
	svc := NewAuthService(repos.Users, mailer, AuthConfig{JWTSecret: "test-secret", BaseURL: testBaseURL + "/"}).(*authService)
	svc.newResetToken = func() (string, error) { return "raw-reset-token", nil }
	return svc
}

func signup(t *testing.T, svc AuthService, email, password string) {
	t.Helper()
	_, err := svc.Signup(context.Background(), validation.SignupRequest{
		Name: "Ana", Email: email, Password: password, ConfirmPassword: password,
	})
	require.NoError(t, err)
}

func TestSignup_NormalizesEmailAndHidesHash(t *testing.T) {
	repos := newRepos()
	svc := newTestAuthService(repos, &fakeMailer{})

	user, err := svc.Signup(context.Background(), validation.SignupRequest{
		Name: "Ana", Email: "  Ana@Example.COM ", Password: "password1", ConfirmPassword: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	body, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "reset")

	stored, err := repos.Users.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newRepos(), &fakeMailer{})
	signup(t, svc, "ana@example.com", "password1")

	_, err := svc.Signup(context.Background(), validation.SignupRequest{
		Name: "Other", Email: "ANA@example.com", Password: "password2", ConfirmPassword: "password2",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(newRepos(), &fakeMailer{})
	signup(t, svc, "ana@example.com", "password1")
	ctx := context.Background()

	token, user, err := svc.Login(ctx, validation.LoginRequest{Email: "Ana@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, _, err = svc.Login(ctx, validation.LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, validation.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := newTestAuthService(newRepos(), &fakeMailer{})
	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(newRepos().Users, &fakeMailer{}, AuthConfig{JWTSecret: "other-secret"})
	signup(t, other, "ana@example.com", "password1")
	token, _, err := other.Login(context.Background(), validation.LoginRequest{Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestPasswordReset_UnknownEmailSendsNothing(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestAuthService(newRepos(), mailer)

	svc.RequestPasswordReset(context.Background(), validation.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.Empty(t, mailer.sent)
}

func TestRequestPasswordReset_MailerFailureIsSwallowed(t *testing.T) {
	repos := newRepos()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := newTestAuthService(repos, mailer)
	signup(t, svc, "ana@example.com", "password1")

	svc.RequestPasswordReset(context.Background(), validation.ForgotPasswordRequest{Email: "ANA@example.com"})

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].to)
	assert.Equal(t, testBaseURL+"/reset-password/raw-reset-token", mailer.sent[0].url)

	stored, err := repos.Users.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	assert.Equal(t, hashToken("raw-reset-token"), *stored.ResetToken)
	assert.NotEqual(t, "raw-reset-token", *stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetTokenExpiry, time.Minute)
}

func TestResetPassword_SingleUse(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newRepos(), &fakeMailer{})
	signup(t, svc, "ana@example.com", "password1")
	svc.RequestPasswordReset(ctx, validation.ForgotPasswordRequest{Email: "ana@example.com"})

	req := validation.ResetPasswordRequest{Token: "raw-reset-token", Password: "password2", ConfirmPassword: "password2"}
	require.NoError(t, svc.ResetPassword(ctx, req))
	assert.ErrorIs(t, svc.ResetPassword(ctx, req), ErrInvalidResetToken)

	_, _, err := svc.Login(ctx, validation.LoginRequest{Email: "ana@example.com", Password: "password2"})
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, validation.LoginRequest{Email: "ana@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestResetPassword_Expired(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newRepos(), &fakeMailer{})
	signup(t, svc, "ana@example.com", "password1")
	svc.RequestPasswordReset(ctx, validation.ForgotPasswordRequest{Email: "ana@example.com"})

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	err := svc.ResetPassword(ctx, validation.ResetPasswordRequest{Token: "raw-reset-token", Password: "password2", ConfirmPassword: "password2"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newRepos(), &fakeMailer{})
	signup(t, svc, "ana@example.com", "password1")
	_, user, err := svc.Login(ctx, validation.LoginRequest{Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, validation.ChangePasswordRequest{CurrentPassword: "nope", Password: "password3", ConfirmPassword: "password3"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, validation.ChangePasswordRequest{CurrentPassword: "password1", Password: "password3", ConfirmPassword: "password3"}))
	_, _, err = svc.Login(ctx, validation.LoginRequest{Email: "ana@example.com", Password: "password3"})
	assert.NoError(t, err)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenceapp/cadence-server/internal/auth"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
)

func ptr[T any](v T) *T { return &v }

func TestProfileService_GetUser(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	alice := env.signup(t, "alice")

	user, err := env.profile.GetUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = env.profile.GetUser(context.Background(), 999)
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	alice := env.signup(t, "alice")

	user, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{
		Username: ptr("alicia"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)
	assert.Equal(t, "alice@example.com", user.Email, "absent fields are unchanged")
}

func TestProfileService_UpdateProfile_Conflict(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	alice := env.signup(t, "alice")
	env.signup(t, "bob")

	_, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{Username: ptr("Bob")})
	domainErr := requireCode(t, err, domainerrors.CodeAlreadyExists)
	assert.Equal(t, "username already taken", domainErr.Message)

	_, err = env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{Email: ptr("bob@example.com")})
	domainErr = requireCode(t, err, domainerrors.CodeAlreadyExists)
	assert.Equal(t, "email already registered", domainErr.Message)
}

func TestProfileService_ChangePassword(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	alice := env.signup(t, "alice")

	_, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{
		NewPassword:     ptr("another-secret"),
		CurrentPassword: "wrong",
	})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)

	user, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{
		NewPassword:     ptr("another-secret"),
		CurrentPassword: "secret",
	})
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword("another-secret", user.PasswordHash))
	assert.False(t, auth.VerifyPassword("secret", user.PasswordHash))
}

func TestProfileService_ChangePassword_RevokesRefreshToken(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	ctx := context.Background()
	alice := env.signup(t, "alice")

	session, err := env.auth.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{
		NewPassword:     ptr("another-secret"),
		CurrentPassword: "secret",
	})
	require.NoError(t, err)

	_, err = env.auth.Refresh(ctx, session.Tokens.Refresh.Value)
	requireCode(t, err, domainerrors.CodeUnauthorized)
}

func TestProfileService_UpdateProfile_Validation(t *testing.T) {
	env := setupServices(t, PlaylistOptions{})
	alice := env.signup(t, "alice")

	_, err := env.profile.UpdateProfile(context.Background(), alice.ID, UpdateProfileRequest{
		Username: ptr("   "),
	})
	requireCode(t, err, domainerrors.CodeValidation)
}

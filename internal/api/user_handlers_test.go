package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenceapp/cadence-server/internal/auth"
)

func TestSignup_CreatesUserAccount(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users/signup", map[string]any{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	user := decode[UserResponse](t, resp)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "USER", user.Role)
	assert.NotContains(t, resp.Body.String(), "password")

	stored, err := ts.store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.True(t, auth.VerifyPassword("secret", stored.PasswordHash))
}

func TestSignup_Duplicates(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")

	tests := []struct {
		name     string
		username string
		email    string
		message  string
	}{
		{name: "username", username: "alice", email: "other@example.com", message: "username already taken"},
		{name: "email", username: "bob", email: "ALICE@example.com", message: "email already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/users/signup", map[string]any{
				"username": tt.username,
				"email":    tt.email,
				"password": "secret",
			})
			require.Equal(t, http.StatusConflict, resp.Code)

			body := decode[APIError](t, resp)
			assert.Equal(t, "ALREADY_EXISTS", body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestSignup_ValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users/signup", map[string]any{
		"username": "al",
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	body := decode[APIError](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	details, ok := body.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestLogin_SetsSessionCookies(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")

	resp := ts.api.Post("/api/v1/users/login", map[string]any{
		"email":    "alice@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[SessionResponse](t, resp)
	assert.Equal(t, "alice", body.User.Username)
	assert.True(t, body.RefreshTokenExpiresAt.After(body.AccessTokenExpiresAt))

	cookies := resp.Result().Cookies()
	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		c := findCookie(cookies, name)
		require.NotNil(t, c, name)
		assert.NotEmpty(t, c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
		assert.NotContains(t, resp.Body.String(), c.Value)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")

	unknown := ts.api.Post("/api/v1/users/login", map[string]any{
		"email":    "nobody@x.com",
		"password": "secret",
	})
	wrong := ts.api.Post("/api/v1/users/login", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())
	assert.Empty(t, wrong.Result().Cookies())
}

func TestMe_RequiresValidSession(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")
	cookies := ts.login(t, "alice")

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Cookie: access_token=v4.local.tampered")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", cookies)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "alice", decode[UserResponse](t, resp).Username)
}

func TestMe_BearerFallback(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signup(t, "alice")

	token, err := ts.tokens.GenerateAccessToken(user.ID)
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+token.Value)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestMe_DeletedUserTokenGrantsNothing(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signup(t, "alice")
	cookies := ts.login(t, "alice")

	require.NoError(t, ts.store.DeleteUser(context.Background(), user.ID))

	resp := ts.api.Get("/api/v1/users/me", cookies)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateMe(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")
	cookies := ts.login(t, "alice")

	resp := ts.api.Patch("/api/v1/users/me", cookies, map[string]any{
		"username": "alice2",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "alice2", decode[UserResponse](t, resp).Username)

	resp = ts.api.Patch("/api/v1/users/me", cookies, map[string]any{
		"new_password":     "another",
		"current_password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_RotatesCookies(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")
	first := ts.login(t, "alice")

	resp := ts.api.Post("/api/v1/users/refresh", first)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	second := cookieHeader(resp.Result().Cookies())
	assert.NotEqual(t, first, second)

	// Only the latest refresh token is accepted.
	resp = ts.api.Post("/api/v1/users/refresh", first)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/users/refresh", second)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRefresh_MissingCookie(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users/refresh")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[APIError](t, resp).Code)
}

func TestLogout_ClearsCookiesAndRevokesRefresh(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")
	cookies := ts.login(t, "alice")

	resp := ts.api.Post("/api/v1/users/logout", cookies)
	require.Equal(t, http.StatusOK, resp.Code)

	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		c := findCookie(resp.Result().Cookies(), name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}

	resp = ts.api.Post("/api/v1/users/refresh", cookies)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_Anonymous(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users/logout")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	ts := setupTestServerWith(t, testOptions{authRPS: 0.001, authBurst: 2})
	body := map[string]any{"email": "nobody@example.com", "password": "secret"}

	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/users/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/users/login", body).Code)

	resp := ts.api.Post("/api/v1/users/login", body)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[APIError](t, resp).Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
}

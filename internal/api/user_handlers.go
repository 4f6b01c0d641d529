package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/metrics"
	"github.com/cadenceapp/cadence-server/internal/service"
)

// Auth operations recorded in metrics.
const (
	authOpSignup  = "signup"
	authOpLogin   = "login"
	authOpRefresh = "refresh"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/signup",
		Summary:       "Create account",
		Description:   "Creates a USER account. Duplicate usernames and emails are reported separately.",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimitAuth(authOpSignup)},
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/login",
		Summary:     "Log in",
		Description: "Verifies credentials and sets the access and refresh cookies",
		Tags:        []string{"Users"},
		Middlewares: huma.Middlewares{s.rateLimitAuth(authOpLogin)},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/refresh",
		Summary:     "Refresh session",
		Description: "Exchanges the refresh cookie for a new pair of session cookies. Only the most recently issued refresh token is accepted.",
		Tags:        []string{"Users"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/logout",
		Summary:     "Log out",
		Description: "Clears the session cookies and revokes the stored refresh token",
		Tags:        []string{"Users"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the signed-in user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Updates the signed-in user's username, email or password. A new password requires the current one.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"cookie": {}}, {"bearer": {}}},
	}, s.handleUpdateCurrentUser)
}

// === DTOs ===

// SignupRequest is the request body for creating an account.
type SignupRequest struct {
	Username string `json:"username" doc:"Username, 3-32 letters, digits, '_', '.' or '-'"`
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password, at least 6 characters"`
}

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body SignupRequest
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// SessionResponse describes a freshly issued session. The tokens themselves
// travel only in HttpOnly cookies.
type SessionResponse struct {
	User                  UserResponse `json:"user" doc:"Signed-in user"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at" doc:"When the access cookie expires"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at" doc:"When the refresh cookie expires"`
}

// SessionOutput wraps a session response and its cookies for Huma.
type SessionOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      SessionResponse
}

// RefreshInput carries the refresh cookie.
type RefreshInput struct {
	RefreshToken string `cookie:"refresh_token" doc:"Refresh token cookie"`
}

// LogoutInput carries the refresh cookie, if any.
type LogoutInput struct {
	RefreshToken string `cookie:"refresh_token" doc:"Refresh token cookie"`
}

// LogoutOutput clears the session cookies.
type LogoutOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      MessageResponse
}

// UpdateMeRequest is the request body for updating the current user.
type UpdateMeRequest struct {
	Username        *string `json:"username,omitempty" doc:"New username"`
	Email           *string `json:"email,omitempty" doc:"New email address"`
	NewPassword     *string `json:"new_password,omitempty" doc:"New password"`
	CurrentPassword string  `json:"current_password,omitempty" doc:"Current password, required with new_password"`
}

// UpdateMeInput wraps the update request for Huma.
type UpdateMeInput struct {
	Body UpdateMeRequest
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*UserOutput, error) {
	user, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		s.recordAuthError(authOpSignup, err)
		return nil, err
	}

	s.recordAuth(authOpSignup, metrics.OutcomeSuccess)
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	session, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		s.recordAuthError(authOpLogin, err)
		return nil, err
	}

	s.recordAuth(authOpLogin, metrics.OutcomeSuccess)
	return s.sessionOutput(session), nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*SessionOutput, error) {
	session, err := s.services.Auth.Refresh(ctx, input.RefreshToken)
	if err != nil {
		s.recordAuthError(authOpRefresh, err)
		return nil, err
	}

	s.recordAuth(authOpRefresh, metrics.OutcomeSuccess)
	return s.sessionOutput(session), nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*LogoutOutput, error) {
	userID, _ := OptionalUserID(ctx)
	if err := s.services.Auth.Logout(ctx, userID, input.RefreshToken); err != nil {
		return nil, err
	}

	return &LogoutOutput{
		SetCookie: s.binder.ClearedCookies(),
		Body:      MessageResponse{Message: "logged out"},
	}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := RequireUser(ctx, s.services.Profile)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateMeInput) (*UserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.Profile.UpdateProfile(ctx, user.ID, service.UpdateProfileRequest{
		Username:        input.Body.Username,
		Email:           input.Body.Email,
		NewPassword:     input.Body.NewPassword,
		CurrentPassword: input.Body.CurrentPassword,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(updated)}, nil
}

// === Helpers ===

func (s *Server) sessionOutput(session *service.Session) *SessionOutput {
	return &SessionOutput{
		SetCookie: s.binder.SessionCookies(session.Tokens),
		Body: SessionResponse{
			User:                  mapUser(session.User),
			AccessTokenExpiresAt:  session.Tokens.Access.ExpiresAt,
			RefreshTokenExpiresAt: session.Tokens.Refresh.ExpiresAt,
		},
	}
}

func (s *Server) recordAuth(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuth(operation, outcome)
	}
}

func (s *Server) recordAuthError(operation string, err error) {
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		s.recordAuth(operation, metrics.OutcomeConflict)
		return
	}
	s.recordAuth(operation, metrics.OutcomeFailure)
}

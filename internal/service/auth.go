package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/domain"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/id"
	"github.com/cadenceapp/cadence-server/internal/normalize"
	"github.com/cadenceapp/cadence-server/internal/store"
	"github.com/cadenceapp/cadence-server/internal/validation"
)

const (
	invalidCredentialsMessage = "invalid email or password"
	generatedPasswordLength   = 20
)

// AuthService handles signup, login and renewal token rotation.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger

	// dummyHash is verified against when the email is unknown so that both
	// login failure paths do the same amount of work.
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokens *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) (*AuthService, error) {
	dummyHash, err := auth.HashPassword("cadence-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// Session is the result of a successful login or refresh.
type Session struct {
	User   *domain.User
	Tokens auth.TokenPair
}

// Signup creates a USER account. Duplicate usernames and emails are reported
// separately; any other persistence failure is an internal error.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	req.Username = normalize.Username(req.Username)
	req.Email = normalize.Email(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, domainerrors.AlreadyExists("username already taken")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, domainerrors.AlreadyExists("email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	}

	// The unique indexes still catch a concurrent signup that passed the checks above.
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "create user", "user not found")
	}

	s.logger.Info("user signed up",
		"user_id", user.ID,
		"username", user.Username,
	)

	return user, nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, normalize.Email(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.VerifyPassword(req.Password, s.dummyHash)
			return nil, domainerrors.InvalidCredentials(invalidCredentialsMessage)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.logger.Debug("login rejected", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials(invalidCredentialsMessage)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradePasswordHash(ctx, user, req.Password)
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return session, nil
}

// Refresh verifies a renewal token and rotates both tokens. Only the most
// recently issued renewal token for the user is accepted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, domainerrors.Unauthorized("refresh token missing")
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("refresh token expired")
		}
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	presented := auth.HashToken(refreshToken)
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshTokenHash)) != 1 {
		s.logger.Warn("rejected superseded refresh token",
			"user_id", user.ID,
			"token_id", claims.TokenID,
		)
		return nil, domainerrors.Unauthorized("refresh token revoked")
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("tokens rotated", "user_id", user.ID, "previous_token_id", claims.TokenID)
	return session, nil
}

// Logout revokes the stored renewal token. The caller is identified by
// userID when known, otherwise by a still-valid refresh token. Logging out an
// unidentified caller is a no-op.
func (s *AuthService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	if userID == 0 && refreshToken != "" {
		if claims, err := s.tokens.VerifyRefreshToken(refreshToken); err == nil {
			userID = claims.UserID
		}
	}
	if userID == 0 {
		return nil
	}

	if err := s.store.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// EnsureAdmin creates an ADMIN account for email if none exists. An empty
// password is replaced by a generated one, which is returned so the caller
// can log it once. Returns a nil user when the account already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	email = normalize.Email(email)
	username = normalize.Username(username)

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, "", nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("check admin: %w", err)
	}

	generated := ""
	if password == "" {
		pw, err := id.Password(generatedPasswordLength)
		if err != nil {
			return nil, "", err
		}
		password, generated = pw, pw
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", storeError(err, "create admin", "user not found")
	}

	s.logger.Info("bootstrap admin created", "user_id", user.ID, "email", user.Email)
	return user, generated, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*Session, error) {
	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	hash := auth.HashToken(pair.Refresh.Value)
	if err := s.store.SetRefreshTokenHash(ctx, user.ID, hash); err != nil {
		return nil, storeError(err, "store refresh token", "user not found")
	}
	user.RefreshTokenHash = hash

	return &Session{User: user, Tokens: pair}, nil
}

func (s *AuthService) upgradePasswordHash(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to store upgraded password hash", "user_id", user.ID, "error", err)
		return
	}
	s.logger.Info("upgraded legacy password hash", "user_id", user.ID)
}

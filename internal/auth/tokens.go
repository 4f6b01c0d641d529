package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenDuration is the access token lifetime when none is configured.
	DefaultAccessTokenDuration = 6000 * time.Second
	// DefaultRefreshTokenDuration is the renewal token lifetime when none is configured.
	DefaultRefreshTokenDuration = 7 * 24 * time.Hour

	defaultIssuer   = "cadence-server"
	defaultAudience = "cadence-client"
)

// Implicit assertions bind each token to its kind; an access token fails to
// decrypt as a renewal token and vice versa.
var (
	accessAssertion  = []byte("cadence:access")
	refreshAssertion = []byte("cadence:refresh")
)

var (
	// ErrInvalidToken is returned for any token that fails verification.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrTokenExpired is returned for an authentic token past its expiry.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
)

// TokenConfig configures a TokenService.
type TokenConfig struct {
	Key             []byte
	Issuer          string
	Audience        string
	AccessDuration  time.Duration
	RefreshDuration time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TokenService issues and verifies PASETO v4.local tokens.
type TokenService struct {
	key             paseto.V4SymmetricKey
	issuer          string
	audience        string
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

// NewTokenService creates a token service. Zero durations fall back to the defaults.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(cfg.Key))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}

	s := &TokenService{
		key:             key,
		issuer:          cfg.Issuer,
		audience:        cfg.Audience,
		accessDuration:  cfg.AccessDuration,
		refreshDuration: cfg.RefreshDuration,
		now:             cfg.Now,
	}
	if s.issuer == "" {
		s.issuer = defaultIssuer
	}
	if s.audience == "" {
		s.audience = defaultAudience
	}
	if s.accessDuration <= 0 {
		s.accessDuration = DefaultAccessTokenDuration
	}
	if s.refreshDuration <= 0 {
		s.refreshDuration = DefaultRefreshTokenDuration
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// GenerateAccessToken issues a short-lived access token for the user.
func (s *TokenService) GenerateAccessToken(userID int64) (IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.accessDuration)

	token := s.newToken(now, exp)
	if err := token.Set("uid", userID); err != nil {
		return IssuedToken{}, fmt.Errorf("set uid claim: %w", err)
	}

	return IssuedToken{
		Value:     token.V4Encrypt(s.key, accessAssertion),
		ExpiresAt: exp,
	}, nil
}

// GenerateRefreshToken issues a long-lived renewal token carrying a fresh jti.
func (s *TokenService) GenerateRefreshToken(userID int64) (IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.refreshDuration)
	jti := uuid.NewString()

	token := s.newToken(now, exp)
	token.SetJti(jti)
	if err := token.Set("uid", userID); err != nil {
		return IssuedToken{}, fmt.Errorf("set uid claim: %w", err)
	}

	return IssuedToken{
		Value:     token.V4Encrypt(s.key, refreshAssertion),
		ID:        jti,
		ExpiresAt: exp,
	}, nil
}

// GeneratePair issues an access token and a renewal token for the user.
func (s *TokenService) GeneratePair(userID int64) (TokenPair, error) {
	access, err := s.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccessToken checks an access token and returns the user id it carries.
func (s *TokenService) VerifyAccessToken(value string) (int64, error) {
	var claims AccessClaims
	if err := s.parse(value, accessAssertion, &claims); err != nil {
		return 0, err
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}
	return claims.UserID, nil
}

// VerifyRefreshToken checks a renewal token and returns its claims.
func (s *TokenService) VerifyRefreshToken(value string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(value, refreshAssertion, &claims); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 || claims.TokenID == "" {
		return nil, fmt.Errorf("%w: missing uid or jti", ErrInvalidToken)
	}
	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessDuration
}

// RefreshTokenDuration returns the configured renewal token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshDuration
}

// HashToken returns the digest under which a renewal token is stored, so a
// leaked database row cannot be replayed as a cookie.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func (s *TokenService) newToken(now, exp time.Time) paseto.Token {
	token := paseto.NewToken()
	token.SetIssuer(s.issuer)
	token.SetAudience(s.audience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(exp)
	return token
}

func (s *TokenService) parse(value string, assertion []byte, claims any) error {
	if value == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	parser := s.parser()
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, value, assertion)
	if err != nil {
		// An authentic token that only fails the time rule has expired.
		untimed := s.parser()
		if _, authErr := untimed.ParseV4Local(s.key, value, assertion); authErr == nil {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if err := json.Unmarshal(token.ClaimsJSON(), claims); err != nil {
		return fmt.Errorf("%w: decode claims: %w", ErrInvalidToken, err)
	}
	return nil
}

func (s *TokenService) parser() paseto.Parser {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(s.issuer))
	parser.AddRule(paseto.ForAudience(s.audience))
	return parser
}

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Cookie names shared with the web client.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// ErrNoToken is returned when a request carries no access token.
var ErrNoToken = errors.New("access token missing")

// AccessVerifier resolves an access token to a user id.
type AccessVerifier interface {
	VerifyAccessToken(value string) (int64, error)
}

// SessionBinder resolves the caller's identity from request cookies and
// writes the session cookies. It never touches persistence.
type SessionBinder struct {
	tokens AccessVerifier
	secure bool
	now    func() time.Time
}

// NewSessionBinder creates a binder. secure marks written cookies Secure.
func NewSessionBinder(tokens AccessVerifier, secure bool) *SessionBinder {
	return &SessionBinder{tokens: tokens, secure: secure, now: time.Now}
}

// Require returns the caller's user id, or ErrNoToken / ErrInvalidToken.
func (b *SessionBinder) Require(r *http.Request) (int64, error) {
	value := AccessTokenFromRequest(r)
	if value == "" {
		return 0, ErrNoToken
	}
	return b.tokens.VerifyAccessToken(value)
}

// Optional returns the caller's user id, or false for anonymous callers and
// callers whose token does not verify.
func (b *SessionBinder) Optional(r *http.Request) (int64, bool) {
	userID, err := b.Require(r)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// AccessTokenFromRequest reads the access token from its cookie, falling back
// to an Authorization bearer header for non-browser clients.
func AccessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SessionCookies returns the access and renewal cookies for a token pair.
func (b *SessionBinder) SessionCookies(pair TokenPair) []http.Cookie {
	return []http.Cookie{
		b.cookie(AccessCookieName, pair.Access.Value, pair.Access.ExpiresAt),
		b.cookie(RefreshCookieName, pair.Refresh.Value, pair.Refresh.ExpiresAt),
	}
}

// ClearedCookies returns cookies that remove both session cookies.
func (b *SessionBinder) ClearedCookies() []http.Cookie {
	cleared := make([]http.Cookie, 0, 2)
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		c := b.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		cleared = append(cleared, c)
	}
	return cleared
}

func (b *SessionBinder) cookie(name, value string, expires time.Time) http.Cookie {
	maxAge := int(expires.Sub(b.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cadenceapp/cadence-server/internal/auth"
	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the resolved caller identity.
const identityKey ctxKey = "identity"

// identity is the outcome of binding the request's access token.
type identity struct {
	userID int64
	err    error
}

// sessionMiddleware resolves the caller from the access token and stores the
// result in the request context. It never rejects a request: handlers decide
// whether an identity is required.
func sessionMiddleware(binder *auth.SessionBinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := binder.Require(r)
			ctx := context.WithValue(r.Context(), identityKey, identity{userID: userID, err: err})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID from context.
// Absent, tampered and expired tokens all yield a 401 error.
func GetUserID(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(identityKey).(identity)
	if !ok {
		return 0, domainerrors.Unauthorized("authentication required")
	}
	if id.err != nil {
		switch {
		case errors.Is(id.err, auth.ErrNoToken):
			return 0, domainerrors.Unauthorized("authentication required")
		case errors.Is(id.err, auth.ErrTokenExpired):
			return 0, domainerrors.TokenExpired("access token expired")
		default:
			return 0, domainerrors.Unauthorized("invalid access token")
		}
	}
	return id.userID, nil
}

// OptionalUserID returns the caller's user ID, or false for anonymous callers
// and callers whose token does not verify.
func OptionalUserID(ctx context.Context) (int64, bool) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return 0, false
	}
	return userID, true
}

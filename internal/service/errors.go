// Package service implements the Cadence business operations: account
// lifecycle, the song catalog and playlist ownership. Services return
// domain errors; the API layer maps them to HTTP.
package service

import (
	"context"
	"errors"
	"fmt"

	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// storeError converts a store error into a domain error. notFound is the
// message used when the store reports a missing row without saying which;
// op names the failed operation for errors that pass through unchanged.
func storeError(err error, op, notFound string) error {
	var storeErr *store.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrUsernameTaken):
		return domainerrors.AlreadyExists("username already taken").WithCause(err)
	case errors.Is(err, store.ErrEmailTaken):
		return domainerrors.AlreadyExists("email already registered").WithCause(err)
	case errors.Is(err, store.ErrNotFound):
		if errors.As(err, &storeErr) && storeErr.Message != store.ErrNotFound.Message {
			notFound = storeErr.Message
		}
		return domainerrors.NotFound(notFound).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput) && errors.As(err, &storeErr):
		return domainerrors.Validation(storeErr.Message).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists("resource already exists").WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

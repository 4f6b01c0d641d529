package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/id"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status   int
	Code     string `json:"code" doc:"Machine-readable error code"`
	Message  string `json:"message" doc:"Human-readable error message"`
	Details  any    `json:"details,omitempty" doc:"Additional error details"`
	Incident string `json:"incident,omitempty" doc:"Incident ID for server errors, quoted in the server log"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before serving requests.
func RegisterErrorHandler(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				apiErr := &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
				if apiErr.status >= http.StatusInternalServerError {
					apiErr.Incident = logIncident(logger, err)
				}
				return apiErr
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    statusToCode(storeErr.HTTPCode()),
					Message: storeErr.Message,
				}
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}

		if status >= http.StatusInternalServerError {
			apiErr.Message = "internal server error"
			apiErr.Incident = logIncident(logger, errors.Join(errs...))
			return apiErr
		}

		if details := fieldDetails(errs); len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// logIncident logs an unexpected error under a fresh incident ID and returns it.
func logIncident(logger *slog.Logger, err error) string {
	incident := id.MustGenerate("inc")
	logger.Error("request failed", "incident", incident, "error", err)
	return incident
}

// fieldDetails flattens huma's request validation errors into a field → message map.
func fieldDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			details[detail.Location] = detail.Message
		}
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}

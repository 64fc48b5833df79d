package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
// Violations is populated only for password policy failures so a client can
// fix every broken rule in one round trip.
type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps authentication, authorization, and domain errors to deterministic
//     HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Failed identity establishment is always 401 regardless of kind; the
	// kind only picks the message.
	var authn *auth.AuthnError
	if errors.As(err, &authn) {
		return http.StatusUnauthorized, errorResponse{Error: authn.Message}
	}

	// Access decisions split by kind: a missing resource reads as 404 even
	// for callers who would not have owned it.
	var authz *auth.AuthzError
	if errors.As(err, &authz) {
		switch authz.Kind {
		case auth.AuthzUnauthenticated:
			return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
		case auth.AuthzResourceNotFound:
			return http.StatusNotFound, errorResponse{Error: "resource not found"}
		default:
			return http.StatusForbidden, errorResponse{Error: authz.Message}
		}
	}

	var secret *auth.SecretError
	if errors.As(err, &secret) {
		if secret.Kind == auth.SecretPolicyViolation {
			return http.StatusBadRequest, errorResponse{
				Error:      "password does not meet the strength policy",
				Violations: secret.Violations,
			}
		}
		// Hashing and verification failures are internal faults.
		log.Error().Str("kind", string(secret.Kind)).Msg("password subsystem failure")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}

	// Known domain errors.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorResponse{Error: "too many login attempts, try again later"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, errorResponse{Error: "task not found"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

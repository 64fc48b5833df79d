// Package middleware contains the Echo middleware that establishes caller
// identity and enforces access control before handler logic runs.
package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/taskhq/task-manager-api/internal/api/metrics"
	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/auth/token"
)

// identityKey is the echo context key the verified caller identity is stored
// under. Handlers read it through IdentityFrom, never directly.
const identityKey = "caller_identity"

// Authenticate validates the bearer credential and attaches the caller
// identity to the request context. Any failure short-circuits the request
// before handler logic runs.
func Authenticate(codec *token.Codec) echo.MiddlewareFunc {
	return authenticate(codec, true)
}

// AuthenticateOptional runs the same pipeline but swallows every failure:
// the request proceeds with no identity attached. For routes that
// personalize output when logged in but do not require login.
func AuthenticateOptional(codec *token.Codec) echo.MiddlewareFunc {
	return authenticate(codec, false)
}

func authenticate(codec *token.Codec, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := ExtractToken(c)
			if !ok {
				return deny(c, next, required, &auth.AuthnError{
					Kind:    auth.AuthnMissingCredential,
					Message: "missing bearer credential",
				})
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				return deny(c, next, required, err)
			}

			if claims.Kind != token.KindAccess {
				return deny(c, next, required, &auth.AuthnError{
					Kind:    auth.AuthnWrongTokenType,
					Message: "refresh token used as access token",
				})
			}

			ident := claims.Identity()
			SetIdentity(c, &ident)
			metrics.TokenVerificationsTotal.WithLabelValues("success").Inc()

			return next(c)
		}
	}
}

func deny(c echo.Context, next echo.HandlerFunc, required bool, err error) error {
	var ae *auth.AuthnError
	if errors.As(err, &ae) {
		metrics.TokenVerificationsTotal.WithLabelValues(string(ae.Kind)).Inc()
	} else {
		metrics.TokenVerificationsTotal.WithLabelValues(string(auth.AuthnOther)).Inc()
	}

	if !required {
		return next(c)
	}
	return err
}

// SetIdentity attaches a verified caller identity to the request context.
func SetIdentity(c echo.Context, ident *auth.Identity) {
	c.Set(identityKey, ident)
}

// IdentityFrom returns the caller identity attached by Authenticate, or
// false when the request is unauthenticated (optional gate, or no gate ran).
func IdentityFrom(c echo.Context) (*auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(*auth.Identity)
	return ident, ok && ident != nil
}

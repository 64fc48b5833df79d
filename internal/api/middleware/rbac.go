package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskhq/task-manager-api/internal/auth"
)

// RequireRoles enforces role-based access control. It must run after
// Authenticate; an absent identity is rejected, never silently allowed.
func RequireRoles(allowed ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, _ := IdentityFrom(c)
			if err := auth.AuthorizeRoles(ident, allowed...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireOwner enforces resource ownership on routes carrying the resource id
// in the named path parameter. Admins pass unconditionally. This check is
// additive: routes that also need a role check keep RequireRoles in the chain.
func RequireOwner(lookup auth.ResourceLookup, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, _ := IdentityFrom(c)
			if err := auth.AuthorizeOwner(c.Request().Context(), ident, lookup, c.Param(param)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

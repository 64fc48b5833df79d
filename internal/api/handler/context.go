package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskhq/task-manager-api/internal/api/middleware"
	"github.com/taskhq/task-manager-api/internal/auth"
)

// callerIdentity extracts the identity attached by the authentication
// middleware. A missing identity on a protected route means the route was
// wired without the gate; fail closed rather than serve anonymously.
func callerIdentity(c echo.Context) (*auth.Identity, error) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, &auth.AuthzError{
			Kind:    auth.AuthzUnauthenticated,
			Message: "authentication required",
		}
	}
	return ident, nil
}

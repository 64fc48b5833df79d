package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhq/task-manager-api/internal/api/middleware"
)

// WelcomeHandler serves the root route. The route runs behind the optional
// authentication gate: logged-in callers get a personalized greeting, anyone
// else the anonymous one.
type WelcomeHandler struct{}

func NewWelcomeHandler() *WelcomeHandler {
	return &WelcomeHandler{}
}

func (h *WelcomeHandler) Welcome(c echo.Context) error {
	if ident, ok := middleware.IdentityFrom(c); ok {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "welcome back, " + ident.Username,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "welcome to the task manager api",
	})
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	accessTokenHeader = "X-Access-Token"
	tokenQueryParam   = "token"
)

// ExtractToken pulls the bearer credential from the request. Priority, first
// match wins: Authorization header with a Bearer prefix, then the
// X-Access-Token header, then the token query parameter. An Authorization
// header without the Bearer prefix is treated as absent. The query parameter
// is only honored on read-only calls, where it tends to come from
// link-sharing clients that cannot set headers.
func ExtractToken(c echo.Context) (string, bool) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
	}

	if raw := c.Request().Header.Get(accessTokenHeader); raw != "" {
		return raw, true
	}

	switch c.Request().Method {
	case http.MethodGet, http.MethodHead:
		if raw := c.QueryParam(tokenQueryParam); raw != "" {
			return raw, true
		}
	}

	return "", false
}

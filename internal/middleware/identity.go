package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the caller's user id. There is no authentication; the
// value only scopes rate limits and is logged with each request.
const HeaderUserID = "X-User-ID"

// userID returns the caller's user id, or "guest".
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Request().Header.Get(HeaderUserID)); v != "" {
		return v
	}
	return "guest"
}

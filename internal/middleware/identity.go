package middleware

// identity.go defines helper functions shared across middleware files.
// It provides a userID extraction function that pulls the subject (sub)
// claim injected by JWTAuth. When no user is authenticated, "guest" is
// returned; rate-limit keys fall back to the client IP in that case.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the request context. It
// returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	}
	return "guest"
}

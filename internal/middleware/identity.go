package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// userID returns the authenticated subject stored by JWTAuth, or "anon"
// when the request carries no token.
func userID(c echo.Context) string {
	switch v := c.Get(ctxUserID).(type) {
	case string:
		if v != "" {
			return v
		}
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return "anon"
}

// Role returns the role claim stored by JWTAuth, or "" when absent.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

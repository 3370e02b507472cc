package middleware

// identity.go holds helpers shared across middleware files.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userID derives a caller identity string for rate-limit and cache
// keys. JWTAuth stores the token subject under "user_id"; unauthenticated
// requests key as "guest".
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return "guest"
}

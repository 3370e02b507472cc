package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errNoUser is returned by getUserID when the context carries no usable
// user identity.
var errNoUser = errors.New("no user in context")

// getUserID extracts the authenticated user's ID from the echo context.
// The JWTAuth middleware stores the token's subject claim under
// "user_id"; depending on how the claim was encoded it may be a float64
// or a numeric string.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			return id, nil
		}
	}
	return 0, errNoUser
}

package middleware

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
)

// RequireRole ensures the caller's stored role matches one of the allowed
// roles. The role is looked up per request from the users table rather than
// trusted from the token, so a role change takes effect immediately.
// Usage: route(..., RequireRole("buyer"))
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get("email").(string)
			if email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}

			var role string
			err := db.Conn.QueryRow(c.Request().Context(),
				`SELECT role FROM users WHERE email = $1`, email).Scan(&role)
			if err == pgx.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
			}

			for _, r := range roles {
				if role == r {
					c.Set("role", role)
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden access"})
		}
	}
}

package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware verifies the bearer token and attaches the verified email to
// the request context. The identity provider is treated as ground truth for
// who is calling; roles are resolved separately against the users table.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := VerifyBearer(c.Request().Header.Get("Authorization"))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
		}
		c.Set("email", email)
		return next(c)
	}
}

// VerifyBearer parses an "Authorization: Bearer <token>" header and returns
// the verified email claim.
func VerifyBearer(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.HasPrefix(header, prefix) {
		return "", errors.New("missing or malformed authorization header")
	}
	tokenStr := header[len(prefix):]

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("token has no email claim")
	}
	return email, nil
}

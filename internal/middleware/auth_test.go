package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyBearer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("valid token", func(t *testing.T) {
		signed := signToken(t, "test-secret", jwt.MapClaims{
			"email": "worker@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		email, err := VerifyBearer("Bearer " + signed)
		require.NoError(t, err)
		assert.Equal(t, "worker@example.com", email)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := VerifyBearer("")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := signToken(t, "other-secret", jwt.MapClaims{"email": "a@b.c"})
		_, err := VerifyBearer("Bearer " + signed)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		signed := signToken(t, "test-secret", jwt.MapClaims{
			"email": "a@b.c",
			"exp":   time.Now().Add(-time.Hour).Unix(),
		})
		_, err := VerifyBearer("Bearer " + signed)
		assert.Error(t, err)
	})

	t.Run("no email claim", func(t *testing.T) {
		signed := signToken(t, "test-secret", jwt.MapClaims{"sub": "123"})
		_, err := VerifyBearer("Bearer " + signed)
		assert.Error(t, err)
	})
}

func TestJWTMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	e := echo.New()

	handler := JWTMiddleware(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("email").(string))
	})

	t.Run("rejects anonymous request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("attaches email from token", func(t *testing.T) {
		signed := signToken(t, "test-secret", jwt.MapClaims{
			"email": "buyer@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "buyer@example.com", rec.Body.String())
	})
}

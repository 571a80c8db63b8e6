package user

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/alerts"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/ledger"
)

type CreateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image"`
	Role  string `json:"role"`
}

// Create registers a user on first signup. Calling it again for a known
// email is a no-op, not an error, so the client can fire it on every login.
func Create(c echo.Context) error {
	req := new(CreateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name and a valid email are required"})
	}

	ctx := c.Request().Context()

	var exists bool
	if err := db.Conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if exists {
		return c.JSON(http.StatusOK, echo.Map{"message": "User already exists"})
	}

	// Admin is only granted via the promote_admin utility, never at signup.
	role := strings.ToLower(req.Role)
	if role != "buyer" {
		role = "worker"
	}

	u := User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		ImageURL:  req.Image,
		Role:      role,
		Coins:     ledger.SeedCoins(role),
		CreatedAt: time.Now(),
	}

	_, err := db.Conn.Exec(ctx,
		`INSERT INTO users (id, name, email, image_url, role, coins, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.ImageURL, u.Role, u.Coins, u.CreatedAt,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create user"})
	}

	_ = alerts.EnqueueWelcomeEmail(u.ID, u.Email, u.Name)

	return c.JSON(http.StatusOK, u)
}

// GetByEmail returns the record for the path email; callers may only read
// their own record.
func GetByEmail(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
	}

	u, err := fetch(c.Request().Context(), email)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, u)
}

// Me returns the record for the token's email.
func Me(c echo.Context) error {
	u, err := fetch(c.Request().Context(), c.Get("email").(string))
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, u)
}

func fetch(ctx context.Context, email string) (User, error) {
	var u User
	err := db.Conn.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(image_url, ''), role, coins, created_at
         FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL, &u.Role, &u.Coins, &u.CreatedAt)
	return u, err
}

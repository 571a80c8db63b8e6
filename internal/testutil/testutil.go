// Package testutil provides shared fixtures for the database-backed handler
// tests. Integration tests are skipped unless TEST_DATABASE_URL points at a
// disposable Postgres instance.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/logger"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewEcho returns an Echo instance wired the way cmd/server wires it.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}
	return e
}

// SetupDB connects to the test database, ensures the schema, truncates all
// tables and points the package-global pool at it.
func SetupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	logger.Init()

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("unable to connect to test database: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("unable to ping test database: %v", err)
	}

	db.EnsureSchema(context.Background(), pool)

	for _, table := range []string{"notifications", "withdrawals", "payments", "submissions", "tasks", "users"} {
		if _, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}

	db.Conn = pool
	t.Cleanup(pool.Close)
	return pool
}

// SeedUser inserts a user directly and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool, name, email, role string, coins int64) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, role, coins, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, email, role, coins, time.Now())
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}

// SeedTask inserts a task directly and returns its id.
func SeedTask(t *testing.T, pool *pgxpool.Pool, buyerEmail, buyerName, title string, requiredWorkers, payableAmount int64) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO tasks (id, buyer_email, buyer_name, title, required_workers,
                            payable_amount, completion_date, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', $8)`,
		id, buyerEmail, buyerName, title, requiredWorkers, payableAmount,
		time.Now().Add(72*time.Hour), time.Now())
	if err != nil {
		t.Fatalf("failed to seed task %q: %v", title, err)
	}
	return id
}

// Coins reads a user's current balance.
func Coins(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var coins int64
	if err := pool.QueryRow(context.Background(),
		`SELECT coins FROM users WHERE email = $1`, email).Scan(&coins); err != nil {
		t.Fatalf("failed to read coins for %s: %v", email, err)
	}
	return coins
}

package notification

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
)

type Notification struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	ActionRoute string    `json:"actionRoute,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, so notifications can
// be written inside the same transaction as the ledger change they announce.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Push records an in-app notification for the given user.
func Push(ctx context.Context, q execer, email, message, actionRoute string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO notifications (id, email, message, action_route, created_at)
         VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), email, message, actionRoute, time.Now())
	return err
}

// List returns the caller's notifications, newest first.
func List(c echo.Context) error {
	email := c.Get("email").(string)

	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, email, message, COALESCE(action_route, ''), created_at
         FROM notifications WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Email, &n.Message, &n.ActionRoute, &n.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}
		items = append(items, n)
	}
	return c.JSON(http.StatusOK, items)
}

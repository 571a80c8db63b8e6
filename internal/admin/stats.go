package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
)

// HomeStats serves GET /admin/home-stats: platform-wide rollups.
func HomeStats(c echo.Context) error {
	ctx := c.Request().Context()

	var totalWorker, totalBuyer, totalAvailableCoin, totalPayments int64

	if err := db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE role = 'worker'),
                COUNT(*) FILTER (WHERE role = 'buyer'),
                COALESCE(SUM(coins), 0)
         FROM users`).Scan(&totalWorker, &totalBuyer, &totalAvailableCoin); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err := db.Conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&totalPayments); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalWorker":        totalWorker,
		"totalBuyer":         totalBuyer,
		"totalAvailableCoin": totalAvailableCoin,
		"totalPayments":      totalPayments,
	})
}

package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/task"
)

// ListTasks serves GET /admin/manage-tasks.
func ListTasks(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, buyer_email, buyer_name, title, COALESCE(detail, ''), required_workers,
                payable_amount, completion_date, COALESCE(submission_info, ''),
                COALESCE(image_url, ''), status, created_at
         FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.ID, &t.BuyerEmail, &t.BuyerName, &t.Title, &t.Detail,
			&t.RequiredWorkers, &t.PayableAmount, &t.CompletionDate,
			&t.SubmissionInfo, &t.ImageURL, &t.Status, &t.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}
		tasks = append(tasks, t)
	}
	return c.JSON(http.StatusOK, tasks)
}

// DeleteTask serves DELETE /admin/manage-tasks/:id. Moderation removal: no
// refund is issued, unlike a buyer deleting their own task.
func DeleteTask(c echo.Context) error {
	tag, err := db.Conn.Exec(c.Request().Context(),
		`DELETE FROM tasks WHERE id = $1`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": tag.RowsAffected() > 0})
}

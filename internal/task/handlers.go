package task

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/ledger"
)

type CreateRequest struct {
	Title           string    `json:"task_title" validate:"required"`
	Detail          string    `json:"task_detail"`
	RequiredWorkers int64     `json:"required_workers" validate:"required,min=1"`
	PayableAmount   int64     `json:"payable_amount" validate:"required,min=1"`
	CompletionDate  time.Time `json:"completion_date"`
	SubmissionInfo  string    `json:"submission_info"`
	ImageURL        string    `json:"task_image_url"`
}

// Create posts a new task, debiting the buyer required_workers x
// payable_amount up front. Debit and insert commit together.
func Create(c echo.Context) error {
	buyerEmail := c.Get("email").(string)

	req := new(CreateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "task_title, required_workers and payable_amount are required"})
	}

	ctx := c.Request().Context()
	total := ledger.TotalCost(req.RequiredWorkers, req.PayableAmount)

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer tx.Rollback(ctx)

	var buyerName string
	var coins int64
	err = tx.QueryRow(ctx,
		`SELECT name, coins FROM users WHERE email = $1 FOR UPDATE`, buyerEmail).
		Scan(&buyerName, &coins)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Buyer not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err := ledger.ValidateTaskFunding(coins, req.RequiredWorkers, req.PayableAmount); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Not available Coin. Purchase Coin"})
	}

	if _, err = tx.Exec(ctx,
		`UPDATE users SET coins = coins - $1 WHERE email = $2`, total, buyerEmail); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not debit buyer"})
	}

	taskID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO tasks (id, buyer_email, buyer_name, title, detail, required_workers,
                            payable_amount, completion_date, submission_info, image_url, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'active', $11)`,
		taskID, buyerEmail, buyerName, req.Title, req.Detail, req.RequiredWorkers,
		req.PayableAmount, req.CompletionDate, req.SubmissionInfo, req.ImageURL, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create task"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Task added successfully",
		"task_id": taskID,
	})
}

// ListForBuyer returns the caller's own tasks, latest deadline first.
func ListForBuyer(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
	}

	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, buyer_email, buyer_name, title, COALESCE(detail, ''), required_workers,
                payable_amount, completion_date, COALESCE(submission_info, ''),
                COALESCE(image_url, ''), status, created_at
         FROM tasks WHERE buyer_email = $1 ORDER BY completion_date DESC`, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, tasks)
}

type UpdateRequest struct {
	Title          string `json:"task_title"`
	Detail         string `json:"task_detail"`
	SubmissionInfo string `json:"submission_info"`
}

// Update patches the editable fields of a task. Only the creating buyer may
// touch it; the ownership predicate lives in the WHERE clause.
func Update(c echo.Context) error {
	taskID := c.Param("id")
	buyerEmail := c.Get("email").(string)

	req := new(UpdateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	tag, err := db.Conn.Exec(c.Request().Context(),
		`UPDATE tasks
         SET title = COALESCE(NULLIF($1, ''), title),
             detail = COALESCE(NULLIF($2, ''), detail),
             submission_info = COALESCE(NULLIF($3, ''), submission_info)
         WHERE id = $4 AND buyer_email = $5`,
		req.Title, req.Detail, req.SubmissionInfo, taskID, buyerEmail)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update task"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete removes a task and refunds the remaining slots to its owner. The
// refund uses required_workers as it stands at deletion time, so slots
// already filled by approved work stay paid for.
func Delete(c echo.Context) error {
	taskID := c.Param("id")
	buyerEmail := c.Get("email").(string)
	ctx := c.Request().Context()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer tx.Rollback(ctx)

	var requiredWorkers, payableAmount int64
	err = tx.QueryRow(ctx,
		`SELECT required_workers, payable_amount FROM tasks
         WHERE id = $1 AND buyer_email = $2 FOR UPDATE`, taskID, buyerEmail).
		Scan(&requiredWorkers, &payableAmount)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	refund := ledger.TotalCost(requiredWorkers, payableAmount)

	if _, err = tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not delete task"})
	}
	if _, err = tx.Exec(ctx,
		`UPDATE users SET coins = coins + $1 WHERE email = $2`, refund, buyerEmail); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not refund buyer"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "refunded": refund})
}

type openTask struct {
	Task
	DisplayBuyerName string `json:"buyer_name"`
}

// ListOpen returns every task with open worker slots, annotated with the
// buyer's display name ("Unknown" when the buyer record is gone).
func ListOpen(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT t.id, t.buyer_email, t.buyer_name, t.title, COALESCE(t.detail, ''),
                t.required_workers, t.payable_amount, t.completion_date,
                COALESCE(t.submission_info, ''), COALESCE(t.image_url, ''), t.status, t.created_at,
                COALESCE(u.name, 'Unknown')
         FROM tasks t
         LEFT JOIN users u ON u.email = t.buyer_email
         WHERE t.required_workers > 0`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	var tasks []openTask
	for rows.Next() {
		var t openTask
		if err := rows.Scan(&t.ID, &t.BuyerEmail, &t.BuyerName, &t.Title, &t.Detail,
			&t.RequiredWorkers, &t.PayableAmount, &t.CompletionDate,
			&t.SubmissionInfo, &t.ImageURL, &t.Status, &t.CreatedAt,
			&t.DisplayBuyerName); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}
		tasks = append(tasks, t)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Details returns a single task for a worker considering it.
func Details(c echo.Context) error {
	var t Task
	err := db.Conn.QueryRow(c.Request().Context(),
		`SELECT id, buyer_email, buyer_name, title, COALESCE(detail, ''), required_workers,
                payable_amount, completion_date, COALESCE(submission_info, ''),
                COALESCE(image_url, ''), status, created_at
         FROM tasks WHERE id = $1`, c.Param("id")).
		Scan(&t.ID, &t.BuyerEmail, &t.BuyerName, &t.Title, &t.Detail, &t.RequiredWorkers,
			&t.PayableAmount, &t.CompletionDate, &t.SubmissionInfo, &t.ImageURL, &t.Status, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, t)
}

// BuyerHomeStats rolls up the buyer dashboard numbers.
func BuyerHomeStats(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
	}
	ctx := c.Request().Context()

	var totalTasks, pendingWorkers int64
	if err := db.Conn.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(required_workers), 0) FROM tasks WHERE buyer_email = $1`,
		email).Scan(&totalTasks, &pendingWorkers); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	var totalPaid int64
	if err := db.Conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE email = $1 AND status = 'success'`,
		email).Scan(&totalPaid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalTasks":     totalTasks,
		"pendingWorkers": pendingWorkers,
		"totalPaid":      totalPaid,
	})
}

func scanTasks(rows pgx.Rows) ([]Task, error) {
	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.BuyerEmail, &t.BuyerName, &t.Title, &t.Detail,
			&t.RequiredWorkers, &t.PayableAmount, &t.CompletionDate,
			&t.SubmissionInfo, &t.ImageURL, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

package submission

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/alerts"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/ledger"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/notification"
)

type SubmitRequest struct {
	Details string `json:"submission_details" validate:"required"`
}

// Submit records a worker's claim of completed work against a task. The
// task's title, payable amount and buyer identity are denormalized onto the
// submission so review survives later task edits or deletion.
func Submit(c echo.Context) error {
	taskID := c.Param("id")
	workerEmail := c.Get("email").(string)

	req := new(SubmitRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Submission details are required"})
	}

	ctx := c.Request().Context()

	var taskTitle, buyerEmail, buyerName string
	var payableAmount int64
	err := db.Conn.QueryRow(ctx,
		`SELECT title, payable_amount, buyer_email, buyer_name FROM tasks WHERE id = $1`, taskID).
		Scan(&taskTitle, &payableAmount, &buyerEmail, &buyerName)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	var workerName string
	if err := db.Conn.QueryRow(ctx,
		`SELECT name FROM users WHERE email = $1`, workerEmail).Scan(&workerName); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	s := Submission{
		ID:            uuid.New().String(),
		TaskID:        taskID,
		TaskTitle:     taskTitle,
		PayableAmount: payableAmount,
		WorkerEmail:   workerEmail,
		WorkerName:    workerName,
		BuyerEmail:    buyerEmail,
		BuyerName:     buyerName,
		Details:       req.Details,
		Status:        ledger.StatusPending,
		CreatedAt:     time.Now(),
	}

	_, err = db.Conn.Exec(ctx,
		`INSERT INTO submissions (id, task_id, task_title, payable_amount, worker_email,
                                  worker_name, buyer_email, buyer_name, details, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.TaskID, s.TaskTitle, s.PayableAmount, s.WorkerEmail,
		s.WorkerName, s.BuyerEmail, s.BuyerName, s.Details, s.Status, s.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not record submission"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "submissionId": s.ID})
}

// PendingForBuyer lists the caller's submissions awaiting review.
func PendingForBuyer(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
	}
	return list(c, `buyer_email = $1 AND status = 'pending'`, email)
}

// Approve marks a pending submission approved and credits the worker by the
// submission's payable amount. Status flip and credit commit together; a
// non-pending submission yields {success:false} with no further credit.
func Approve(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer tx.Rollback(ctx)

	var status, workerEmail, taskTitle string
	var payableAmount int64
	err = tx.QueryRow(ctx,
		`SELECT status, worker_email, payable_amount, task_title
         FROM submissions WHERE id = $1 FOR UPDATE`, id).
		Scan(&status, &workerEmail, &payableAmount, &taskTitle)
	if err == pgx.ErrNoRows || (err == nil && !ledger.CanReview(status)) {
		return c.JSON(http.StatusOK, echo.Map{"success": false})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if _, err = tx.Exec(ctx,
		`UPDATE submissions SET status = $1 WHERE id = $2`, ledger.StatusApproved, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update submission"})
	}
	if _, err = tx.Exec(ctx,
		`UPDATE users SET coins = coins + $1 WHERE email = $2`, payableAmount, workerEmail); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not credit worker"})
	}

	msg := fmt.Sprintf("You earned %d coins for %q", payableAmount, taskTitle)
	if err := notification.Push(ctx, tx, workerEmail, msg, "/dashboard/worker/my-submissions"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	_ = alerts.EnqueueSubmissionReviewed(id, workerEmail, taskTitle, ledger.StatusApproved, payableAmount)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Reject marks a pending submission rejected and reopens one worker slot on
// the originating task, atomically with the status flip.
func Reject(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer tx.Rollback(ctx)

	var status, workerEmail, taskID, taskTitle string
	err = tx.QueryRow(ctx,
		`SELECT status, worker_email, task_id, task_title
         FROM submissions WHERE id = $1 FOR UPDATE`, id).
		Scan(&status, &workerEmail, &taskID, &taskTitle)
	if err == pgx.ErrNoRows || (err == nil && !ledger.CanReview(status)) {
		return c.JSON(http.StatusOK, echo.Map{"success": false})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if _, err = tx.Exec(ctx,
		`UPDATE submissions SET status = $1 WHERE id = $2`, ledger.StatusRejected, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update submission"})
	}
	// The task may have been deleted since submission; the slot restore is
	// then a no-op.
	if _, err = tx.Exec(ctx,
		`UPDATE tasks SET required_workers = required_workers + 1 WHERE id = $1`, taskID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not reopen task slot"})
	}

	msg := fmt.Sprintf("Your submission for %q was rejected", taskTitle)
	if err := notification.Push(ctx, tx, workerEmail, msg, "/dashboard/worker/my-submissions"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	_ = alerts.EnqueueSubmissionReviewed(id, workerEmail, taskTitle, ledger.StatusRejected, 0)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MineForWorker lists everything the caller has submitted, newest first.
func MineForWorker(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden access"})
	}
	return list(c, `worker_email = $1`, email)
}

// ApprovedForWorker lists the caller's approved submissions, newest first.
func ApprovedForWorker(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden access"})
	}
	return list(c, `worker_email = $1 AND status = 'approved'`, email)
}

// WorkerHomeStats rolls up the worker dashboard numbers.
func WorkerHomeStats(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden access"})
	}

	var total, pending, earning int64
	err := db.Conn.QueryRow(c.Request().Context(),
		`SELECT COUNT(*),
                COUNT(*) FILTER (WHERE status = 'pending'),
                COALESCE(SUM(payable_amount) FILTER (WHERE status = 'approved'), 0)
         FROM submissions WHERE worker_email = $1`, email).
		Scan(&total, &pending, &earning)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalSubmissions":   total,
		"pendingSubmissions": pending,
		"totalEarning":       earning,
	})
}

func list(c echo.Context, where string, args ...interface{}) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, task_id, task_title, payable_amount, worker_email, worker_name,
                buyer_email, buyer_name, details, status, created_at
         FROM submissions WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.PayableAmount, &s.WorkerEmail,
			&s.WorkerName, &s.BuyerEmail, &s.BuyerName, &s.Details, &s.Status, &s.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}
		subs = append(subs, s)
	}
	return c.JSON(http.StatusOK, subs)
}

package withdrawal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/alerts"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/ledger"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/notification"
)

type Withdrawal struct {
	ID            string          `json:"id"`
	WorkerEmail   string          `json:"worker_email"`
	WorkerName    string          `json:"worker_name"`
	Coins         int64           `json:"withdrawal_coin"`
	Amount        decimal.Decimal `json:"withdrawal_amount"`
	PaymentSystem string          `json:"payment_system"`
	AccountNumber string          `json:"account_number"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"withdraw_date"`
}

type RequestBody struct {
	Coins         int64  `json:"withdrawal_coin" validate:"required,min=1"`
	PaymentSystem string `json:"payment_system" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
}

// Request files a cash-out request. The worker must hold at least 200 coins
// and may not request more than the current balance. No coins move yet; the
// debit happens at admin approval.
func Request(c echo.Context) error {
	workerEmail := c.Get("email").(string)

	req := new(RequestBody)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "withdrawal_coin, payment_system and account_number are required"})
	}

	ctx := c.Request().Context()

	var workerName string
	var coins int64
	err := db.Conn.QueryRow(ctx,
		`SELECT name, coins FROM users WHERE email = $1`, workerEmail).Scan(&workerName, &coins)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Worker not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err := ledger.ValidateWithdrawal(coins, req.Coins); err != nil {
		switch err {
		case ledger.ErrBelowMinimum:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Insufficient coin"})
		case ledger.ErrExceedsBalance:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Coin exceeds balance"})
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		}
	}

	w := Withdrawal{
		ID:            uuid.New().String(),
		WorkerEmail:   workerEmail,
		WorkerName:    workerName,
		Coins:         req.Coins,
		Amount:        ledger.CashAmount(req.Coins),
		PaymentSystem: req.PaymentSystem,
		AccountNumber: req.AccountNumber,
		Status:        "pending",
		CreatedAt:     time.Now(),
	}

	_, err = db.Conn.Exec(ctx,
		`INSERT INTO withdrawals (id, worker_email, worker_name, coins, amount,
                                  payment_system, account_number, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.WorkerEmail, w.WorkerName, w.Coins, w.Amount,
		w.PaymentSystem, w.AccountNumber, w.Status, w.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not record withdrawal"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListForWorker returns the caller's withdrawal history, newest first.
func ListForWorker(c echo.Context) error {
	email := c.Param("email")
	if email != c.Get("email").(string) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
	}
	return list(c, `worker_email = $1`, email)
}

// ListPending returns every pending request for the admin review queue.
func ListPending(c echo.Context) error {
	return list(c, `status = 'pending'`)
}

// Approve debits the worker and marks the request approved in one
// transaction. The balance is re-checked under a row lock because it may
// have shrunk between request and approval.
func Approve(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer tx.Rollback(ctx)

	var workerEmail, status string
	var coins int64
	var amount decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT worker_email, status, coins, amount FROM withdrawals WHERE id = $1 FOR UPDATE`, id).
		Scan(&workerEmail, &status, &coins, &amount)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Withdraw request not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if status != "pending" {
		return c.JSON(http.StatusOK, echo.Map{"success": false})
	}

	var balance int64
	if err = tx.QueryRow(ctx,
		`SELECT coins FROM users WHERE email = $1 FOR UPDATE`, workerEmail).Scan(&balance); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if balance < coins {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Worker balance no longer covers request"})
	}

	if _, err = tx.Exec(ctx,
		`UPDATE withdrawals SET status = 'approved' WHERE id = $1`, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not approve withdrawal"})
	}
	if _, err = tx.Exec(ctx,
		`UPDATE users SET coins = coins - $1 WHERE email = $2`, coins, workerEmail); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not debit worker"})
	}

	msg := fmt.Sprintf("Your withdrawal of %d coins ($%s) was approved", coins, amount.StringFixed(2))
	if err := notification.Push(ctx, tx, workerEmail, msg, "/dashboard/worker/withdrawals"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	_ = alerts.EnqueueWithdrawalApproved(id, workerEmail, coins, amount.StringFixed(2))

	return c.JSON(http.StatusOK, echo.Map{"message": "Withdrawal approved successfully"})
}

func list(c echo.Context, where string, args ...interface{}) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, worker_email, worker_name, coins, amount, payment_system,
                account_number, status, created_at
         FROM withdrawals WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	var items []Withdrawal
	for rows.Next() {
		var w Withdrawal
		if err := rows.Scan(&w.ID, &w.WorkerEmail, &w.WorkerName, &w.Coins, &w.Amount,
			&w.PaymentSystem, &w.AccountNumber, &w.Status, &w.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}
		items = append(items, w)
	}
	return c.JSON(http.StatusOK, items)
}

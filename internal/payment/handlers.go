package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
)

// SiteDomain is where checkout redirects land; set from config at startup.
var SiteDomain = "http://localhost:5173"

// ErrDuplicatePayment signals a payment intent that was already credited.
var ErrDuplicatePayment = errors.New("payment already confirmed")

type Payment struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Coins           int64     `json:"coins"`
	Amount          int64     `json:"amount"`
	PaymentIntentID string    `json:"paymentIntentId"`
	Method          string    `json:"paymentMethod"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CheckoutRequest struct {
	Coins  int64 `json:"coins" validate:"required,min=1"`
	Amount int64 `json:"amount" validate:"required,min=1"`
}

// CreateCheckoutSession opens a Stripe Checkout session for a coin bundle
// and returns the redirect URL. Coins are only credited after the paid
// session is confirmed.
func CreateCheckoutSession(c echo.Context) error {
	email := c.Get("email").(string)

	req := new(CheckoutRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "coins and amount are required"})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(email),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(req.Amount * 100),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d Coins", req.Coins)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(SiteDomain + "/dashboard/buyer/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(SiteDomain + "/dashboard/buyer/purchase-coin"),
	}
	params.AddMetadata("email", email)
	params.AddMetadata("coins", strconv.FormatInt(req.Coins, 10))
	params.AddMetadata("amount", strconv.FormatInt(req.Amount, 10))

	s, err := session.New(params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create checkout session"})
	}

	return c.JSON(http.StatusOK, echo.Map{"url": s.URL})
}

type ConfirmRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// Confirm verifies a checkout session with Stripe and credits the purchased
// coins exactly once per payment intent.
func Confirm(c echo.Context) error {
	email := c.Get("email").(string)

	req := new(ConfirmRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "sessionId is required"})
	}

	s, err := session.Get(req.SessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Expand: []*string{stripe.String("payment_intent")}},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not retrieve checkout session"})
	}

	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Payment not completed"})
	}
	if s.PaymentIntent == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "session has no payment intent"})
	}

	coins, _ := strconv.ParseInt(s.Metadata["coins"], 10, 64)
	amount, _ := strconv.ParseInt(s.Metadata["amount"], 10, 64)
	if coins <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "session metadata missing coins"})
	}

	err = Record(c.Request().Context(), db.Conn, email, coins, amount, s.PaymentIntent.ID)
	if errors.Is(err, ErrDuplicatePayment) {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Payment already confirmed"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not record payment"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Record persists the payment and credits the buyer in one transaction. The
// UNIQUE constraint on payment_intent_id makes a concurrent double-confirm
// lose the insert rather than double-credit; the 23505 violation is the
// dedup signal.
func Record(ctx context.Context, pool *pgxpool.Pool, email string, coins, amount int64, paymentIntentID string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO payments (id, email, coins, amount, payment_intent_id, method, status, created_at)
         VALUES ($1, $2, $3, $4, $5, 'stripe', 'success', $6)`,
		uuid.New().String(), email, coins, amount, paymentIntentID, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePayment
		}
		return err
	}

	if _, err = tx.Exec(ctx,
		`UPDATE users SET coins = coins + $1 WHERE email = $2`, coins, email); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// History returns the caller's payments, newest first.
func History(c echo.Context) error {
	email := c.Get("email").(string)

	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, email, coins, amount, payment_intent_id, method, status, created_at
         FROM payments WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to load payment history"})
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Email, &p.Coins, &p.Amount, &p.PaymentIntentID,
			&p.Method, &p.Status, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to load payment history"})
		}
		payments = append(payments, p)
	}
	return c.JSON(http.StatusOK, payments)
}

// Package ledger holds the coin arithmetic shared by the task, submission,
// withdrawal and payment handlers, so every balance rule is defined once.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// Signup seed balances per role.
	WorkerSeedCoins = 10
	BuyerSeedCoins  = 50

	// MinWithdrawalCoins is the floor below which a worker cannot cash out.
	MinWithdrawalCoins = 200

	// CoinsPerDollar is the fixed coin-to-cash conversion rate.
	CoinsPerDollar = 20
)

var (
	ErrInsufficientBalance = errors.New("insufficient coin balance")
	ErrBelowMinimum        = errors.New("balance below withdrawal minimum")
	ErrExceedsBalance      = errors.New("requested coins exceed balance")
)

// SeedCoins returns the initial balance assigned at signup.
func SeedCoins(role string) int64 {
	if role == "worker" {
		return WorkerSeedCoins
	}
	return BuyerSeedCoins
}

// TotalCost is the up-front debit for posting a task, and equally the refund
// for deleting one with the given remaining slots.
func TotalCost(requiredWorkers int64, payableAmount int64) int64 {
	return requiredWorkers * payableAmount
}

// ValidateTaskFunding checks a buyer can cover a new task.
func ValidateTaskFunding(balance, requiredWorkers, payableAmount int64) error {
	if requiredWorkers <= 0 || payableAmount <= 0 {
		return errors.New("required_workers and payable_amount must be positive")
	}
	if balance < TotalCost(requiredWorkers, payableAmount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidateWithdrawal enforces the 200-coin floor and that the request does
// not exceed the worker's current balance.
func ValidateWithdrawal(balance, coins int64) error {
	if coins <= 0 {
		return errors.New("withdrawal coins must be positive")
	}
	if balance < MinWithdrawalCoins {
		return ErrBelowMinimum
	}
	if coins > balance {
		return ErrExceedsBalance
	}
	return nil
}

// CashAmount converts coins to the cash payout at the fixed rate.
func CashAmount(coins int64) decimal.Decimal {
	return decimal.NewFromInt(coins).Div(decimal.NewFromInt(CoinsPerDollar))
}

// Submission statuses. A submission leaves "pending" exactly once.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// CanReview reports whether a submission in the given status may still be
// approved or rejected.
func CanReview(status string) bool {
	return status == StatusPending
}

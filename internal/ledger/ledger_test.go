package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCoins(t *testing.T) {
	assert.EqualValues(t, 10, SeedCoins("worker"))
	assert.EqualValues(t, 50, SeedCoins("buyer"))
	assert.EqualValues(t, 50, SeedCoins("admin"))
}

func TestTotalCost(t *testing.T) {
	assert.EqualValues(t, 50, TotalCost(5, 10))
	assert.EqualValues(t, 0, TotalCost(0, 10))
}

func TestValidateTaskFunding(t *testing.T) {
	// buyer with 100 coins posting 5 workers x 10 coins
	require.NoError(t, ValidateTaskFunding(100, 5, 10))

	assert.ErrorIs(t, ValidateTaskFunding(49, 5, 10), ErrInsufficientBalance)
	assert.Error(t, ValidateTaskFunding(100, 0, 10))
	assert.Error(t, ValidateTaskFunding(100, 5, -1))

	// exact balance is enough
	require.NoError(t, ValidateTaskFunding(50, 5, 10))
}

func TestValidateWithdrawal(t *testing.T) {
	require.NoError(t, ValidateWithdrawal(200, 200))
	require.NoError(t, ValidateWithdrawal(500, 200))

	assert.ErrorIs(t, ValidateWithdrawal(199, 100), ErrBelowMinimum)
	assert.ErrorIs(t, ValidateWithdrawal(300, 301), ErrExceedsBalance)
	assert.Error(t, ValidateWithdrawal(300, 0))
}

func TestCashAmount(t *testing.T) {
	assert.True(t, CashAmount(200).Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "10.5", CashAmount(210).String())
}

func TestCanReview(t *testing.T) {
	assert.True(t, CanReview(StatusPending))
	assert.False(t, CanReview(StatusApproved))
	assert.False(t, CanReview(StatusRejected))
	assert.False(t, CanReview(""))
}

package payment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/payment"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/testutil"
)

func TestRecord_CreditsExactlyOnce(t *testing.T) {
	pool := testutil.SetupDB(t)

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 50)
	ctx := context.Background()

	require.NoError(t, payment.Record(ctx, pool, "buyer@example.com", 100, 10, "pi_test_123"))
	assert.EqualValues(t, 150, testutil.Coins(t, pool, "buyer@example.com"))

	// same payment intent again: refused, no extra credit
	err := payment.Record(ctx, pool, "buyer@example.com", 100, 10, "pi_test_123")
	assert.ErrorIs(t, err, payment.ErrDuplicatePayment)
	assert.EqualValues(t, 150, testutil.Coins(t, pool, "buyer@example.com"))

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE payment_intent_id = 'pi_test_123'`).Scan(&count))
	assert.Equal(t, 1, count)

	// a different intent credits again
	require.NoError(t, payment.Record(ctx, pool, "buyer@example.com", 50, 5, "pi_test_456"))
	assert.EqualValues(t, 200, testutil.Coins(t, pool, "buyer@example.com"))
}

func TestRecord_ConcurrentConfirms(t *testing.T) {
	pool := testutil.SetupDB(t)

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 0)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- payment.Record(ctx, pool, "buyer@example.com", 100, 10, "pi_race")
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, payment.ErrDuplicatePayment)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 100, testutil.Coins(t, pool, "buyer@example.com"))
}

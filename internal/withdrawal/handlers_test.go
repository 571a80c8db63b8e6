package withdrawal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/testutil"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/withdrawal"
)

func requestWithdrawal(t *testing.T, e *echo.Echo, workerEmail, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/worker/withdraw", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("email", workerEmail)
	require.NoError(t, withdrawal.Request(c))
	return rec
}

func TestRequest_BelowMinimum(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Worker", "worker@example.com", "worker", 199)

	rec := requestWithdrawal(t, e, "worker@example.com",
		`{"withdrawal_coin":100,"payment_system":"bkash","account_number":"0170000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM withdrawals`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRequest_ExceedsBalance(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Worker", "worker@example.com", "worker", 300)

	rec := requestWithdrawal(t, e, "worker@example.com",
		`{"withdrawal_coin":301,"payment_system":"bkash","account_number":"0170000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM withdrawals`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRequestAndApprove(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Worker", "worker@example.com", "worker", 300)

	rec := requestWithdrawal(t, e, "worker@example.com",
		`{"withdrawal_coin":210,"payment_system":"bkash","account_number":"0170000000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// request alone moves no coins
	assert.EqualValues(t, 300, testutil.Coins(t, pool, "worker@example.com"))

	var id, status, amount string
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT id, status, amount::text FROM withdrawals`).Scan(&id, &status, &amount))
	assert.Equal(t, "pending", status)
	assert.Equal(t, "10.50", amount) // 210 coins / 20

	req := httptest.NewRequest(http.MethodPatch, "/admin/withdraw-approve/"+id, nil)
	arec := httptest.NewRecorder()
	c := e.NewContext(req, arec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("email", "admin@example.com")
	require.NoError(t, withdrawal.Approve(c))
	assert.Equal(t, http.StatusOK, arec.Code)

	// debit happens at approval time
	assert.EqualValues(t, 90, testutil.Coins(t, pool, "worker@example.com"))

	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT status FROM withdrawals WHERE id = $1`, id).Scan(&status))
	assert.Equal(t, "approved", status)

	// a second approval is refused and debits nothing
	arec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPatch, "/admin/withdraw-approve/"+id, nil), arec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("email", "admin@example.com")
	require.NoError(t, withdrawal.Approve(c))
	assert.JSONEq(t, `{"success":false}`, arec.Body.String())
	assert.EqualValues(t, 90, testutil.Coins(t, pool, "worker@example.com"))
}

func TestApprove_MissingRequest(t *testing.T) {
	testutil.SetupDB(t)
	e := testutil.NewEcho()

	req := httptest.NewRequest(http.MethodPatch, "/admin/withdraw-approve/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("00000000-0000-0000-0000-000000000000")
	c.Set("email", "admin@example.com")

	require.NoError(t, withdrawal.Approve(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApprove_BalanceNoLongerCovers(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Worker", "worker@example.com", "worker", 300)

	rec := requestWithdrawal(t, e, "worker@example.com",
		`{"withdrawal_coin":300,"payment_system":"nagad","account_number":"0180000000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// balance shrinks between request and approval
	_, err := pool.Exec(context.Background(),
		`UPDATE users SET coins = 100 WHERE email = 'worker@example.com'`)
	require.NoError(t, err)

	var id string
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT id FROM withdrawals`).Scan(&id))

	req := httptest.NewRequest(http.MethodPatch, "/admin/withdraw-approve/"+id, nil)
	arec := httptest.NewRecorder()
	c := e.NewContext(req, arec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("email", "admin@example.com")
	require.NoError(t, withdrawal.Approve(c))
	assert.Equal(t, http.StatusBadRequest, arec.Code)

	// still pending, nothing debited
	assert.EqualValues(t, 100, testutil.Coins(t, pool, "worker@example.com"))
	var status string
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT status FROM withdrawals WHERE id = $1`, id).Scan(&status))
	assert.Equal(t, "pending", status)
}

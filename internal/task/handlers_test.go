package task_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/submission"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/task"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/testutil"
)

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateTask_DebitsBuyer(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 100)

	c, rec := newJSONContext(e, http.MethodPost, "/tasks",
		`{"task_title":"Watch my video","required_workers":5,"payable_amount":10}`)
	c.Set("email", "buyer@example.com")

	require.NoError(t, task.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// 100 - 5x10
	assert.EqualValues(t, 50, testutil.Coins(t, pool, "buyer@example.com"))

	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM tasks WHERE buyer_email = 'buyer@example.com'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateTask_InsufficientBalance(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 49)

	c, rec := newJSONContext(e, http.MethodPost, "/tasks",
		`{"task_title":"Watch my video","required_workers":5,"payable_amount":10}`)
	c.Set("email", "buyer@example.com")

	require.NoError(t, task.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no debit, no task
	assert.EqualValues(t, 49, testutil.Coins(t, pool, "buyer@example.com"))
	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM tasks`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDeleteTask_RefundsRemainingSlots(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 50)
	taskID := testutil.SeedTask(t, pool, "buyer@example.com", "Buyer", "Watch my video", 5, 10)

	c, rec := newJSONContext(e, http.MethodDelete, "/buyer/tasks/"+taskID, "")
	c.SetParamNames("id")
	c.SetParamValues(taskID)
	c.Set("email", "buyer@example.com")

	require.NoError(t, task.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// refund of 5x10 brings the buyer back to 100
	assert.EqualValues(t, 100, testutil.Coins(t, pool, "buyer@example.com"))

	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM tasks WHERE id = $1`, taskID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDeleteTask_OwnerOnly(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 50)
	testutil.SeedUser(t, pool, "Other", "other@example.com", "buyer", 50)
	taskID := testutil.SeedTask(t, pool, "buyer@example.com", "Buyer", "Watch my video", 5, 10)

	c, rec := newJSONContext(e, http.MethodDelete, "/buyer/tasks/"+taskID, "")
	c.SetParamNames("id")
	c.SetParamValues(taskID)
	c.Set("email", "other@example.com")

	require.NoError(t, task.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// task intact, nobody credited
	assert.EqualValues(t, 50, testutil.Coins(t, pool, "other@example.com"))
	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM tasks WHERE id = $1`, taskID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUpdateTask_OwnerOnly(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 50)
	taskID := testutil.SeedTask(t, pool, "buyer@example.com", "Buyer", "Old title", 5, 10)

	c, rec := newJSONContext(e, http.MethodPatch, "/buyer/tasks/"+taskID,
		`{"task_title":"New title"}`)
	c.SetParamNames("id")
	c.SetParamValues(taskID)
	c.Set("email", "intruder@example.com")

	require.NoError(t, task.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var title string
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT title FROM tasks WHERE id = $1`, taskID).Scan(&title))
	assert.Equal(t, "Old title", title)
}

// Full lifecycle: a buyer with 100 coins posts a 5x10 task, a worker gets
// paid for one slot, then the buyer deletes the task and is refunded the
// remaining slots.
func TestTaskLifecycleLedger(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Buyer", "buyer@example.com", "buyer", 100)
	testutil.SeedUser(t, pool, "Worker", "worker@example.com", "worker", 10)

	c, rec := newJSONContext(e, http.MethodPost, "/tasks",
		`{"task_title":"Watch my video","required_workers":5,"payable_amount":10}`)
	c.Set("email", "buyer@example.com")
	require.NoError(t, task.Create(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 50, testutil.Coins(t, pool, "buyer@example.com"))

	var taskID string
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT id FROM tasks`).Scan(&taskID))

	// worker submits, buyer approves
	c, rec = newJSONContext(e, http.MethodPost, "/worker/task-submit/"+taskID,
		`{"submission_details":"done, proof attached"}`)
	c.SetParamNames("id")
	c.SetParamValues(taskID)
	c.Set("email", "worker@example.com")
	require.NoError(t, submission.Submit(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var subID string
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT id FROM submissions`).Scan(&subID))

	c, rec = newJSONContext(e, http.MethodPatch, "/buyer/submission/approve/"+subID, "")
	c.SetParamNames("id")
	c.SetParamValues(subID)
	c.Set("email", "buyer@example.com")
	require.NoError(t, submission.Approve(c))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.EqualValues(t, 20, testutil.Coins(t, pool, "worker@example.com"))

	// buyer deletes: refund is required_workers x payable_amount as it
	// stands now (still 5, approval does not consume a slot)
	c, rec = newJSONContext(e, http.MethodDelete, "/buyer/tasks/"+taskID, "")
	c.SetParamNames("id")
	c.SetParamValues(taskID)
	c.Set("email", "buyer@example.com")
	require.NoError(t, task.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 100, testutil.Coins(t, pool, "buyer@example.com"))
}

func TestListOpen_FiltersFilledTasks(t *testing.T) {
	pool := testutil.SetupDB(t)
	e := testutil.NewEcho()

	testutil.SeedUser(t, pool, "Alice", "alice@example.com", "buyer", 0)
	testutil.SeedTask(t, pool, "alice@example.com", "Alice", "Open task", 3, 10)
	testutil.SeedTask(t, pool, "alice@example.com", "Alice", "Filled task", 0, 10)
	// buyer record missing entirely
	testutil.SeedTask(t, pool, "ghost@example.com", "Ghost", "Orphan task", 2, 5)

	c, rec := newJSONContext(e, http.MethodGet, "/worker/task-list", "")
	c.Set("email", "worker@example.com")

	require.NoError(t, task.ListOpen(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)

	names := map[string]string{}
	for _, item := range tasks {
		names[item["task_title"].(string)] = item["buyer_name"].(string)
	}
	assert.Equal(t, "Alice", names["Open task"])
	assert.Equal(t, "Unknown", names["Orphan task"])
	assert.NotContains(t, names, "Filled task")
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BearerInjection(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(ListTasksResponse{})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "tok-123" }))
	_, err := c.ListTasks(context.Background(), ListTasksParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(ListTasksResponse{})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "" }))
	_, err := c.ListTasks(context.Background(), ListTasksParams{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_CreateTaskBody(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_ = json.NewEncoder(w).Encode(Task{TaskID: "t-1", Status: TaskPending})
	}))
	defer srv.Close()

	c := New(srv.URL)
	task, err := c.CreateTask(context.Background(), CreateTaskRequest{
		Images:        []string{"a:1", "b:2"},
		BatchSize:     5,
		Priority:      1,
		MaxRetries:    3,
		RetryStrategy: RetryExponential,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/tasks", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, []any{"a:1", "b:2"}, gotBody["images"])
	assert.Equal(t, float64(5), gotBody["batchSize"])
	assert.Equal(t, float64(1), gotBody["priority"])
	assert.Equal(t, "exponential", gotBody["retryStrategy"])
	assert.NotContains(t, gotBody, "password")
	assert.Equal(t, "t-1", task.TaskID)
}

func TestClient_CreateTaskNoImages(t *testing.T) {
	c := New("http://unused.invalid")
	_, err := c.CreateTask(context.Background(), CreateTaskRequest{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestClient_UnauthorizedTriggersHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookCalled := false
	c := New(srv.URL, WithUnauthorizedHook(func() { hookCalled = true }))
	_, err := c.ListTasks(context.Background(), ListTasksParams{Limit: 10})
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.True(t, hookCalled)
}

func TestClient_LoginBadCredentialsSkipsHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookCalled := false
	c := New(srv.URL, WithUnauthorizedHook(func() { hookCalled = true }))
	_, err := c.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.False(t, hookCalled, "bad login credentials must not force a logout")
}

func TestClient_ServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "task is not terminal",
			"details": "status running",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.DeleteTask(context.Background(), "t-1")
	require.Error(t, err)
	assert.False(t, IsAuth(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, "task is not terminal: status running", err.Error())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.ListTasks(context.Background(), ListTasksParams{Limit: 10})
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestClient_PaginationConventions(t *testing.T) {
	var taskQuery, secretQuery, execPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/tasks":
			taskQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(ListTasksResponse{})
		case r.URL.Path == "/api/v1/secrets":
			secretQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(ListSecretsResponse{})
		default:
			execPath = r.URL.Path
			_ = json.NewEncoder(w).Encode(ListExecutionsResponse{})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.ListTasks(ctx, ListTasksParams{Limit: 10, Offset: 20, Status: TaskRunning})
	require.NoError(t, err)
	assert.Contains(t, taskQuery, "limit=10")
	assert.Contains(t, taskQuery, "offset=20")
	assert.Contains(t, taskQuery, "status=running")

	_, err = c.ListSecrets(ctx, 3, 25)
	require.NoError(t, err)
	assert.Contains(t, secretQuery, "page=3")
	assert.Contains(t, secretQuery, "pageSize=25")

	_, err = c.ListExecutions(ctx, "sched-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/scheduled-tasks/sched-1/executions", execPath)
}

func TestClient_ScheduledTaskActions(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	require.NoError(t, c.EnableScheduledTask(ctx, "s1"))
	require.NoError(t, c.DisableScheduledTask(ctx, "s1"))
	require.NoError(t, c.TriggerScheduledTask(ctx, "s1"))

	want := []call{
		{http.MethodPut, "/api/v1/scheduled-tasks/s1/enable"},
		{http.MethodPut, "/api/v1/scheduled-tasks/s1/disable"},
		{http.MethodPost, "/api/v1/scheduled-tasks/s1/trigger"},
	}
	assert.Equal(t, want, calls)
}

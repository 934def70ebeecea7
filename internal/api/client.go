// Package api is the typed HTTP gateway to the pre-pull service. It is the
// single point that injects bearer credentials and detects session expiry;
// it performs no retries — retry policy belongs to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
)

// TokenSource supplies the current session token, or "" when logged out.
type TokenSource func() string

// Client talks to one pre-pull service instance.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          TokenSource
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource sets where the client reads the bearer token from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithUnauthorizedHook registers a callback invoked on any 401 response.
// The hook runs before the error is returned to the caller.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a Client for the service at baseURL (scheme://host[:port]).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serverError is the backend's structured error body.
type serverError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// do issues one request and decodes the response into out (may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "encoding request body", Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &Error{Kind: KindAuth, Status: resp.StatusCode, Message: "session invalid or expired"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se serverError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = json.Unmarshal(data, &se)
		msg := se.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: msg, Detail: se.Details}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "decoding response", Err: err}
		}
	}
	return nil
}

// Login authenticates and returns a token plus the user profile. It is the
// one endpoint called without a bearer token; a 401 here means bad
// credentials, not an expired session, so the unauthorized hook is skipped.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := LoginRequest{Username: username, Password: password}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "encoding credentials", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/login", bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &Error{Kind: KindAuth, Status: resp.StatusCode, Message: "invalid username or password"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se serverError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = json.Unmarshal(raw, &se)
		msg := se.Error
		if msg == "" {
			msg = fmt.Sprintf("login failed with status %d", resp.StatusCode)
		}
		return nil, &Error{Kind: KindServer, Status: resp.StatusCode, Message: msg, Detail: se.Details}
	}

	var lr LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, &Error{Kind: KindServer, Message: "decoding login response", Err: err}
	}
	return &lr, nil
}

// ListTasksParams filters GET /tasks. Status "" means all.
type ListTasksParams struct {
	Limit  int
	Offset int
	Status TaskStatus
}

// ListTasks returns one page of tasks.
func (c *Client) ListTasks(ctx context.Context, p ListTasksParams) (*ListTasksResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	var out ListTasksResponse
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/tasks", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask fetches one task with full progress and failure detail.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/tasks/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask submits a new pull task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	if len(req.Images) == 0 {
		return nil, NewValidationError("at least one image is required")
	}
	var out Task
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/tasks", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelTask cancels a pending or running task.
func (c *Client) CancelTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/tasks/"+url.PathEscape(id)+"/cancel", nil, nil, nil)
}

// DeleteTask removes a terminal task record.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// ListScheduledTasksParams filters GET /scheduled-tasks. Enabled nil means all.
type ListScheduledTasksParams struct {
	Limit   int
	Offset  int
	Enabled *bool
}

// ListScheduledTasks returns one page of schedules.
func (c *Client) ListScheduledTasks(ctx context.Context, p ListScheduledTasksParams) (*ListScheduledTasksResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Enabled != nil {
		q.Set("enabled", strconv.FormatBool(*p.Enabled))
	}
	var out ListScheduledTasksResponse
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/scheduled-tasks", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScheduledTask fetches one schedule.
func (c *Client) GetScheduledTask(ctx context.Context, id string) (*ScheduledTask, error) {
	var out ScheduledTask
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/scheduled-tasks/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateScheduledTask registers a new cron schedule.
func (c *Client) CreateScheduledTask(ctx context.Context, req CreateScheduledTaskRequest) (*ScheduledTask, error) {
	var out ScheduledTask
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/scheduled-tasks", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateScheduledTask edits an existing schedule.
func (c *Client) UpdateScheduledTask(ctx context.Context, id string, req UpdateScheduledTaskRequest) (*ScheduledTask, error) {
	var out ScheduledTask
	if err := c.do(ctx, http.MethodPut, apiPrefix+"/scheduled-tasks/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteScheduledTask removes a schedule and stops future firings.
func (c *Client) DeleteScheduledTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/scheduled-tasks/"+url.PathEscape(id), nil, nil, nil)
}

// EnableScheduledTask turns a schedule on.
func (c *Client) EnableScheduledTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, apiPrefix+"/scheduled-tasks/"+url.PathEscape(id)+"/enable", nil, nil, nil)
}

// DisableScheduledTask turns a schedule off without deleting it.
func (c *Client) DisableScheduledTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, apiPrefix+"/scheduled-tasks/"+url.PathEscape(id)+"/disable", nil, nil, nil)
}

// TriggerScheduledTask fires a schedule immediately, outside its cron.
func (c *Client) TriggerScheduledTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/scheduled-tasks/"+url.PathEscape(id)+"/trigger", nil, nil, nil)
}

// ListExecutions returns the firing history of one schedule.
func (c *Client) ListExecutions(ctx context.Context, scheduledTaskID string, limit, offset int) (*ListExecutionsResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out ListExecutionsResponse
	path := apiPrefix + "/scheduled-tasks/" + url.PathEscape(scheduledTaskID) + "/executions"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetExecution fetches one execution record.
func (c *Client) GetExecution(ctx context.Context, scheduledTaskID string, executionID int64) (*ScheduledExecution, error) {
	var out ScheduledExecution
	path := apiPrefix + "/scheduled-tasks/" + url.PathEscape(scheduledTaskID) + "/executions/" + strconv.FormatInt(executionID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLibrary returns one page of saved image references.
func (c *Client) ListLibrary(ctx context.Context, limit, offset int) (*ListImagesResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out ListImagesResponse
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/library", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveImage adds an image reference to the library.
func (c *Client) SaveImage(ctx context.Context, req SaveImageRequest) error {
	if req.Image == "" {
		return NewValidationError("image reference is required")
	}
	return c.do(ctx, http.MethodPost, apiPrefix+"/library", nil, req, nil)
}

// DeleteImage removes a library entry.
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/library/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// ListSecrets returns one page of secrets. This resource paginates with
// page/pageSize on the wire, unlike every other list endpoint.
func (c *Client) ListSecrets(ctx context.Context, page, pageSize int) (*ListSecretsResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	var out ListSecretsResponse
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/secrets", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSecret fetches one secret's metadata (never the password).
func (c *Client) GetSecret(ctx context.Context, id int64) (*Secret, error) {
	var out Secret
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/secrets/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSecret stores a new registry credential.
func (c *Client) CreateSecret(ctx context.Context, req CreateSecretRequest) (*Secret, error) {
	if req.Name == "" || req.Registry == "" {
		return nil, NewValidationError("name and registry are required")
	}
	var out Secret
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/secrets", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSecret edits a secret; an empty password leaves it unchanged.
func (c *Client) UpdateSecret(ctx context.Context, id int64, req UpdateSecretRequest) (*Secret, error) {
	var out Secret
	if err := c.do(ctx, http.MethodPut, apiPrefix+"/secrets/"+strconv.FormatInt(id, 10), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSecret removes a stored credential.
func (c *Client) DeleteSecret(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/secrets/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// ListUsers returns all operator accounts. The endpoint is not paginated.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser adds an operator account.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, NewValidationError("username and password are required")
	}
	var out User
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/users", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser changes a user's role or password.
func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) error {
	return c.do(ctx, http.MethodPut, apiPrefix+"/users/"+strconv.FormatInt(id, 10), nil, req, nil)
}

// DeleteUser removes an operator account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/users/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Stats returns cluster node coverage.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var out StatsResponse
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

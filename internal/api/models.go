package api

// Wire types for the pre-pull service REST API. Field names follow the
// server's JSON exactly; timestamps are RFC 3339 strings as sent by the
// backend and are not parsed unless a view needs them.

// UserRole is either "admin" or "viewer".
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleViewer UserRole = "viewer"
)

// User is an operator account.
type User struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// LoginRequest is the credential payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateUserRequest creates an operator account.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// UpdateUserRequest changes a user's role or password. Zero-valued fields
// are omitted from the payload.
type UpdateUserRequest struct {
	Role        UserRole `json:"role,omitempty"`
	NewPassword string   `json:"newPassword,omitempty"`
}

// TaskStatus is the server-owned lifecycle state of a pull task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Terminal reports whether a task in this status can no longer change.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

// RetryStrategy selects the backend's backoff curve for failed node pulls.
type RetryStrategy string

const (
	RetryLinear      RetryStrategy = "linear"
	RetryExponential RetryStrategy = "exponential"
)

// Progress is node-level completion state for a running task.
type Progress struct {
	TotalNodes     int     `json:"totalNodes"`
	CompletedNodes int     `json:"completedNodes"`
	FailedNodes    int     `json:"failedNodes"`
	CurrentBatch   int     `json:"currentBatch"`
	TotalBatches   int     `json:"totalBatches"`
	Percentage     float64 `json:"percentage"`
}

// FailedNode describes one node that could not pull one image.
type FailedNode struct {
	NodeName  string `json:"nodeName"`
	Image     string `json:"image"`
	Reason    string `json:"reason"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Task is one image-distribution job. The client never mutates a Task in
// place; it creates, cancels or deletes and re-fetches to observe state.
type Task struct {
	TaskID            string            `json:"taskId"`
	Status            TaskStatus        `json:"status"`
	Priority          int               `json:"priority"`
	Images            []string          `json:"images"`
	BatchSize         int               `json:"batchSize"`
	NodeSelector      map[string]string `json:"nodeSelector,omitempty"`
	Progress          *Progress         `json:"progress,omitempty"`
	FailedNodeDetails []FailedNode      `json:"failedNodeDetails,omitempty"`
	MaxRetries        int               `json:"maxRetries"`
	RetryCount        int               `json:"retryCount"`
	RetryStrategy     RetryStrategy     `json:"retryStrategy"`
	RetryDelay        int               `json:"retryDelay,omitempty"`
	WebhookURL        string            `json:"webhookUrl,omitempty"`
	SecretName        string            `json:"secretName,omitempty"`
	SecretID          int64             `json:"secretId,omitempty"`
	Registry          string            `json:"registry,omitempty"`
	Username          string            `json:"username,omitempty"`
	CreatedAt         string            `json:"createdAt"`
	StartedAt         string            `json:"startedAt,omitempty"`
	FinishedAt        string            `json:"finishedAt,omitempty"`
	ErrorMessage      string            `json:"errorMessage,omitempty"`
}

// CreateTaskRequest is the body for POST /tasks.
type CreateTaskRequest struct {
	Images        []string          `json:"images"`
	BatchSize     int               `json:"batchSize"`
	Priority      int               `json:"priority"`
	NodeSelector  map[string]string `json:"nodeSelector,omitempty"`
	MaxRetries    int               `json:"maxRetries"`
	RetryStrategy RetryStrategy     `json:"retryStrategy"`
	RetryDelay    int               `json:"retryDelay,omitempty"`
	WebhookURL    string            `json:"webhookUrl,omitempty"`
	SecretID      int64             `json:"secretId,omitempty"`
	Registry      string            `json:"registry,omitempty"`
	Username      string            `json:"username,omitempty"`
	Password      string            `json:"password,omitempty"`
}

// ListTasksResponse is the paged result of GET /tasks.
type ListTasksResponse struct {
	Tasks  []Task `json:"tasks"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// OverlapPolicy governs a new firing while a prior execution still runs.
type OverlapPolicy string

const (
	OverlapSkip  OverlapPolicy = "skip"
	OverlapAllow OverlapPolicy = "allow"
	OverlapQueue OverlapPolicy = "queue"
)

// TaskConfig is the task template embedded in a scheduled task.
type TaskConfig struct {
	Images        []string          `json:"images"`
	BatchSize     int               `json:"batchSize"`
	Priority      int               `json:"priority"`
	NodeSelector  map[string]string `json:"nodeSelector,omitempty"`
	MaxRetries    int               `json:"maxRetries"`
	RetryStrategy RetryStrategy     `json:"retryStrategy"`
	RetryDelay    int               `json:"retryDelay"`
	WebhookURL    string            `json:"webhookUrl,omitempty"`
	SecretID      int64             `json:"secretId,omitempty"`
	Registry      string            `json:"registry,omitempty"`
	Username      string            `json:"username,omitempty"`
	Password      string            `json:"password,omitempty"`
}

// ScheduledTask is a cron-driven template that produces Tasks on firing.
type ScheduledTask struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	CronExpr        string        `json:"cronExpr"`
	Enabled         bool          `json:"enabled"`
	TaskConfig      TaskConfig    `json:"taskConfig"`
	OverlapPolicy   OverlapPolicy `json:"overlapPolicy"`
	TimeoutSeconds  int           `json:"timeoutSeconds"`
	LastExecutionAt string        `json:"lastExecutionAt,omitempty"`
	NextExecutionAt string        `json:"nextExecutionAt,omitempty"`
	CreatedBy       string        `json:"createdBy"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

// CreateScheduledTaskRequest is the body for POST /scheduled-tasks.
type CreateScheduledTaskRequest struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	CronExpr       string        `json:"cronExpr"`
	Enabled        bool          `json:"enabled"`
	TaskConfig     TaskConfig    `json:"taskConfig"`
	OverlapPolicy  OverlapPolicy `json:"overlapPolicy"`
	TimeoutSeconds int           `json:"timeoutSeconds"`
}

// UpdateScheduledTaskRequest is the body for PUT /scheduled-tasks/:id.
// Nil/zero fields are omitted so the server treats them as "unchanged".
type UpdateScheduledTaskRequest struct {
	Name           string        `json:"name,omitempty"`
	Description    string        `json:"description,omitempty"`
	CronExpr       string        `json:"cronExpr,omitempty"`
	Enabled        *bool         `json:"enabled,omitempty"`
	TaskConfig     *TaskConfig   `json:"taskConfig,omitempty"`
	OverlapPolicy  OverlapPolicy `json:"overlapPolicy,omitempty"`
	TimeoutSeconds int           `json:"timeoutSeconds,omitempty"`
}

// ListScheduledTasksResponse is the paged result of GET /scheduled-tasks.
type ListScheduledTasksResponse struct {
	Tasks  []ScheduledTask `json:"tasks"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ExecutionStatus is the outcome of one scheduled firing.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionSkipped ExecutionStatus = "skipped"
	ExecutionTimeout ExecutionStatus = "timeout"
)

// ScheduledExecution is a read-only history record, one per firing.
type ScheduledExecution struct {
	ID              int64           `json:"id"`
	ScheduledTaskID string          `json:"scheduledTaskId"`
	TaskID          string          `json:"taskId"`
	Status          ExecutionStatus `json:"status"`
	StartedAt       string          `json:"startedAt"`
	FinishedAt      string          `json:"finishedAt,omitempty"`
	DurationSeconds float64         `json:"durationSeconds"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	TriggeredAt     string          `json:"triggeredAt"`
}

// ListExecutionsResponse is the paged result of GET /scheduled-tasks/:id/executions.
type ListExecutionsResponse struct {
	Executions []ScheduledExecution `json:"executions"`
	Total      int                  `json:"total"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// LibraryImage is a reusable named image reference.
type LibraryImage struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	CreatedAt string `json:"createdAt"`
}

// SaveImageRequest adds an image to the library.
type SaveImageRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ListImagesResponse is the paged result of GET /library.
type ListImagesResponse struct {
	Images []LibraryImage `json:"images"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Secret is registry credential metadata. The password is write-only and
// never returned by reads.
type Secret struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Registry  string `json:"registry"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateSecretRequest is the body for POST /secrets.
type CreateSecretRequest struct {
	Name     string `json:"name"`
	Registry string `json:"registry"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateSecretRequest is the body for PUT /secrets/:id.
type UpdateSecretRequest struct {
	Name     string `json:"name,omitempty"`
	Registry string `json:"registry,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ListSecretsResponse is the paged result of GET /secrets. Secrets are the
// one resource paginated with page/pageSize instead of limit/offset.
type ListSecretsResponse struct {
	Secrets  []Secret `json:"secrets"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

// NodeStats summarizes cluster node readiness.
type NodeStats struct {
	Total    int     `json:"total"`
	Ready    int     `json:"ready"`
	Coverage float64 `json:"coverage"`
}

// StatsResponse is the result of GET /stats.
type StatsResponse struct {
	Nodes NodeStats `json:"nodes"`
}

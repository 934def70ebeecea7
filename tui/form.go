package tui

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/schedule"
)

// field is one text input in a modal form.
type field struct {
	label       string
	value       string
	placeholder string
	secret      bool
}

// form is a minimal focus-tracking set of text inputs. It deliberately
// stays small: the console's forms are a handful of short fields each.
type form struct {
	title  string
	fields []field
	focus  int
}

func (f *form) current() *field {
	if len(f.fields) == 0 {
		return nil
	}
	return &f.fields[f.focus]
}

func (f *form) next() { f.focus = (f.focus + 1) % len(f.fields) }

func (f *form) prev() {
	f.focus--
	if f.focus < 0 {
		f.focus = len(f.fields) - 1
	}
}

// handleKey consumes one key event. It returns false for keys the form
// does not handle (escape, enter), which the caller routes.
func (f *form) handleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		f.next()
		return true
	case tea.KeyShiftTab, tea.KeyUp:
		f.prev()
		return true
	case tea.KeyBackspace:
		if fld := f.current(); fld != nil && len(fld.value) > 0 {
			fld.value = trimLastRune(fld.value)
		}
		return true
	case tea.KeySpace:
		if fld := f.current(); fld != nil {
			fld.value += " "
		}
		return true
	case tea.KeyRunes:
		if fld := f.current(); fld != nil {
			fld.value += string(msg.Runes)
		}
		return true
	}
	return false
}

// trimLastRune removes the final rune, not the final byte, so deleting
// multibyte input never leaves invalid UTF-8 in the buffer.
func trimLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

func (f *form) get(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return strings.TrimSpace(fld.value)
		}
	}
	return ""
}

// Field labels are referenced by both form constructors and parsers, so
// they are constants rather than repeated literals.
const (
	fldUsername      = "Username"
	fldPassword      = "Password"
	fldConfirm       = "Confirm password"
	fldImages        = "Images"
	fldBatchSize     = "Batch size"
	fldPriority      = "Priority"
	fldMaxRetries    = "Max retries"
	fldRetryStrategy = "Retry strategy"
	fldNodeSelector  = "Node selector (JSON)"
	fldSecretID      = "Secret ID"
	fldRegistry      = "Registry"
	fldRegUsername   = "Registry username"
	fldRegPassword   = "Registry password"
	fldName          = "Name"
	fldDescription   = "Description"
	fldCron          = "Cron"
	fldOverlap       = "Overlap policy"
	fldTimeout       = "Timeout seconds"
	fldEnabled       = "Enabled"
	fldImage         = "Image"
	fldRole          = "Role"
	fldNewPassword   = "New password"
)

func newLoginForm() form {
	return form{
		title: "Sign in",
		fields: []field{
			{label: fldUsername},
			{label: fldPassword, secret: true},
		},
	}
}

func newTaskForm() form {
	return form{
		title: "Create task",
		fields: []field{
			{label: fldImages, placeholder: "nginx:1.25, redis:7"},
			{label: fldBatchSize, value: "10"},
			{label: fldPriority, value: "0"},
			{label: fldMaxRetries, value: "3"},
			{label: fldRetryStrategy, value: "exponential"},
			{label: fldNodeSelector, placeholder: `{"role":"worker"}`},
			{label: fldSecretID},
			{label: fldRegistry},
			{label: fldRegUsername},
			{label: fldRegPassword, secret: true},
		},
	}
}

func newScheduleForm() form {
	return form{
		title: "Create scheduled task",
		fields: []field{
			{label: fldName},
			{label: fldDescription},
			{label: fldCron, placeholder: "0 2 * * *"},
			{label: fldImages, placeholder: "nginx:1.25, redis:7"},
			{label: fldBatchSize, value: "10"},
			{label: fldPriority, value: "0"},
			{label: fldOverlap, value: "skip"},
			{label: fldTimeout, value: "3600"},
			{label: fldEnabled, value: "yes"},
		},
	}
}

func newImageForm() form {
	return form{
		title: "Add library image",
		fields: []field{
			{label: fldName},
			{label: fldImage, placeholder: "registry.example.com/app:1.0"},
		},
	}
}

func newSecretForm() form {
	return form{
		title: "Create secret",
		fields: []field{
			{label: fldName},
			{label: fldRegistry},
			{label: fldUsername},
			{label: fldPassword, secret: true},
			{label: fldConfirm, secret: true},
		},
	}
}

func newUserForm() form {
	return form{
		title: "Create user",
		fields: []field{
			{label: fldUsername},
			{label: fldPassword, secret: true},
			{label: fldConfirm, secret: true},
			{label: fldRole, value: "viewer"},
		},
	}
}

func newPasswordForm(username string) form {
	return form{
		title: "Change password: " + username,
		fields: []field{
			{label: fldNewPassword, secret: true},
			{label: fldConfirm, secret: true},
		},
	}
}

// splitImages accepts comma or whitespace separated image references.
func splitImages(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTaskForm validates the create-task form and builds the request.
// All validation failures surface inline before any request is sent.
func parseTaskForm(f *form) (*api.CreateTaskRequest, error) {
	images := splitImages(f.get(fldImages))
	if len(images) == 0 {
		return nil, api.NewValidationError("at least one image is required")
	}

	batchSize, err := parsePositiveInt(f.get(fldBatchSize), fldBatchSize)
	if err != nil {
		return nil, err
	}
	priority, err := parseIntDefault(f.get(fldPriority), 0, fldPriority)
	if err != nil {
		return nil, err
	}
	maxRetries, err := parseIntDefault(f.get(fldMaxRetries), 3, fldMaxRetries)
	if err != nil {
		return nil, err
	}

	strategy := api.RetryStrategy(f.get(fldRetryStrategy))
	if strategy != api.RetryLinear && strategy != api.RetryExponential {
		return nil, api.NewValidationError("retry strategy must be linear or exponential")
	}

	req := &api.CreateTaskRequest{
		Images:        images,
		BatchSize:     batchSize,
		Priority:      priority,
		MaxRetries:    maxRetries,
		RetryStrategy: strategy,
	}

	if raw := f.get(fldNodeSelector); raw != "" {
		var sel map[string]string
		if err := json.Unmarshal([]byte(raw), &sel); err != nil {
			return nil, api.NewValidationError("node selector is not a valid JSON object of strings")
		}
		req.NodeSelector = sel
	}

	// Registry auth: either a stored secret by id, or manual credentials.
	if raw := f.get(fldSecretID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, api.NewValidationError("secret ID must be a number")
		}
		req.SecretID = id
	} else if reg := f.get(fldRegistry); reg != "" {
		user := f.get(fldRegUsername)
		pass := f.get(fldRegPassword)
		if user == "" || pass == "" {
			return nil, api.NewValidationError("registry credentials require username and password")
		}
		req.Registry = reg
		req.Username = user
		req.Password = pass
	}

	return req, nil
}

// parseScheduleForm validates the create-schedule form, including the
// cron expression, and builds the request.
func parseScheduleForm(f *form) (*api.CreateScheduledTaskRequest, error) {
	name := f.get(fldName)
	if name == "" {
		return nil, api.NewValidationError("name is required")
	}

	cronExpr := f.get(fldCron)
	if err := schedule.Validate(cronExpr); err != nil {
		return nil, api.NewValidationError("%v", err)
	}

	images := splitImages(f.get(fldImages))
	if len(images) == 0 {
		return nil, api.NewValidationError("at least one image is required")
	}

	batchSize, err := parsePositiveInt(f.get(fldBatchSize), fldBatchSize)
	if err != nil {
		return nil, err
	}
	priority, err := parseIntDefault(f.get(fldPriority), 0, fldPriority)
	if err != nil {
		return nil, err
	}
	timeout, err := parseIntDefault(f.get(fldTimeout), 3600, fldTimeout)
	if err != nil {
		return nil, err
	}

	policy := api.OverlapPolicy(f.get(fldOverlap))
	switch policy {
	case api.OverlapSkip, api.OverlapAllow, api.OverlapQueue:
	default:
		return nil, api.NewValidationError("overlap policy must be skip, allow or queue")
	}

	return &api.CreateScheduledTaskRequest{
		Name:        name,
		Description: f.get(fldDescription),
		CronExpr:    cronExpr,
		Enabled:     parseBool(f.get(fldEnabled)),
		TaskConfig: api.TaskConfig{
			Images:        images,
			BatchSize:     batchSize,
			Priority:      priority,
			MaxRetries:    3,
			RetryStrategy: api.RetryExponential,
		},
		OverlapPolicy:  policy,
		TimeoutSeconds: timeout,
	}, nil
}

func parseSecretForm(f *form) (*api.CreateSecretRequest, error) {
	if f.get(fldName) == "" || f.get(fldRegistry) == "" {
		return nil, api.NewValidationError("name and registry are required")
	}
	pass := f.get(fldPassword)
	if pass == "" {
		return nil, api.NewValidationError("password is required")
	}
	if pass != f.get(fldConfirm) {
		return nil, api.NewValidationError("passwords do not match")
	}
	return &api.CreateSecretRequest{
		Name:     f.get(fldName),
		Registry: f.get(fldRegistry),
		Username: f.get(fldUsername),
		Password: pass,
	}, nil
}

func parseUserForm(f *form) (*api.CreateUserRequest, error) {
	username := f.get(fldUsername)
	if username == "" {
		return nil, api.NewValidationError("username is required")
	}
	pass := f.get(fldPassword)
	if pass == "" {
		return nil, api.NewValidationError("password is required")
	}
	if pass != f.get(fldConfirm) {
		return nil, api.NewValidationError("passwords do not match")
	}
	role := api.UserRole(f.get(fldRole))
	if role != api.RoleAdmin && role != api.RoleViewer {
		return nil, api.NewValidationError("role must be admin or viewer")
	}
	return &api.CreateUserRequest{Username: username, Password: pass, Role: role}, nil
}

func parsePasswordForm(f *form) (string, error) {
	pass := f.get(fldNewPassword)
	if pass == "" {
		return "", api.NewValidationError("password is required")
	}
	if pass != f.get(fldConfirm) {
		return "", api.NewValidationError("passwords do not match")
	}
	return pass, nil
}

func parsePositiveInt(raw, label string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, api.NewValidationError("%s must be a positive number", strings.ToLower(label))
	}
	return n, nil
}

func parseIntDefault(raw string, def int, label string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, api.NewValidationError("%s must be a non-negative number", strings.ToLower(label))
	}
	return n, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "yes", "y", "true", "1", "on":
		return true
	}
	return false
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/schedule"
)

// taskSpec is the YAML shape accepted by 'task create -f'. It mirrors the
// create request but with scripting-friendly defaults.
type taskSpec struct {
	Images        []string          `yaml:"images"`
	BatchSize     int               `yaml:"batchSize"`
	Priority      int               `yaml:"priority"`
	NodeSelector  map[string]string `yaml:"nodeSelector"`
	MaxRetries    int               `yaml:"maxRetries"`
	RetryStrategy string            `yaml:"retryStrategy"`
	WebhookURL    string            `yaml:"webhookUrl"`
	SecretID      int64             `yaml:"secretId"`
	Registry      string            `yaml:"registry"`
	Username      string            `yaml:"username"`
	Password      string            `yaml:"password"`
}

type scheduleSpec struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Cron           string   `yaml:"cron"`
	Enabled        *bool    `yaml:"enabled"`
	OverlapPolicy  string   `yaml:"overlapPolicy"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
	Task           taskSpec `yaml:"task"`
}

func loadTaskSpec(path string) (*api.CreateTaskRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec taskSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return spec.toRequest()
}

func (spec taskSpec) toRequest() (*api.CreateTaskRequest, error) {
	if len(spec.Images) == 0 {
		return nil, fmt.Errorf("spec must list at least one image")
	}
	cfg, err := spec.toConfig()
	if err != nil {
		return nil, err
	}
	return &api.CreateTaskRequest{
		Images:        cfg.Images,
		BatchSize:     cfg.BatchSize,
		Priority:      cfg.Priority,
		NodeSelector:  cfg.NodeSelector,
		MaxRetries:    cfg.MaxRetries,
		RetryStrategy: cfg.RetryStrategy,
		WebhookURL:    cfg.WebhookURL,
		SecretID:      cfg.SecretID,
		Registry:      cfg.Registry,
		Username:      cfg.Username,
		Password:      cfg.Password,
	}, nil
}

func (spec taskSpec) toConfig() (*api.TaskConfig, error) {
	batchSize := spec.BatchSize
	if batchSize == 0 {
		batchSize = 10
	}
	maxRetries := spec.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	strategy := api.RetryStrategy(spec.RetryStrategy)
	if strategy == "" {
		strategy = api.RetryExponential
	}
	if strategy != api.RetryLinear && strategy != api.RetryExponential {
		return nil, fmt.Errorf("retryStrategy must be linear or exponential, got %q", spec.RetryStrategy)
	}
	if spec.SecretID != 0 && spec.Registry != "" {
		return nil, fmt.Errorf("secretId and manual registry credentials are mutually exclusive")
	}
	return &api.TaskConfig{
		Images:        spec.Images,
		BatchSize:     batchSize,
		Priority:      spec.Priority,
		NodeSelector:  spec.NodeSelector,
		MaxRetries:    maxRetries,
		RetryStrategy: strategy,
		WebhookURL:    spec.WebhookURL,
		SecretID:      spec.SecretID,
		Registry:      spec.Registry,
		Username:      spec.Username,
		Password:      spec.Password,
	}, nil
}

func loadScheduleSpec(path string) (*api.CreateScheduledTaskRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec scheduleSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("spec must set name")
	}
	if err := schedule.Validate(spec.Cron); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	if len(spec.Task.Images) == 0 {
		return nil, fmt.Errorf("spec must list at least one image under task")
	}

	cfg, err := spec.Task.toConfig()
	if err != nil {
		return nil, err
	}

	policy := api.OverlapPolicy(spec.OverlapPolicy)
	if policy == "" {
		policy = api.OverlapSkip
	}
	switch policy {
	case api.OverlapSkip, api.OverlapAllow, api.OverlapQueue:
	default:
		return nil, fmt.Errorf("overlapPolicy must be skip, allow or queue, got %q", spec.OverlapPolicy)
	}

	timeout := spec.TimeoutSeconds
	if timeout == 0 {
		timeout = 3600
	}
	enabled := true
	if spec.Enabled != nil {
		enabled = *spec.Enabled
	}

	return &api.CreateScheduledTaskRequest{
		Name:           spec.Name,
		Description:    spec.Description,
		CronExpr:       spec.Cron,
		Enabled:        enabled,
		TaskConfig:     *cfg,
		OverlapPolicy:  policy,
		TimeoutSeconds: timeout,
	}, nil
}

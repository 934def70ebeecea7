package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imageops/pullconsole/internal/api"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTaskSpec(t *testing.T) {
	path := writeSpec(t, `
images:
  - nginx:1.25
  - redis:7
batchSize: 5
priority: 2
nodeSelector:
  role: worker
secretId: 4
`)

	req, err := loadTaskSpec(path)
	if err != nil {
		t.Fatalf("loadTaskSpec: %v", err)
	}
	if len(req.Images) != 2 || req.Images[0] != "nginx:1.25" {
		t.Errorf("images = %v", req.Images)
	}
	if req.BatchSize != 5 || req.Priority != 2 {
		t.Errorf("batchSize=%d priority=%d", req.BatchSize, req.Priority)
	}
	if req.NodeSelector["role"] != "worker" {
		t.Errorf("nodeSelector = %v", req.NodeSelector)
	}
	if req.SecretID != 4 {
		t.Errorf("secretId = %d", req.SecretID)
	}
	// Unset fields fall back to server-compatible defaults.
	if req.MaxRetries != 3 || req.RetryStrategy != api.RetryExponential {
		t.Errorf("defaults: retries=%d strategy=%s", req.MaxRetries, req.RetryStrategy)
	}
}

func TestLoadTaskSpecRejectsConflictingAuth(t *testing.T) {
	path := writeSpec(t, `
images: [nginx:1.25]
secretId: 4
registry: registry.example.com
username: u
password: p
`)
	_, err := loadTaskSpec(path)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("err = %v, want mutually exclusive auth rejection", err)
	}
}

func TestLoadTaskSpecRequiresImages(t *testing.T) {
	path := writeSpec(t, `batchSize: 5`)
	if _, err := loadTaskSpec(path); err == nil {
		t.Error("expected error for spec without images")
	}
}

func TestLoadScheduleSpec(t *testing.T) {
	path := writeSpec(t, `
name: nightly-base-images
description: warm base images before the morning deploys
cron: "0 2 * * *"
task:
  images: [nginx:1.25]
  batchSize: 20
`)

	req, err := loadScheduleSpec(path)
	if err != nil {
		t.Fatalf("loadScheduleSpec: %v", err)
	}
	if req.Name != "nightly-base-images" || req.CronExpr != "0 2 * * *" {
		t.Errorf("name=%q cron=%q", req.Name, req.CronExpr)
	}
	if !req.Enabled {
		t.Error("enabled should default to true")
	}
	if req.OverlapPolicy != api.OverlapSkip || req.TimeoutSeconds != 3600 {
		t.Errorf("defaults: policy=%s timeout=%d", req.OverlapPolicy, req.TimeoutSeconds)
	}
	if req.TaskConfig.BatchSize != 20 {
		t.Errorf("task batchSize = %d", req.TaskConfig.BatchSize)
	}
}

func TestLoadScheduleSpecRejectsBadCron(t *testing.T) {
	path := writeSpec(t, `
name: broken
cron: "not a cron"
task:
  images: [nginx:1.25]
`)
	if _, err := loadScheduleSpec(path); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

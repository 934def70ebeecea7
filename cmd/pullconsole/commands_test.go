package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/config"
	"github.com/imageops/pullconsole/internal/session"
)

func TestNewClientClearsSessionOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sessionPath := filepath.Join(t.TempDir(), "session.json")
	guard := session.NewGuard(sessionPath)
	if err := guard.Establish(session.Session{
		Token: "stale-token",
		User:  api.User{ID: 1, Username: "op", Role: api.RoleViewer},
	}); err != nil {
		t.Fatalf("establish: %v", err)
	}

	cfg := config.Default()
	cfg.Server.URL = srv.URL

	client := newClient(cfg, guard)
	_, err := client.ListTasks(context.Background(), api.ListTasksParams{Limit: 10})
	if !api.IsAuth(err) {
		t.Fatalf("err = %v, want auth error", err)
	}

	// The 401 must destroy the stored session, in memory and on disk.
	if guard.Token() != "" {
		t.Errorf("token = %q, want cleared", guard.Token())
	}
	if guard.IsAuthenticated() {
		t.Error("guard still authenticated after 401")
	}
	if _, statErr := os.Stat(sessionPath); !os.IsNotExist(statErr) {
		t.Error("session file still exists after 401")
	}
}

// Package session holds the single authenticated session that gates all
// access to the pre-pull service. The session is persisted to a fixed file
// under the user config dir and restored on construction; every other piece
// of client state is rebuilt from the server on each run.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/imageops/pullconsole/internal/api"
)

// Session is the persisted identity: opaque bearer token plus user profile.
type Session struct {
	Token string   `json:"token"`
	User  api.User `json:"user"`
}

// Guard owns the current session. Reads are frequent (every outbound
// request); writes happen only on login and logout.
type Guard struct {
	path string

	mu      sync.RWMutex
	current *Session
}

// DefaultPath returns the fixed session file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pullconsole", "session.json"), nil
}

// NewGuard creates a Guard and attempts to restore a persisted session.
// A missing or corrupt session file is non-fatal and equivalent to "no
// session".
func NewGuard(path string) *Guard {
	g := &Guard{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return g
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil || s.Token == "" {
		return g
	}
	g.current = &s
	return g
}

// Token returns the current bearer token, or "" when logged out.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return ""
	}
	return g.current.Token
}

// Current returns a copy of the session, or nil when logged out.
func (g *Guard) Current() *Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil
	}
	s := *g.current
	return &s
}

// IsAuthenticated reports whether a usable session exists. A token whose
// JWT expiry is already in the past counts as absent, so the caller lands
// on the login screen instead of on a guaranteed 401.
func (g *Guard) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil || g.current.Token == "" {
		return false
	}
	if exp, ok := tokenExpiry(g.current.Token); ok && time.Now().After(exp) {
		return false
	}
	return true
}

// IsAdmin reports whether the session user has the admin role.
func (g *Guard) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current != nil && g.current.User.Role == api.RoleAdmin
}

// Establish stores a freshly authenticated session and persists it.
func (g *Guard) Establish(s Session) error {
	g.mu.Lock()
	g.current = &s
	g.mu.Unlock()

	data, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(g.path, data, 0o600)
}

// Clear destroys the session in memory and on disk. Called on explicit
// logout and by the gateway's 401 hook.
func (g *Guard) Clear() error {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()

	err := os.Remove(g.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ExpiresAt returns the token's JWT expiry when the token is a parsable
// JWT carrying one. The signature is not verified; the client only uses
// this for display and for skipping doomed requests — the server remains
// the authority via 401.
func (g *Guard) ExpiresAt() (time.Time, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return time.Time{}, false
	}
	return tokenExpiry(g.current.Token)
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

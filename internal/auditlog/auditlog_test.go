package auditlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Append(LevelInfo, "logged in", "user alice"))
	require.NoError(t, s.Append(LevelSuccess, "task created", "t-123"))
	require.NoError(t, s.Append(LevelError, "batch delete", "2 failed"))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "batch delete", entries[0].Message)
	assert.Equal(t, LevelError, entries[0].Level)
	assert.Equal(t, "2 failed", entries[0].Details)
	assert.Equal(t, "logged in", entries[2].Message)
}

func TestRecent_Limit(t *testing.T) {
	s := openStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(LevelInfo, "entry", ""))
	}
	entries, err := s.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecent_Empty(t *testing.T) {
	s := openStore(t)
	entries, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrune(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Append(LevelInfo, "recent", ""))

	// Backdate one entry past the retention window.
	_, err := s.db.Exec(
		`INSERT INTO entries (timestamp, level, message) VALUES (?, ?, ?)`,
		time.Now().UTC().Add(-48*time.Hour), string(LevelInfo), "old",
	)
	require.NoError(t, err)

	n, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].Message)
}

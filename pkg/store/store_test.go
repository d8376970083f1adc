package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (s *Store, cleanup func()) {
	t.Helper()

	// create temp file for test database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	tmpFile.Close()

	cfg := Config{
		DSN: "file:" + tmpFile.Name() + "?mode=rwc",
	}

	s, err = New(cfg)
	require.NoError(t, err)

	cleanup = func() {
		s.Close()
		os.Remove(tmpFile.Name())
	}

	return s, cleanup
}

func TestStore_InitSchema(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	// schema should already be initialized by New()
	var count int
	err := s.conn.Get(&count, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name IN ('users', 'items', 'interactions', 'trips', 'trip_participants')
	`)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestStore_Pragmas(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	var journalMode string
	err := s.conn.Get(&journalMode, "PRAGMA journal_mode")
	require.NoError(t, err)
	assert.Equal(t, "wal", journalMode)

	var foreignKeys int
	err = s.conn.Get(&foreignKeys, "PRAGMA foreign_keys")
	require.NoError(t, err)
	assert.Equal(t, 1, foreignKeys)
}

func TestIsLockError(t *testing.T) {
	assert.False(t, isLockError(nil))
	assert.False(t, isLockError(assert.AnError))
}

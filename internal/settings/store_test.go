package settings_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, err := settings.Open(filepath.Join(t.TempDir(), "settings.yaml"), discardLogger())
	require.NoError(t, err)

	_, ok := s.APIKey()
	assert.False(t, ok)
}

func TestSetAPIKey_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	s, err := settings.Open(path, discardLogger())
	require.NoError(t, err)

	require.NoError(t, s.SetAPIKey("  AIza-test-key \n"))
	key, ok := s.APIKey()
	require.True(t, ok)
	assert.Equal(t, "AIza-test-key", key)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "google-maps-api-key: AIza-test-key")

	reopened, err := settings.Open(path, discardLogger())
	require.NoError(t, err)
	key, ok = reopened.APIKey()
	require.True(t, ok)
	assert.Equal(t, "AIza-test-key", key)
}

func TestSetAPIKey_RejectsBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := settings.Open(path, discardLogger())
	require.NoError(t, err)

	for _, key := range []string{"", "   ", "\t\n"} {
		err := s.SetAPIKey(key)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "Please enter a valid Google Maps API key.")
	}

	_, ok := s.APIKey()
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing written for a rejected key")
}

func TestClearAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := settings.Open(path, discardLogger())
	require.NoError(t, err)

	require.NoError(t, s.ClearAPIKey(), "clearing an absent key is a no-op")
	require.NoError(t, s.SetAPIKey("key-1"))
	require.NoError(t, s.ClearAPIKey())

	_, ok := s.APIKey()
	assert.False(t, ok)

	reopened, err := settings.Open(path, discardLogger())
	require.NoError(t, err)
	_, ok = reopened.APIKey()
	assert.False(t, ok)
}

func TestOpen_KeepsUnrelatedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\ngoogle-maps-api-key: abc\n"), 0o600))

	s, err := settings.Open(path, discardLogger())
	require.NoError(t, err)
	key, ok := s.APIKey()
	require.True(t, ok)
	assert.Equal(t, "abc", key)

	require.NoError(t, s.SetAPIKey("def"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: dark")
	assert.Contains(t, string(data), "google-maps-api-key: def")
}

func TestOpen_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, err := settings.Open(path, discardLogger())
	require.Error(t, err)
}

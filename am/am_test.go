package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bfd.toml")
	content := `
[database]
path = "/tmp/test-bfd.db"

[store]
retry_attempts = 5
retry_backoff_ms = 10

[admin]
system_admins = ["root", "mary"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-bfd.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Store.RetryAttempts)
	assert.Equal(t, 10, cfg.Store.RetryBackoffMS)
	assert.True(t, cfg.Admin.IsSystemAdmin("mary"))
	assert.False(t, cfg.Admin.IsSystemAdmin("sam"))
}

func TestLoadFromFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bfd.toml")
	require.NoError(t, os.WriteFile(path, []byte("# empty\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultRetryAttempts, cfg.Store.RetryAttemptsOrDefault())
	assert.Equal(t, DefaultRetryBackoffMS, cfg.Store.RetryBackoffMSOrDefault())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestStoreConfigOutOfRangeFallsBack(t *testing.T) {
	c := StoreConfig{RetryAttempts: -1, RetryBackoffMS: 0}
	assert.Equal(t, DefaultRetryAttempts, c.RetryAttemptsOrDefault())
	assert.Equal(t, DefaultRetryBackoffMS, c.RetryBackoffMSOrDefault())
}

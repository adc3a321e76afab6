package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adalundhe/forgecraft/core/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirs(t *testing.T) *storage.Dirs {
	t.Helper()
	base := t.TempDir()
	return &storage.Dirs{
		Config: filepath.Join(base, "config"),
		Data:   filepath.Join(base, "data"),
		State:  filepath.Join(base, "state"),
	}
}

func TestDefaults(t *testing.T) {
	m := NewManager(testDirs(t))

	cfg := m.Current()
	assert.Equal(t, "gemini-2.5-flash", cfg.Provider.TextModel)
	assert.Equal(t, "GEMINI_API_KEY", cfg.Provider.APIKeyEnv)
	assert.NotEmpty(t, cfg.Export.OutputName)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	m := NewManager(testDirs(t))
	require.NoError(t, m.Load())
	assert.Equal(t, DefaultConfig(), m.Current())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dirs := testDirs(t)
	require.NoError(t, storage.EnsureDir(dirs.Config))
	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte(
		"provider:\n  text_model: gemini-exp\nstore:\n  path: /tmp/custom.db\n",
	), 0644))

	m := NewManager(dirs)
	require.NoError(t, m.Load())

	cfg := m.Current()
	assert.Equal(t, "gemini-exp", cfg.Provider.TextModel)
	assert.Equal(t, "imagen-3.0-generate-002", cfg.Provider.ImageModel, "unset fields keep defaults")
	assert.Equal(t, "/tmp/custom.db", m.DatabasePath())
}

func TestLoadBadYAML(t *testing.T) {
	dirs := testDirs(t)
	require.NoError(t, storage.EnsureDir(dirs.Config))
	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte("provider: ["), 0644))

	m := NewManager(dirs)
	require.Error(t, m.Load())
	assert.Equal(t, DefaultConfig(), m.Current(), "failed load keeps previous config")
}

func TestDatabasePathDefault(t *testing.T) {
	dirs := testDirs(t)
	m := NewManager(dirs)
	assert.Equal(t, dirs.DataFile("assets.db"), m.DatabasePath())
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("FORGECRAFT_TEST_KEY", "secret")

	dirs := testDirs(t)
	require.NoError(t, storage.EnsureDir(dirs.Config))
	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte(
		"provider:\n  api_key_env: FORGECRAFT_TEST_KEY\n",
	), 0644))

	m := NewManager(dirs)
	require.NoError(t, m.Load())
	assert.Equal(t, "secret", m.APIKey())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dirs := testDirs(t)
	require.NoError(t, storage.EnsureDir(dirs.Config))
	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte(
		"provider:\n  text_model: before\n",
	), 0644))

	m := NewManager(dirs)
	require.NoError(t, m.Load())
	require.NoError(t, m.Watch())
	defer m.StopWatch()

	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte(
		"provider:\n  text_model: after\n",
	), 0644))

	assert.Eventually(t, func() bool {
		return m.Current().Provider.TextModel == "after"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestOnChangeNotified(t *testing.T) {
	dirs := testDirs(t)
	require.NoError(t, storage.EnsureDir(dirs.Config))
	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte(
		"provider:\n  text_model: first\n",
	), 0644))

	m := NewManager(dirs)
	var got string
	m.OnChange(func(cfg *Config) { got = cfg.Provider.TextModel })

	require.NoError(t, m.Load())
	assert.Equal(t, "first", got)
}

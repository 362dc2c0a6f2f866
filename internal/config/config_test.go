package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingDotEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(missingDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.HistoryDriver)
	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.HistoryTimeout)
	assert.Equal(t, "Europe/Amsterdam", cfg.ReportTimezone)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "console", cfg.LogEncoding())
}

func TestLogEncoding(t *testing.T) {
	assert.Equal(t, "json", Config{AppEnv: "production"}.LogEncoding())
	assert.Equal(t, "json", Config{AppEnv: "local", LogFormat: "json"}.LogEncoding())
}

func TestLoad_DotEnvDoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	path := filepath.Join(t.TempDir(), ".env")
	content := []byte(`
# comment
PORT=7070
export HISTORY_LIMIT=20
HISTORY_TIMEOUT="2s"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Cleanup(func() {
		os.Unsetenv("HISTORY_LIMIT")
		os.Unsetenv("HISTORY_TIMEOUT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 2*time.Second, cfg.HistoryTimeout)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"HISTORY_DRIVER": "redis"}},
		{name: "postgres without url", env: map[string]string{"HISTORY_DRIVER": "postgres"}},
		{name: "zero limit", env: map[string]string{"HISTORY_LIMIT": "0"}},
		{name: "bad timeout", env: map[string]string{"HISTORY_TIMEOUT": "soon"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingDotEnv(t))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("HISTORY_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/unitecon")

	cfg, err := Load(missingDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.HistoryDriver)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "LISTEN_ADDR", "DB_DSN", "JWT_SECRET", "UPLOAD_BASE",
		"DEFAULT_LOCALE", "LOCALE_DIR", "TESSDATA_PREFIX", "DB_AUTO_MIGRATE"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "statrater.yaml")
	yml := "listen_addr: \":9000\"\ndefault_locale: en\ndb_auto_migrate: true\nupload_base: /srv/up\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("UPLOAD_BASE", "/tmp/up")
	t.Setenv("DB_AUTO_MIGRATE", "No")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, "/tmp/up", cfg.UploadBase)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nSTATRATER_A=from-file\nSTATRATER_B = \"quoted\"\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("STATRATER_A", "from-env")
	t.Setenv("STATRATER_B", "")
	os.Unsetenv("STATRATER_B")

	LoadDotEnv(path)
	assert.Equal(t, "from-env", os.Getenv("STATRATER_A"))
	assert.Equal(t, "quoted", os.Getenv("STATRATER_B"))
}

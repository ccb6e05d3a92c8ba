package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 8*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, "data/db.json", cfg.Store.Path)
	assert.Equal(t, []string{"Never reported", "Reported", "In repair", "Repaired"}, cfg.Store.MaintenanceChoices)
	assert.Equal(t, "admin", cfg.Store.AdminUsername)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "STORE_PATH=/srv/equipment/db.json\nSERVER_TOKEN_TTL=30m\nSTORE_MAINTENANCE_CHOICES=OK,Broken\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("STORE_PATH")
		os.Unsetenv("SERVER_TOKEN_TTL")
		os.Unsetenv("STORE_MAINTENANCE_CHOICES")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/equipment/db.json", cfg.Store.Path)
	assert.Equal(t, 30*time.Minute, cfg.Server.TokenTTL)
	assert.Equal(t, []string{"OK", "Broken"}, cfg.Store.MaintenanceChoices)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SERVER_PORT", "http")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, `database.driver "postgres"`)
	assert.ErrorContains(t, err, `server.port "http"`)
	assert.ErrorContains(t, err, `log.format "xml"`)
}

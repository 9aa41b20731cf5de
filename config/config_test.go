package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML_MissingFileUsesDefaults(t *testing.T) {
	cfg := loadFromYAML(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 50*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "mediafiles", cfg.Storage.MediaRoot)
	assert.Equal(t, "http://localhost:5173/create-new-password", cfg.Mail.ResetURL)
}

func TestLoadFromYAML_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "database:\n  driver: sqlite\n  database: blog.db\njwt:\n  accessTTL: 10m\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := loadFromYAML(path)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "blog.db", cfg.Database.Database)
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 50*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "8000", cfg.Server.Port)
}

func TestOverrideWithEnvVars(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_ACCESS_TTL", "2m")
	t.Setenv("MAIL_DRIVER", "queue")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REDIS_DB", "3")

	cfg := getDefaultConfig()
	overrideWithEnvVars(cfg)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "queue", cfg.Mail.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 3, cfg.Redis.DB)
}

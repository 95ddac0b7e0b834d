package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom_DefaultsApplied(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, ".gitkeep", cfg.Storage.Marker)
	assert.Equal(t, "reject", cfg.Library.DeletePolicy)
	assert.Equal(t, "EUR", cfg.Library.DefaultCurrency)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("LIBRARY_DELETE_POLICY", "detach")
	t.Setenv("REDIS_HOST", "redis.internal")

	cfg, err := LoadFrom(writeConfig(t, "library:\n  delete_policy: reject\n"))
	require.NoError(t, err)
	assert.Equal(t, "detach", cfg.Library.DeletePolicy)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadFrom_RejectsUnknownValues(t *testing.T) {
	cases := map[string]string{
		"driver":   "database:\n  driver: mysql\n",
		"backend":  "storage:\n  backend: ftp\n",
		"policy":   "library:\n  delete_policy: cascade\n",
		"currency": "library:\n  default_currency: EURO\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "parts", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=parts sslmode=disable", c.DSN())
}

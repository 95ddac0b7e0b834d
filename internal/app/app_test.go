package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitfantasy/partslib/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func localConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "parts.db")},
		Storage:  config.StorageConfig{Backend: "local", Dir: filepath.Join(dir, "files"), Marker: ".gitkeep"},
		Log:      config.LogConfig{Level: "info"},
		Library:  config.LibraryConfig{DefaultCurrency: "EUR", DefaultOwner: "System", DeletePolicy: "reject"},
	}
}

// captureDatabase records the handle New opens so the test can inspect it afterwards.
func captureDatabase(t *testing.T) **gorm.DB {
	var opened *gorm.DB
	orig := openDatabase
	openDatabase = func(cfg config.DatabaseConfig, verbose bool) (*gorm.DB, error) {
		db, err := orig(cfg, verbose)
		opened = db
		return db, err
	}
	t.Cleanup(func() { openDatabase = orig })
	return &opened
}

func TestNew_LocalBackends(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, localConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	require.NotNil(t, a.Services)
	total, err := a.Services.Library.TotalValue(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestNew_ClosesDatabaseOnFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("store", func(t *testing.T) {
		opened := captureDatabase(t)
		cfg := localConfig(t)
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		cfg.Storage.Dir = filepath.Join(blocker, "files")

		_, err := New(ctx, cfg, zaptest.NewLogger(t))
		require.Error(t, err)

		require.NotNil(t, *opened)
		sqlDB, err := (*opened).DB()
		require.NoError(t, err)
		assert.Error(t, sqlDB.Ping())
	})

	t.Run("delete policy", func(t *testing.T) {
		opened := captureDatabase(t)
		cfg := localConfig(t)
		cfg.Library.DeletePolicy = "cascade"

		_, err := New(ctx, cfg, zaptest.NewLogger(t))
		require.Error(t, err)

		sqlDB, err := (*opened).DB()
		require.NoError(t, err)
		assert.Error(t, sqlDB.Ping())
	})
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "bolt", cfg.Database.Type)
	assert.Equal(t, DefaultDataPath(), cfg.Database.Path)
	assert.Equal(t, "", cfg.Catalog.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.Planning.LowStockAlerts)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopfloor.yaml")
	doc := []byte("database:\n  type: sqlite\n  path: /tmp/shop.db\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	t.Setenv("SHOPFLOOR_LOG_FORMAT", "json")
	t.Setenv("SHOPFLOOR_HTTP_ADDR", "127.0.0.1:9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/shop.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	var validation *entities.ValidationError
	assert.True(t, errors.As(err, &validation), "expected ValidationError, got %v", err)
}

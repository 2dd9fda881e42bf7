package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"JWT_SECRET", "DATABASE_DSN", "MYSQL_DSN", "DATABASE_DRIVER", "PORT", "GIN_MODE"} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFromYAML(t *testing.T) {
	clearEnv(t)
	dir := writeYAML(t, `
server:
  port: 8081
  mode: debug
database:
  dsn: "root:pw@tcp(127.0.0.1:3306)/playhorizon?parseTime=true"
  max_open_conns: 20
auth:
  jwt_secret: yaml-secret
  token_ttl: 2h
catalog:
  genre_filter: procedure
`)

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, "yaml-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, GenreFilterProcedure, cfg.Catalog.GenreFilter)
	assert.Equal(t, 10, cfg.Catalog.SearchLimit)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := writeYAML(t, `
database:
  dsn: "yaml-dsn"
auth:
  jwt_secret: yaml-secret
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("MYSQL_DSN", "env-dsn")
	t.Setenv("PORT", "4000")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "env-dsn", cfg.Database.DSN)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MYSQL_DSN", "dsn")

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, GenreFilterQuery, cfg.Catalog.GenreFilter)
	assert.Equal(t, 1000, cfg.Catalog.TrendingBatchSize)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	dir := writeYAML(t, `
database:
  dsn: "dsn"
`)
	_, err := LoadConfigFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestValidateRejectsUnknownGenreFilter(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Port: 3000},
		Database: DatabaseConfig{Driver: "mysql", DSN: "dsn"},
		Auth:     AuthConfig{JWTSecret: "s"},
		Catalog:  CatalogConfig{GenreFilter: "magic"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Catalog.GenreFilter = GenreFilterQuery
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}

package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PASSKEEP_CONFIG_PATH", "PASSKEEP_BACKEND", "PASSKEEP_FILE_PATH", "PASSKEEP_FILE_LENIENT",
		"PASSKEEP_MONGO_URI", "PASSKEEP_MONGO_DATABASE", "PASSKEEP_MONGO_COLLECTION",
		"PASSKEEP_TIMEOUT", "DATABASE_URL", "PASSKEEP_TABLE", "PASSKEEP_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Backend)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), cfg.FilePath)
	assert.Equal(t, DefaultMongoURI, cfg.MongoURI)
	assert.Equal(t, DefaultTable, cfg.Table)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	for _, attr := range cfg.Attributes() {
		assert.Equal(t, SourceDefault, attr.Source, attr.Name)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
backend: postgres
database_url: postgres://app:hunter2@db:5432/passkeep?sslmode=disable
table: vault
timeout: 3
`)
	t.Setenv("PASSKEEP_TABLE", "vault_override")
	t.Setenv("PASSKEEP_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Backend)
	assert.Equal(t, SourceFile, cfg.Source("backend"))
	assert.Equal(t, "vault_override", cfg.Table)
	assert.Equal(t, SourceEnvironment, cfg.Source("table"))
	assert.Equal(t, 3, cfg.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, SourceDefault, cfg.Source("mongo_uri"))

	kind, err := cfg.Kind()
	require.NoError(t, err)
	assert.Equal(t, store.KindPostgres, kind)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "backend: [unterminated")

	_, err := LoadFrom(dir)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "backend: sqlite\ndatabase_url: /tmp/passkeep.db\n")
	t.Setenv("PASSKEEP_CONFIG_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "/tmp/passkeep.db", cfg.DatabaseURL)
}

func TestSetBackend(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	cfg.SetBackend("mongodb")
	assert.Equal(t, "mongodb", cfg.Backend)
	assert.Equal(t, SourceFlag, cfg.Source("backend"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *PasskeepConfig)
		wantErr string
	}{
		{"unknown backend", func(c *PasskeepConfig) { c.Backend = "redis" }, "unknown backend"},
		{"relational without url", func(c *PasskeepConfig) { c.Backend = "mysql" }, "database_url is required"},
		{"bad table", func(c *PasskeepConfig) {
			c.Backend = "postgres"
			c.DatabaseURL = "postgres://localhost/db"
			c.Table = "users; DROP TABLE x"
		}, "invalid table"},
		{"mongo without uri", func(c *PasskeepConfig) { c.Backend = "mongodb"; c.MongoURI = "" }, "mongo_uri is required"},
		{"zero timeout", func(c *PasskeepConfig) { c.Timeout = 0 }, "timeout must be positive"},
		{"bad log level", func(c *PasskeepConfig) { c.LogLevel = "chatty" }, "invalid log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault(t.TempDir())
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestFormatText_RedactsCredentials(t *testing.T) {
	cfg := newDefault("/etc/passkeep")
	cfg.DatabaseURL = "postgres://app:hunter2@db:5432/passkeep"

	out := cfg.FormatText()
	assert.Contains(t, out, "Config file: /etc/passkeep/passkeep.yml")
	assert.Contains(t, out, "postgres://app:xxxxx@db:5432/passkeep")
	assert.NotContains(t, out, "hunter2")
	assert.True(t, strings.HasPrefix(strings.Split(out, "\n")[2], "NAME"))
}

func TestFormatJSON(t *testing.T) {
	cfg := newDefault("/etc/passkeep")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)

	var decoded struct {
		ConfigFile string      `json:"config_file"`
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "/etc/passkeep/passkeep.yml", decoded.ConfigFile)
	assert.Len(t, decoded.Attributes, len(attributeNames()))
}

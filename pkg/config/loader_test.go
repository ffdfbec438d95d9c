package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfigMergesEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: "8080"
db:
  host: localhost
  port: 5432
  name: pacta
`)
	writeFile(t, dir, "prod.yaml", `
db:
  host: db.internal
`)

	cfg, err := LoadConfig("prod", dir)
	require.NoError(t, err)

	db, ok := cfg["db"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "db.internal", db["host"], "env file wins")
	assert.Equal(t, 5432, db["port"], "untouched base keys survive the merge")
	assert.Equal(t, "pacta", db["name"])

	server, ok := cfg["server"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "8080", server["port"])
}

func TestLoadConfigMissingEnvFileIsFine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: \"8080\"\n")

	cfg, err := LoadConfig("staging", dir)
	require.NoError(t, err)
	assert.Contains(t, cfg, "server")
}

func TestLoadConfigMissingBaseFails(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	require.Error(t, err)
}

func TestLoadConfigSubstitutesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  password: ${DB_PASSWORD}
jwt:
  secret: ${JWT_SECRET}
  audience: unchanged
`)
	writeFile(t, dir, "secrets.env", `
# secrets for local dev
DB_PASSWORD="p4ss"
JWT_SECRET='tok3n'
`)

	cfg, err := LoadConfig("local", dir)
	require.NoError(t, err)

	db := cfg["db"].(map[string]interface{})
	assert.Equal(t, "p4ss", db["password"])

	jwt := cfg["jwt"].(map[string]interface{})
	assert.Equal(t, "tok3n", jwt["secret"])
	assert.Equal(t, "unchanged", jwt["audience"])
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("SOME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SOME_MISSING_KEY", "fallback"))
}

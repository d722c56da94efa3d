package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_LoadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
		"endpoint_addr": ":7070",
		"database_dsn": "postgres://localhost/test",
		"secret_key": "c2VjcmV0",
		"token_validity_duration": "24h",
		"ask_timeout": "1s",
		"statement_timeout": "3s",
		"auth_disabled": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	parseJson(config)

	assert.Equal(t, ":7070", config.EndpointAddr)
	assert.Equal(t, "postgres://localhost/test", config.DatabaseDSN)
	assert.Equal(t, "c2VjcmV0", config.SecretKey)
	assert.Equal(t, 24*time.Hour, config.TokenValidityDuration)
	assert.Equal(t, 1*time.Second, config.AskTimeout)
	assert.Equal(t, 3*time.Second, config.StatementTimeout)
	assert.True(t, config.AuthDisabled)
}

func TestParseJson_NoFileFlag_LeavesConfigUntouched(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	config := &Config{EndpointAddr: ":8099"}
	parseJson(config)

	assert.Equal(t, ":8099", config.EndpointAddr)
}

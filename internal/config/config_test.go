package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultClientCommand, cfg.ClientCommand)
	assert.Equal(t, DefaultConnectEnvVar, cfg.ConnectEnvVar)
	assert.NotZero(t, cfg.MaxWorkers)
}

func TestLoadResolvesConnections(t *testing.T) {
	t.Setenv("ERP_PASSWORD", "hunter2")

	dir := t.TempDir()

	connectionsPath := writeFile(t, dir, "connections.toml", `
[erp]
port = 1521
service = "ERP"
username = "reader"
password = "${ERP_PASSWORD}"

[erp.environment.replica]
host = "erp-replica.example.com"

[erp.environment.staging]
host = "erp-staging.example.com"
service = "ERPSTG"
port = 1522

[erp.environment.broken]
service = "X"
`)

	configPath := writeFile(t, dir, "config.toml", `
client_command = "sql -S"
max_workers = 2

[cache]
use_cache = true
time_to_live = 60

[paths]
connections = "`+connectionsPath+`"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	conn := cfg.GetConnection("erp")
	require.NotNil(t, conn)

	// Environment-level blanks fall back to connection-level values.
	replica := conn.Environment["replica"]
	require.NotNil(t, replica)
	assert.Equal(t, uint16(1521), replica.Port)
	assert.Equal(t, "ERP", replica.Service)
	assert.Equal(t, "reader", replica.Username)
	assert.Equal(t, "hunter2", replica.Password)

	staging := conn.Environment["staging"]
	require.NotNil(t, staging)
	assert.Equal(t, uint16(1522), staging.Port)
	assert.Equal(t, "ERPSTG", staging.Service)

	// No host anywhere disables the environment.
	broken := conn.Environment["broken"]
	require.NotNil(t, broken)
	assert.True(t, broken.Disabled)
}

func TestConnectString(t *testing.T) {
	conn := &Connection{
		Environment: map[string]*Environment{
			"replica": {
				Host:     "db.example.com",
				Port:     1521,
				Service:  "ERP",
				Username: "reader",
				Password: "hunter2",
			},
			"broken": {Disabled: true},
		},
	}

	assert.Equal(t,
		"reader/hunter2@//db.example.com:1521/ERP",
		conn.ConnectString("replica"))

	assert.Equal(t, "", conn.ConnectString("broken"))
	assert.Equal(t, "", conn.ConnectString("missing"))
}

func TestConnectStringDefaultPort(t *testing.T) {
	conn := &Connection{
		Environment: map[string]*Environment{
			"replica": {
				Host:     "db.example.com",
				Service:  "ERP",
				Username: "reader",
				Password: "pw",
			},
		},
	}

	assert.Equal(t,
		"reader/pw@//db.example.com:1521/ERP",
		conn.ConnectString("replica"))
}

func TestCacheMaxAge(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.toml", `
[cache]
use_cache = true
time_to_live = 60
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, float64(60), cfg.Cache.MaxAge.Seconds())
}

package server

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
	path := filepath.Join(t.TempDir(), "roulette.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
	require.NoError(t, cfg.Validate())

	roomCfg, err := cfg.RoomConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, roomCfg.BettingWindow)
	assert.Equal(t, 0, roomCfg.StartingBalance)
}

func TestLoadServerConfigFile(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  betting_window   = "10s"
  starting_balance = 500
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	roomCfg, err := cfg.RoomConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, roomCfg.BettingWindow)
	assert.Equal(t, 500, roomCfg.StartingBalance)
	// unset values keep their defaults
	assert.Equal(t, 30*time.Minute, roomCfg.RoomIdleTTL)
	assert.Equal(t, time.Minute, roomCfg.ReapInterval)
}

func TestLoadServerConfigPartialFile(t *testing.T) {
	path := writeConfig(t, `
game {
  room_idle_ttl = "0s"
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())

	roomCfg, err := cfg.RoomConfig()
	require.NoError(t, err)
	assert.Zero(t, roomCfg.RoomIdleTTL)
}

func TestLoadServerConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server {
  port = 9000
}
`)
	t.Setenv("ROULETTE_PORT", "9100")
	t.Setenv("ROULETTE_BETTING_WINDOW", "5s")
	t.Setenv("ROULETTE_STARTING_BALANCE", "250")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)

	roomCfg, err := cfg.RoomConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, roomCfg.BettingWindow)
	assert.Equal(t, 250, roomCfg.StartingBalance)
}

func TestLoadServerConfigErrors(t *testing.T) {
	_, err := LoadServerConfig(writeConfig(t, `server {`))
	assert.ErrorContains(t, err, "failed to parse HCL")

	_, err = LoadServerConfig(writeConfig(t, `server { port = "many" }`))
	assert.ErrorContains(t, err, "failed to decode HCL")

	t.Setenv("ROULETTE_PORT", "not-a-number")
	_, err = LoadServerConfig("")
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		want   string
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 0 }, "invalid port"},
		{"bad level", func(c *ServerConfig) { c.Server.LogLevel = "loud" }, "invalid log level"},
		{"bad window", func(c *ServerConfig) { c.Game.BettingWindow = "soon" }, "betting_window"},
		{"zero window", func(c *ServerConfig) { c.Game.BettingWindow = "0s" }, "betting window must be positive"},
		{"negative balance", func(c *ServerConfig) { c.Game.StartingBalance = -1 }, "starting balance"},
		{"bad ttl", func(c *ServerConfig) { c.Game.RoomIdleTTL = "later" }, "room_idle_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/roulette/internal/room"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional" env:"ROULETTE_ADDRESS"`
	Port     int    `hcl:"port,optional" env:"ROULETTE_PORT"`
	LogLevel string `hcl:"log_level,optional" env:"ROULETTE_LOG_LEVEL"`
}

// GameSettings controls rounds, wallets and idle-room reaping. Durations use
// Go syntax, e.g. "30s" or "15m".
type GameSettings struct {
	BettingWindow   string `hcl:"betting_window,optional" env:"ROULETTE_BETTING_WINDOW"`
	StartingBalance int    `hcl:"starting_balance,optional" env:"ROULETTE_STARTING_BALANCE"`
	RoomIdleTTL     string `hcl:"room_idle_ttl,optional" env:"ROULETTE_ROOM_IDLE_TTL"`
	ReapInterval    string `hcl:"reap_interval,optional" env:"ROULETTE_REAP_INTERVAL"`
}

// configFile mirrors the HCL layout; both blocks are optional.
type configFile struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	def := room.DefaultConfig()
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			BettingWindow: def.BettingWindow.String(),
			RoomIdleTTL:   def.RoomIdleTTL.String(),
			ReapInterval:  def.ReapInterval.String(),
		},
	}
}

// LoadServerConfig loads configuration from an HCL file, then applies
// ROULETTE_* environment overrides. A missing file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	config := DefaultServerConfig()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if config, err = parseConfigFile(filename); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return config, nil
}

func parseConfigFile(filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw configFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultServerConfig()
	if s := raw.Server; s != nil {
		if s.Address != "" {
			config.Server.Address = s.Address
		}
		if s.Port != 0 {
			config.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			config.Server.LogLevel = s.LogLevel
		}
	}
	if g := raw.Game; g != nil {
		if g.BettingWindow != "" {
			config.Game.BettingWindow = g.BettingWindow
		}
		if g.StartingBalance != 0 {
			config.Game.StartingBalance = g.StartingBalance
		}
		if g.RoomIdleTTL != "" {
			config.Game.RoomIdleTTL = g.RoomIdleTTL
		}
		if g.ReapInterval != "" {
			config.Game.ReapInterval = g.ReapInterval
		}
	}
	return config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}

	roomCfg, err := c.RoomConfig()
	if err != nil {
		return err
	}
	return roomCfg.Validate()
}

// RoomConfig converts the game settings for the room registry.
func (c *ServerConfig) RoomConfig() (room.Config, error) {
	var (
		cfg room.Config
		err error
	)

	if cfg.BettingWindow, err = time.ParseDuration(c.Game.BettingWindow); err != nil {
		return room.Config{}, fmt.Errorf("betting_window: %w", err)
	}
	if cfg.RoomIdleTTL, err = time.ParseDuration(c.Game.RoomIdleTTL); err != nil {
		return room.Config{}, fmt.Errorf("room_idle_ttl: %w", err)
	}
	if cfg.ReapInterval, err = time.ParseDuration(c.Game.ReapInterval); err != nil {
		return room.Config{}, fmt.Errorf("reap_interval: %w", err)
	}
	cfg.StartingBalance = c.Game.StartingBalance
	return cfg, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

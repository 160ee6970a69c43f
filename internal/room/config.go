package room

import (
	"fmt"
	"time"
)

// DefaultBettingWindow is how long a round accepts bets.
const DefaultBettingWindow = 30 * time.Second

// Config controls round timing, wallets and idle-room reaping.
type Config struct {
	// BettingWindow is the time between round_start and bets_closed.
	BettingWindow time.Duration
	// StartingBalance seeds each participant's wallet. Zero disables
	// server-side balance tracking.
	StartingBalance int
	// RoomIdleTTL is how long a room may sit in the lobby without activity
	// before the reaper removes it. Zero disables reaping.
	RoomIdleTTL time.Duration
	// ReapInterval is how often the reaper runs.
	ReapInterval time.Duration
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		BettingWindow: DefaultBettingWindow,
		RoomIdleTTL:   30 * time.Minute,
		ReapInterval:  time.Minute,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.BettingWindow <= 0 {
		return fmt.Errorf("betting window must be positive, got %s", c.BettingWindow)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("starting balance must not be negative, got %d", c.StartingBalance)
	}
	if c.RoomIdleTTL < 0 {
		return fmt.Errorf("room idle ttl must not be negative, got %s", c.RoomIdleTTL)
	}
	if c.RoomIdleTTL > 0 && c.ReapInterval <= 0 {
		return fmt.Errorf("reap interval must be positive when reaping is enabled")
	}
	return nil
}

func (c Config) walletsEnabled() bool {
	return c.StartingBalance > 0
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lox/roulette/cmd/roulette/shared"
	"github.com/lox/roulette/internal/bot"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/server"
)

// BotCmd runs one or more bots against a server
type BotCmd struct {
	Server  string        `default:"http://localhost:8080" help:"Server URL"`
	Count   int           `short:"n" default:"1" help:"Number of bots"`
	Rounds  int           `default:"0" help:"Stop after this many rounds (0 runs until interrupted)"`
	MaxBet  int           `default:"50" help:"Largest single bet"`
	Code    string        `help:"Join an existing room instead of creating one"`
	Name    string        `help:"Bot name prefix (default bot, or a seed-derived guest prefix with --code)"`
	Seed    *int64        `help:"Deterministic RNG seed for bet choices (optional)"`
	Wait    time.Duration `default:"5s" help:"How long to wait for the server to become healthy"`
	Debug   bool          `help:"Enable debug logging"`
	NoColor bool          `help:"Disable coloured log output"`

	StartingBalance int `default:"500" help:"Bankroll each bot tracks; match the server's starting_balance"`
}

func (c *BotCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger, err := shared.SetupLogger(level, c.NoColor)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	if c.Wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, c.Wait)
		err := server.WaitForHealthy(waitCtx, c.Server)
		cancel()
		if err != nil {
			return fmt.Errorf("server at %s not healthy: %w", c.Server, err)
		}
	}

	_, seed := randutil.NewTimeSeeded()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("Starting bots", "count", c.Count, "server", c.Server, "seed", seed)

	if c.Code == "" {
		return bot.RunFleet(ctx, bot.FleetConfig{
			ServerURL:       c.Server,
			Name:            c.Name,
			Count:           c.Count,
			Rounds:          c.Rounds,
			MaxBet:          c.MaxBet,
			StartingBalance: c.StartingBalance,
			Seed:            seed,
		}, logger)
	}

	// joining someone else's room; its host starts the rounds
	return bot.RunJoiners(ctx, bot.JoinConfig{
		ServerURL:       c.Server,
		Code:            c.Code,
		Name:            c.Name,
		Count:           c.Count,
		Rounds:          c.Rounds,
		MaxBet:          c.MaxBet,
		StartingBalance: c.StartingBalance,
		Seed:            seed,
	}, logger)
}

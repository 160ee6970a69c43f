package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lox/roulette/cmd/roulette/shared"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/room"
	"github.com/lox/roulette/internal/roulette"
	"github.com/lox/roulette/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServerCmd runs the WebSocket server
type ServerCmd struct {
	Config   string `short:"c" default:"roulette.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to (overrides config)"`
	Port     int    `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	NoColor  bool   `help:"Disable coloured log output"`
	Seed     *int64 `help:"Deterministic RNG seed for the wheel (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply command line overrides
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel, c.NoColor)
	if err != nil {
		return err
	}

	roomCfg, err := cfg.RoomConfig()
	if err != nil {
		return err
	}

	rng, seed := randutil.NewTimeSeeded()
	if c.Seed != nil {
		seed = *c.Seed
		rng = randutil.New(seed)
	}
	logger.Info("Wheel seeded", "seed", seed, "deterministic", c.Seed != nil)

	registry := room.NewRegistry(logger,
		room.WithConfig(roomCfg),
		room.WithWheel(roulette.NewEngine(randutil.NewLocked(rng))),
	)
	srv := server.NewServer(cfg.GetServerAddress(), registry, logger)
	registry.SetPublisher(srv)

	logger.Info("Starting roulette server",
		"addr", cfg.GetServerAddress(),
		"betting_window", roomCfg.BettingWindow,
		"starting_balance", roomCfg.StartingBalance,
		"room_idle_ttl", roomCfg.RoomIdleTTL)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error { return registry.RunReaper(ctx) })
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		registry.Close()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		logger.Info("Server stopped")
		return nil
	})

	return g.Wait()
}

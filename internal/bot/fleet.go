package bot

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// FleetConfig describes a group of bots sharing one room.
type FleetConfig struct {
	ServerURL string
	// Name prefixes bot names; bots are called <Name>-1 .. <Name>-Count.
	Name            string
	Count           int
	Rounds          int
	MaxBet          int
	StartingBalance int
	Seed            int64
}

// JoinConfig describes bots joining a room hosted elsewhere.
type JoinConfig struct {
	ServerURL string
	Code      string
	// Name prefixes bot names. Empty picks a guest prefix derived from Seed
	// so it cannot collide with a fleet's bot-N names.
	Name            string
	Count           int
	Rounds          int
	MaxBet          int
	StartingBalance int
	Seed            int64
}

func botName(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}

// guestPrefix names joiners. Leaderboards identify players by name only.
func guestPrefix(seed int64) string {
	return fmt.Sprintf("guest-%04x", uint16(seed))
}

// RunFleet starts Count bots in one room. The first creates and hosts it;
// the rest join once the code is known. It returns the first bot error.
func RunFleet(ctx context.Context, cfg FleetConfig, logger *log.Logger) error {
	if cfg.Count < 1 {
		return fmt.Errorf("bot count must be at least 1, got %d", cfg.Count)
	}
	if cfg.Name == "" {
		cfg.Name = "bot"
	}

	g, ctx := errgroup.WithContext(ctx)

	host := New(Config{
		ServerURL:       cfg.ServerURL,
		Name:            botName(cfg.Name, 1),
		Host:            true,
		Rounds:          cfg.Rounds,
		MaxBet:          cfg.MaxBet,
		StartingBalance: cfg.StartingBalance,
	}, randutil.New(cfg.Seed), logger)
	hostDone := make(chan struct{})
	g.Go(func() error {
		defer close(hostDone)
		return host.Run(ctx)
	})

	// joiners stop with the host, which is the only one starting rounds
	joinCtx, cancelJoiners := context.WithCancel(ctx)
	defer cancelJoiners()
	g.Go(func() error {
		<-hostDone
		cancelJoiners()
		return nil
	})

	select {
	case <-host.Ready():
	case <-ctx.Done():
		return g.Wait()
	}
	logger.Info("Fleet room ready", "room", host.Code(), "bots", cfg.Count)

	for i := 2; i <= cfg.Count; i++ {
		b := New(Config{
			ServerURL:       cfg.ServerURL,
			Name:            botName(cfg.Name, i),
			Code:            host.Code(),
			Rounds:          cfg.Rounds,
			MaxBet:          cfg.MaxBet,
			StartingBalance: cfg.StartingBalance,
		}, randutil.New(cfg.Seed+int64(i)), logger)
		g.Go(func() error { return b.Run(joinCtx) })
	}

	return g.Wait()
}

// RunJoiners starts Count bots in an existing room whose host starts the
// rounds. It returns the first bot error.
func RunJoiners(ctx context.Context, cfg JoinConfig, logger *log.Logger) error {
	bots, err := newJoiners(cfg, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range bots {
		g.Go(func() error { return b.Run(ctx) })
	}
	return g.Wait()
}

func newJoiners(cfg JoinConfig, logger *log.Logger) ([]*Bot, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("bot count must be at least 1, got %d", cfg.Count)
	}
	if cfg.Code == "" {
		return nil, fmt.Errorf("room code required")
	}
	if cfg.Name == "" {
		cfg.Name = guestPrefix(cfg.Seed)
	}

	bots := make([]*Bot, 0, cfg.Count)
	for i := 1; i <= cfg.Count; i++ {
		bots = append(bots, New(Config{
			ServerURL:       cfg.ServerURL,
			Name:            botName(cfg.Name, i),
			Code:            cfg.Code,
			Rounds:          cfg.Rounds,
			MaxBet:          cfg.MaxBet,
			StartingBalance: cfg.StartingBalance,
		}, randutil.New(cfg.Seed+int64(i)), logger))
	}
	return bots, nil
}

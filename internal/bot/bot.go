// Package bot provides a scripted roulette player used for load and smoke
// testing a server.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/client"
	"github.com/lox/roulette/internal/roulette"
	"github.com/lox/roulette/internal/server"
)

// DefaultStartingBalance is the bankroll a bot tracks from.
const DefaultStartingBalance = 500

// Config describes one bot.
type Config struct {
	ServerURL string
	Name      string
	// Code joins an existing room; empty creates one.
	Code string
	// Host makes the bot start a new round after each result. Only the
	// room's creator can do this.
	Host bool
	// Rounds stops the bot after this many results; zero runs until the
	// context ends.
	Rounds          int
	MaxBet          int
	StartingBalance int
}

// Bot places a random valid bet on every round it sees.
type Bot struct {
	cfg    Config
	client *client.Client
	rng    *rand.Rand
	logger *log.Logger

	mu      sync.Mutex
	code    string
	balance int
	results int
	done    chan struct{}
	ready   chan struct{}
	closed  bool
	runErr  error
}

// New creates a bot. rng drives its bet choices.
func New(cfg Config, rng *rand.Rand, logger *log.Logger) *Bot {
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = DefaultStartingBalance
	}
	if cfg.MaxBet <= 0 {
		cfg.MaxBet = 50
	}

	logger = logger.WithPrefix("bot").With("name", cfg.Name)
	return &Bot{
		cfg:     cfg,
		client:  client.NewClient(cfg.ServerURL, logger),
		rng:     rng,
		logger:  logger,
		code:    cfg.Code,
		balance: cfg.StartingBalance,
		done:    make(chan struct{}),
		ready:   make(chan struct{}),
	}
}

// Code returns the room code once the bot has created or joined a room.
func (b *Bot) Code() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code
}

// Ready is closed once the bot is in a room.
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

// Balance returns the bot's tracked bankroll.
func (b *Bot) Balance() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance
}

// Results returns how many spin results the bot has seen.
func (b *Bot) Results() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results
}

// Run connects, enters a room and plays until ctx ends or the configured
// number of rounds has been seen.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.client.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = b.client.Close() }()

	b.client.On(server.MessageTypeRoundStart, func(*server.Message) { b.onRoundStart(ctx) })
	b.client.On(server.MessageTypeSpinResult, b.onSpinResult)
	b.client.On(server.MessageTypeNotification, func(msg *server.Message) {
		var data server.NotificationData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			b.logger.Debug("Notification", "message", data.Message)
		}
	})

	code, err := b.enterRoom(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	b.mu.Lock()
	b.code = code
	b.mu.Unlock()
	close(b.ready)

	if b.cfg.Host {
		if err := b.client.StartGame(code); err != nil {
			return fmt.Errorf("start game: %w", err)
		}
	}

	select {
	case <-b.done:
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.runErr
	case <-ctx.Done():
		return nil
	case <-b.client.Done():
		return errors.New("connection closed")
	}
}

func (b *Bot) enterRoom(ctx context.Context) (string, error) {
	if b.cfg.Code == "" {
		code, err := b.client.CreateRoom(ctx, b.cfg.Name)
		if err != nil {
			return "", fmt.Errorf("create room: %w", err)
		}
		b.logger.Info("Created room", "room", code)
		return code, nil
	}

	if err := b.client.JoinRoom(ctx, b.cfg.Name, b.cfg.Code); err != nil {
		return "", fmt.Errorf("join room %s: %w", b.cfg.Code, err)
	}
	b.logger.Info("Joined room", "room", b.cfg.Code)
	return b.cfg.Code, nil
}

func (b *Bot) onRoundStart(ctx context.Context) {
	bet, ok := b.nextBet()
	if !ok {
		b.logger.Info("Out of funds, sitting out")
		return
	}

	if err := b.client.PlaceBet(ctx, b.Code(), bet); err != nil {
		b.logger.Warn("Bet rejected", "error", err)
		return
	}
	b.logger.Debug("Bet placed", "type", bet.Type, "choice", bet.Choice, "amount", bet.Amount)
}

// nextBet picks a uniformly random number or colour bet the bot can afford.
func (b *Bot) nextBet() (server.BetData, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit := min(b.cfg.MaxBet, b.balance)
	if limit <= 0 {
		return server.BetData{}, false
	}
	amount := 1 + b.rng.IntN(limit)

	if b.rng.IntN(2) == 0 {
		n := b.rng.IntN(roulette.Pockets)
		return server.BetData{Type: string(roulette.BetNumber), Choice: server.Choice(strconv.Itoa(n)), Amount: amount}, true
	}
	color := roulette.Red
	if b.rng.IntN(2) == 1 {
		color = roulette.Black
	}
	return server.BetData{Type: string(roulette.BetColor), Choice: server.Choice(color), Amount: amount}, true
}

func (b *Bot) onSpinResult(msg *server.Message) {
	var data server.SpinResultData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		b.logger.Error("Failed to decode spin result", "error", err)
		return
	}

	b.mu.Lock()
	for _, entry := range data.Leaderboard {
		if entry.Name == b.cfg.Name {
			b.balance += entry.Payout
		}
	}
	b.results++
	results, balance := b.results, b.balance
	finished := b.cfg.Rounds > 0 && results >= b.cfg.Rounds
	b.mu.Unlock()

	b.logger.Info("Spin result", "num", data.Num, "color", data.Color, "balance", balance, "rounds", results)

	if finished {
		b.finish(nil)
		return
	}
	if b.cfg.Host {
		if err := b.client.StartGame(b.Code()); err != nil {
			b.finish(fmt.Errorf("start game: %w", err))
		}
	}
}

func (b *Bot) finish(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.runErr = err
	close(b.done)
}

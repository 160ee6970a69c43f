package room

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/roulette/internal/metrics"
	"github.com/lox/roulette/internal/roomcode"
	"github.com/lox/roulette/internal/roulette"
)

// maxCodeAttempts bounds how many codes CreateRoom draws before giving up.
const maxCodeAttempts = 1000

// Registry owns the code -> room mapping. Registry operations only hold the
// registry lock for map access; per-room work runs under each room's own
// lock, so rooms never block one another.
type Registry struct {
	cfg    Config
	clock  quartz.Clock
	wheel  Wheel
	events Publisher
	codes  *roomcode.Generator
	logger *log.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig sets round timing, wallets and reaping.
func WithConfig(cfg Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// WithClock sets the clock used by round timers and the reaper.
func WithClock(clock quartz.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithWheel sets the outcome engine shared by every room.
func WithWheel(wheel Wheel) Option {
	return func(r *Registry) { r.wheel = wheel }
}

// WithPublisher sets where room events are delivered.
func WithPublisher(p Publisher) Option {
	return func(r *Registry) { r.events = p }
}

// WithCodeGenerator sets the room code source.
func WithCodeGenerator(g *roomcode.Generator) Option {
	return func(r *Registry) { r.codes = g }
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *log.Logger, opts ...Option) *Registry {
	r := &Registry{
		cfg:    DefaultConfig(),
		clock:  quartz.NewReal(),
		events: discardPublisher{},
		codes:  roomcode.NewGenerator(nil),
		logger: logger.WithPrefix("registry"),
		rooms:  make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.wheel == nil {
		r.wheel = roulette.NewEngine(nil)
	}
	if r.events == nil {
		r.events = discardPublisher{}
	}
	return r
}

// SetPublisher replaces the event sink for rooms created afterwards.
func (r *Registry) SetPublisher(p Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		p = discardPublisher{}
	}
	r.events = p
}

// CreateRoom registers a new lobby room hosted by hostID and returns its
// code. Codes are drawn until one is unused.
func (r *Registry) CreateRoom(hostID, hostName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rooms) >= roomcode.Space {
		return "", ErrCodeSpaceExhausted
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := r.codes.Generate()
		if _, exists := r.rooms[code]; exists {
			continue
		}

		r.rooms[code] = newRoom(code, hostID, hostName, r.cfg, r.clock, r.wheel, r.events, r.logger)
		metrics.RecordRoomCreated()
		r.logger.Info("Created room", "room", code, "host", hostID, "name", hostName, "rooms", len(r.rooms))
		return code, nil
	}

	return "", fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, maxCodeAttempts)
}

// Lookup returns the room registered under code.
func (r *Registry) Lookup(code string) (*Room, error) {
	code = roomcode.Normalize(code)

	r.mu.RLock()
	room, ok := r.rooms[code]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return room, nil
}

// JoinRoom adds a participant to an existing room.
func (r *Registry) JoinRoom(code, participantID, name string) error {
	room, err := r.Lookup(code)
	if err != nil {
		return err
	}
	return room.Join(participantID, name)
}

// StartGame opens a round in the room on behalf of requesterID.
func (r *Registry) StartGame(code, requesterID string) error {
	room, err := r.Lookup(code)
	if err != nil {
		return err
	}
	return room.Start(requesterID)
}

// PlaceBet records a bet in the room's open round.
func (r *Registry) PlaceBet(code, participantID string, bet roulette.Bet) error {
	room, err := r.Lookup(code)
	if err != nil {
		return err
	}
	return room.PlaceBet(participantID, bet)
}

// RemoveRoom unregisters a room and tears it down.
func (r *Registry) RemoveRoom(code string) bool {
	code = roomcode.Normalize(code)

	r.mu.Lock()
	room, ok := r.rooms[code]
	if ok {
		delete(r.rooms, code)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	room.Close()
	metrics.RecordRoomRemoved()
	r.logger.Info("Removed room", "room", code)
	return true
}

// Reap removes rooms idle in the lobby for longer than the configured TTL
// and returns their codes.
func (r *Registry) Reap() []string {
	if r.cfg.RoomIdleTTL <= 0 {
		return nil
	}

	r.mu.RLock()
	candidates := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		candidates = append(candidates, room)
	}
	r.mu.RUnlock()

	var reaped []string
	for _, room := range candidates {
		if !room.expireIfIdle(r.cfg.RoomIdleTTL) {
			continue
		}

		r.mu.Lock()
		if r.rooms[room.code] == room {
			delete(r.rooms, room.code)
		}
		r.mu.Unlock()

		metrics.RecordRoomRemoved()
		reaped = append(reaped, room.code)
	}

	if len(reaped) > 0 {
		slices.Sort(reaped)
		r.logger.Info("Reaped idle rooms", "rooms", strings.Join(reaped, ","), "remaining", r.Len())
	}
	return reaped
}

// RunReaper calls Reap every ReapInterval until ctx is done.
func (r *Registry) RunReaper(ctx context.Context) error {
	if r.cfg.RoomIdleTTL <= 0 {
		return nil
	}

	w := r.clock.TickerFunc(ctx, r.cfg.ReapInterval, func() error {
		r.Reap()
		return nil
	}, "registry", "reaper")

	if err := w.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Len returns the number of registered rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Rooms returns summaries of all rooms ordered by code.
func (r *Registry) Rooms() []Summary {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	summaries := make([]Summary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	slices.SortFunc(summaries, func(a, b Summary) int {
		return strings.Compare(a.Code, b.Code)
	})
	return summaries
}

// Close tears down every room.
func (r *Registry) Close() {
	r.mu.Lock()
	rooms := r.rooms
	r.rooms = make(map[string]*Room)
	r.mu.Unlock()

	for _, room := range rooms {
		room.Close()
		metrics.RecordRoomRemoved()
	}
	r.logger.Info("Registry closed", "rooms", len(rooms))
}

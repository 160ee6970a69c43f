package room

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/roulette/internal/metrics"
	"github.com/lox/roulette/internal/roulette"
)

// unknownName labels leaderboard lines whose participant has no name.
const unknownName = "Unknown"

// Wheel draws outcomes and scores bets. *roulette.Engine implements it.
type Wheel interface {
	Spin() roulette.Outcome
	CalculatePayout(bet roulette.Bet, outcome roulette.Outcome) int
}

// Participant is a member of a room's roster.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
}

// Summary is a point-in-time view of a room.
type Summary struct {
	Code         string     `json:"code"`
	Host         string     `json:"host"`
	Status       Status     `json:"status"`
	Participants int        `json:"participants"`
	RoundsPlayed int        `json:"roundsPlayed"`
	Bets         int        `json:"bets"`
	ClosesAt     *time.Time `json:"closesAt,omitempty"`
}

type activeRound struct {
	number    int
	ledger    *BetLedger
	scheduler *RoundScheduler
}

// Room is one isolated game session. All mutation happens under mu, so joins,
// bets, starts and the scheduler's settlement are applied in a single order.
type Room struct {
	code   string
	hostID string
	cfg    Config
	clock  quartz.Clock
	wheel  Wheel
	events Publisher
	logger *log.Logger

	mu           sync.Mutex
	participants map[string]*Participant
	status       Status
	round        *activeRound
	rounds       int
	closed       bool
	lastActivity time.Time
}

func newRoom(code, hostID, hostName string, cfg Config, clock quartz.Clock, wheel Wheel, events Publisher, logger *log.Logger) *Room {
	r := &Room{
		code:         code,
		hostID:       hostID,
		cfg:          cfg,
		clock:        clock,
		wheel:        wheel,
		events:       events,
		logger:       logger.WithPrefix("room").With("room", code),
		participants: make(map[string]*Participant),
		status:       StatusLobby,
		lastActivity: clock.Now(),
	}
	r.addParticipant(hostID, hostName)
	return r
}

// Code returns the room's code.
func (r *Room) Code() string {
	return r.code
}

// HostID returns the participant allowed to start rounds.
func (r *Room) HostID() string {
	return r.hostID
}

// Status returns the current phase.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Participants returns a copy of the roster ordered by name.
func (r *Room) Participants() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Participant) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Balance returns a participant's wallet balance.
func (r *Room) Balance(participantID string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return 0, false
	}
	return p.Balance, true
}

// CurrentBet returns the participant's bet in the open round, if any.
func (r *Room) CurrentBet(participantID string) (roulette.Bet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.round == nil {
		return roulette.Bet{}, false
	}
	return r.round.ledger.Get(participantID)
}

// IdleSince returns when the room last saw a join, start, bet or settlement.
func (r *Room) IdleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

// Summary returns a snapshot for listings.
func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Code:         r.code,
		Host:         r.nameOf(r.hostID),
		Status:       r.status,
		Participants: len(r.participants),
		RoundsPlayed: r.rounds,
	}
	if r.round != nil {
		s.Bets = r.round.ledger.Len()
		deadline := r.round.scheduler.Deadline()
		s.ClosesAt = &deadline
	}
	return s
}

// Join adds a participant, or renames one already present.
func (r *Room) Join(participantID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, r.code)
	}

	r.addParticipant(participantID, name)
	r.touch()
	r.logger.Info("Participant joined", "participant", participantID, "name", name, "participants", len(r.participants))
	r.publish(NotificationEvent{Message: fmt.Sprintf("%s joined", name), timestamp: r.clock.Now()})
	return nil
}

// Start opens a round. Only the host may start one, and only from the lobby.
func (r *Room) Start(requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, r.code)
	}
	if requesterID != r.hostID {
		return ErrNotHost
	}
	if r.round != nil {
		return ErrRoundAlreadyActive
	}
	if err := r.transition(triggerStart); err != nil {
		return fmt.Errorf("%w: %v", ErrRoundAlreadyActive, err)
	}

	r.rounds++
	round := &activeRound{number: r.rounds, ledger: newBetLedger()}
	round.scheduler = startRoundScheduler(r.clock, r.cfg.BettingWindow, func() {
		r.closeRound(round)
	})
	r.round = round
	r.touch()

	r.logger.Info("Round started", "round", round.number, "window", r.cfg.BettingWindow)
	r.publish(RoundStartEvent{
		Round:     round.number,
		Duration:  r.cfg.BettingWindow,
		ClosesAt:  round.scheduler.Deadline(),
		timestamp: r.clock.Now(),
	})
	return nil
}

// PlaceBet records a bet for the open round. A later bet from the same
// participant replaces the earlier one.
func (r *Room) PlaceBet(participantID string, bet roulette.Bet) (err error) {
	defer func() { metrics.RecordBet(string(bet.Normalized().Type), betResult(err)) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, r.code)
	}
	p, ok := r.participants[participantID]
	if !ok {
		return ErrNotParticipant
	}
	if r.round == nil || r.status != StatusBetting || !r.round.ledger.Open() {
		return ErrBettingClosed
	}
	if err := bet.Validate(); err != nil {
		return err
	}
	if r.cfg.walletsEnabled() && bet.Amount > p.Balance {
		return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientFunds, bet.Amount, p.Balance)
	}
	if err := r.round.ledger.Place(participantID, bet); err != nil {
		return err
	}

	r.touch()
	r.logger.Debug("Bet placed", "participant", participantID, "bet", bet.Normalized())
	r.publish(NotificationEvent{Message: fmt.Sprintf("%s placed a bet", p.Name), timestamp: r.clock.Now()})
	return nil
}

// Close tears the room down, cancelling any pending betting window.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.closed = true
	if r.round != nil {
		r.round.scheduler.Cancel()
		r.round.ledger.Close()
		r.round = nil
	}
	// torn down; no round survives
	r.status = StatusLobby
	r.logger.Info("Room closed")
}

// Closed reports whether the room has been torn down.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// expireIfIdle closes the room if it has sat in the lobby for at least ttl.
func (r *Room) expireIfIdle(ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.round != nil || r.clock.Since(r.lastActivity) < ttl {
		return false
	}
	r.closeLocked()
	return true
}

// closeRound runs when the betting window elapses: close, spin, score,
// broadcast, and return to the lobby.
func (r *Room) closeRound(round *activeRound) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.round != round {
		return
	}

	round.ledger.Close()
	if err := r.transition(triggerClose); err != nil {
		r.logger.Error("Failed to close betting", "error", err)
		return
	}
	r.publish(BetsClosedEvent{Round: round.number, timestamp: r.clock.Now()})

	outcome, records, err := r.settle(round.ledger)
	if err != nil {
		r.logger.Error("Round failed", "round", round.number, "error", err)
		metrics.RecordRound(metrics.RoundFailed, round.ledger.Len())
		r.publish(NotificationEvent{
			Message:   fmt.Sprintf("Round %d failed: %v. No bets were settled.", round.number, err),
			timestamp: r.clock.Now(),
		})
	} else {
		r.applyPayouts(records)
		metrics.RecordSpin(outcome.Color.String())
		metrics.RecordRound(metrics.RoundSettled, len(records))
		r.logger.Info("Round settled", "round", round.number, "outcome", outcome, "bets", len(records))
		r.publish(SpinResultEvent{
			Round:       round.number,
			Outcome:     outcome,
			Leaderboard: records,
			timestamp:   r.clock.Now(),
		})
	}

	r.round = nil
	if err := r.transition(triggerSettle); err != nil {
		r.logger.Error("Failed to return to lobby", "error", err)
	}
	r.touch()
}

// settle spins the wheel and scores every bet. A wheel that panics or
// returns an impossible outcome fails the round instead of the process.
func (r *Room) settle(ledger *BetLedger) (outcome roulette.Outcome, records []PayoutRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			records = nil
			err = fmt.Errorf("%w: %v", ErrInternalEngineFailure, p)
		}
	}()

	outcome = r.wheel.Spin()
	if !outcome.Valid() {
		return outcome, nil, fmt.Errorf("%w: wheel produced %d %q", ErrInternalEngineFailure, outcome.Number, outcome.Color)
	}

	bets := ledger.Bets()
	records = make([]PayoutRecord, 0, len(bets))
	for _, pb := range bets {
		records = append(records, PayoutRecord{
			ParticipantID: pb.ParticipantID,
			Name:          r.nameOf(pb.ParticipantID),
			Bet:           pb.Bet,
			Payout:        r.wheel.CalculatePayout(pb.Bet, outcome),
		})
	}
	return outcome, records, nil
}

func (r *Room) applyPayouts(records []PayoutRecord) {
	if !r.cfg.walletsEnabled() {
		return
	}
	for _, rec := range records {
		if p, ok := r.participants[rec.ParticipantID]; ok {
			p.Balance += rec.Payout
		}
	}
}

func (r *Room) addParticipant(id, name string) {
	if p, ok := r.participants[id]; ok {
		p.Name = name
		return
	}
	r.participants[id] = &Participant{ID: id, Name: name, Balance: r.cfg.StartingBalance}
}

func (r *Room) nameOf(id string) string {
	if p, ok := r.participants[id]; ok && p.Name != "" {
		return p.Name
	}
	return unknownName
}

func (r *Room) transition(t trigger) error {
	next, err := nextStatus(r.status, t)
	if err != nil {
		return err
	}
	r.logger.Debug("Status change", "from", r.status, "to", next)
	r.status = next
	return nil
}

func (r *Room) touch() {
	r.lastActivity = r.clock.Now()
}

func (r *Room) publish(event Event) {
	r.events.Publish(r.code, event)
}

func betResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBettingClosed):
		return "closed"
	case errors.Is(err, ErrInvalidBet):
		return "invalid"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	default:
		return "error"
	}
}

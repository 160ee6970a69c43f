package room

import (
	"github.com/lox/roulette/internal/roulette"
)

// PlacedBet is a bet as held by the ledger.
type PlacedBet struct {
	ParticipantID string
	Bet           roulette.Bet
}

// PayoutRecord is one scored line of a round's leaderboard.
type PayoutRecord struct {
	ParticipantID string
	Name          string
	Bet           roulette.Bet
	Payout        int
}

// BetLedger holds the bets of one round. It is owned by the room and relies
// on the room's lock for synchronisation.
type BetLedger struct {
	open  bool
	order []string
	bets  map[string]roulette.Bet
}

func newBetLedger() *BetLedger {
	return &BetLedger{
		open: true,
		bets: make(map[string]roulette.Bet),
	}
}

// Place stores participantID's bet, replacing any earlier one. A replaced
// bet keeps its original leaderboard position.
func (l *BetLedger) Place(participantID string, bet roulette.Bet) error {
	if !l.open {
		return ErrBettingClosed
	}
	if err := bet.Validate(); err != nil {
		return err
	}

	if _, exists := l.bets[participantID]; !exists {
		l.order = append(l.order, participantID)
	}
	l.bets[participantID] = bet.Normalized()
	return nil
}

// Close stops the ledger accepting bets.
func (l *BetLedger) Close() {
	l.open = false
}

// Open reports whether bets are accepted.
func (l *BetLedger) Open() bool {
	return l.open
}

// Get returns participantID's current bet.
func (l *BetLedger) Get(participantID string) (roulette.Bet, bool) {
	bet, ok := l.bets[participantID]
	return bet, ok
}

// Len returns the number of participants with a bet.
func (l *BetLedger) Len() int {
	return len(l.bets)
}

// Bets returns the bets in first-placement order.
func (l *BetLedger) Bets() []PlacedBet {
	out := make([]PlacedBet, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, PlacedBet{ParticipantID: id, Bet: l.bets[id]})
	}
	return out
}

package room

import (
	"testing"

	"github.com/lox/roulette/internal/roulette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerLastWriteWinsKeepsOrder(t *testing.T) {
	l := newBetLedger()
	require.True(t, l.Open())

	require.NoError(t, l.Place("a", roulette.NumberBet(1, 5)))
	require.NoError(t, l.Place("b", roulette.ColorBet(roulette.Red, 5)))
	require.NoError(t, l.Place("a", roulette.ColorBet("BLACK", 7)))

	assert.Equal(t, 2, l.Len())
	bets := l.Bets()
	require.Len(t, bets, 2)
	assert.Equal(t, "a", bets[0].ParticipantID)
	assert.Equal(t, roulette.ColorBet(roulette.Black, 7), bets[0].Bet)
	assert.Equal(t, "b", bets[1].ParticipantID)

	got, ok := l.Get("a")
	require.True(t, ok)
	assert.Equal(t, 7, got.Amount)
}

func TestLedgerClosed(t *testing.T) {
	l := newBetLedger()
	require.NoError(t, l.Place("a", roulette.NumberBet(1, 5)))
	l.Close()

	assert.False(t, l.Open())
	assert.ErrorIs(t, l.Place("a", roulette.NumberBet(2, 5)), ErrBettingClosed)
	assert.ErrorIs(t, l.Place("b", roulette.NumberBet(2, 5)), ErrBettingClosed)

	got, _ := l.Get("a")
	assert.Equal(t, 1, got.Number)
	assert.Equal(t, 1, l.Len())
}

func TestLedgerRejectsInvalid(t *testing.T) {
	l := newBetLedger()
	require.NoError(t, l.Place("a", roulette.NumberBet(1, 5)))

	assert.ErrorIs(t, l.Place("a", roulette.NumberBet(99, 5)), ErrInvalidBet)

	got, ok := l.Get("a")
	require.True(t, ok)
	assert.Equal(t, roulette.NumberBet(1, 5), got)
}

func TestLedgerBetsIsACopy(t *testing.T) {
	l := newBetLedger()
	require.NoError(t, l.Place("a", roulette.NumberBet(1, 5)))

	bets := l.Bets()
	bets[0].Bet.Amount = 1000

	got, _ := l.Get("a")
	assert.Equal(t, 5, got.Amount)
}

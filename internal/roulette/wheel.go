// Package roulette implements the single-zero wheel: drawing outcomes and
// scoring bets against them.
package roulette

import (
	"fmt"

	"github.com/lox/roulette/internal/randutil"
)

// Pockets is the number of pockets on a single-zero wheel (0-36).
const Pockets = 37

// Payout multipliers applied to the stake on a win.
const (
	NumberMultiplier = 35
	ColorMultiplier  = 1
)

// Color is the colour of a wheel pocket.
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

// String returns the string representation of the colour
func (c Color) String() string {
	return string(c)
}

// redNumbers is the canonical red set of the European wheel.
var redNumbers = [...]int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

var colors = func() [Pockets]Color {
	var table [Pockets]Color
	table[0] = Green
	for n := 1; n < Pockets; n++ {
		table[n] = Black
	}
	for _, n := range redNumbers {
		table[n] = Red
	}
	return table
}()

// ColorOf returns the fixed colour of pocket n. Numbers off the wheel have
// no colour.
func ColorOf(n int) Color {
	if n < 0 || n >= Pockets {
		return ""
	}
	return colors[n]
}

// Outcome is the result of one spin.
type Outcome struct {
	Number int
	Color  Color
}

// Valid reports whether the outcome is a real pocket with its table colour.
func (o Outcome) Valid() bool {
	return o.Number >= 0 && o.Number < Pockets && colors[o.Number] == o.Color
}

func (o Outcome) String() string {
	return fmt.Sprintf("%d %s", o.Number, o.Color)
}

// Source supplies uniform integers in [0, n). *rand.Rand and
// *randutil.Locked both satisfy it.
type Source interface {
	IntN(n int) int
}

// Engine draws outcomes from an injected source. It is safe for concurrent
// use by many rooms.
type Engine struct {
	src Source
}

// NewEngine creates an engine drawing from src. Sources that are not already
// goroutine-safe should be wrapped with randutil.NewLocked. A nil src uses a
// time-seeded generator.
func NewEngine(src Source) *Engine {
	if src == nil {
		rng, _ := randutil.NewTimeSeeded()
		src = randutil.NewLocked(rng)
	}
	return &Engine{src: src}
}

// Spin draws a pocket uniformly from 0-36.
func (e *Engine) Spin() Outcome {
	n := e.src.IntN(Pockets)
	return Outcome{Number: n, Color: ColorOf(n)}
}

// CalculatePayout scores bet against outcome. See Payout.
func (e *Engine) CalculatePayout(bet Bet, outcome Outcome) int {
	return Payout(bet, outcome)
}

// Payout returns the signed balance adjustment for bet: the stake times 35 on
// a number hit, times 1 on a colour hit, and minus the stake otherwise
// (including bet types it does not recognise).
func Payout(bet Bet, outcome Outcome) int {
	switch bet.Type {
	case BetNumber:
		if bet.Number == outcome.Number {
			return bet.Amount * NumberMultiplier
		}
	case BetColor:
		if normalizeColor(string(bet.Color)) == outcome.Color {
			return bet.Amount * ColorMultiplier
		}
	}
	return -bet.Amount
}

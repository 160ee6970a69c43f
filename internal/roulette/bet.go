package roulette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidBet is returned for bets that can never be scored.
var ErrInvalidBet = errors.New("invalid bet")

// BetType selects what a bet is placed on.
type BetType string

const (
	BetNumber BetType = "number"
	BetColor  BetType = "color"
)

// String returns the string representation of the bet type
func (t BetType) String() string {
	return string(t)
}

// Bet is one participant's wager. Number is used for number bets and Color
// for colour bets.
type Bet struct {
	Type   BetType
	Number int
	Color  Color
	Amount int
}

// NumberBet builds a straight-up bet on n.
func NumberBet(n, amount int) Bet {
	return Bet{Type: BetNumber, Number: n, Amount: amount}
}

// ColorBet builds an even-money bet on c.
func ColorBet(c Color, amount int) Bet {
	return Bet{Type: BetColor, Color: c, Amount: amount}
}

// ParseBet builds a Bet from loosely typed request fields. Type and colour
// are case-insensitive; a number choice must be a base-10 integer.
func ParseBet(betType, choice string, amount int) (Bet, error) {
	bet := Bet{Type: BetType(strings.ToLower(strings.TrimSpace(betType))), Amount: amount}
	choice = strings.TrimSpace(choice)

	switch bet.Type {
	case BetNumber:
		n, err := strconv.Atoi(choice)
		if err != nil {
			return Bet{}, fmt.Errorf("%w: number choice %q is not an integer", ErrInvalidBet, choice)
		}
		bet.Number = n
	case BetColor:
		bet.Color = normalizeColor(choice)
	default:
		return Bet{}, fmt.Errorf("%w: unknown bet type %q", ErrInvalidBet, betType)
	}

	if err := bet.Validate(); err != nil {
		return Bet{}, err
	}
	return bet, nil
}

// Validate checks the bet against the table rules.
func (b Bet) Validate() error {
	if b.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidBet, b.Amount)
	}

	switch b.Type {
	case BetNumber:
		if b.Number < 0 || b.Number >= Pockets {
			return fmt.Errorf("%w: number must be between 0 and 36, got %d", ErrInvalidBet, b.Number)
		}
	case BetColor:
		if c := normalizeColor(string(b.Color)); c != Red && c != Black {
			return fmt.Errorf("%w: colour must be red or black, got %q", ErrInvalidBet, b.Color)
		}
	default:
		return fmt.Errorf("%w: unknown bet type %q", ErrInvalidBet, b.Type)
	}
	return nil
}

// Normalized returns the bet with its type and colour lower-cased.
func (b Bet) Normalized() Bet {
	b.Type = BetType(strings.ToLower(strings.TrimSpace(string(b.Type))))
	if b.Type == BetColor {
		b.Color = normalizeColor(string(b.Color))
	}
	return b
}

// Choice returns what the bet is on as it is shown to players.
func (b Bet) Choice() string {
	if b.Type == BetNumber {
		return strconv.Itoa(b.Number)
	}
	return string(normalizeColor(string(b.Color)))
}

func (b Bet) String() string {
	return fmt.Sprintf("%d on %s %s", b.Amount, b.Type, b.Choice())
}

func normalizeColor(s string) Color {
	return Color(strings.ToLower(strings.TrimSpace(s)))
}

package roulette

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBet(t *testing.T) {
	tests := []struct {
		name    string
		betType string
		choice  string
		amount  int
		want    Bet
		wantErr bool
	}{
		{name: "number", betType: "number", choice: "17", amount: 10, want: NumberBet(17, 10)},
		{name: "number zero", betType: "number", choice: "0", amount: 1, want: NumberBet(0, 1)},
		{name: "number padded", betType: " Number ", choice: " 36 ", amount: 1, want: NumberBet(36, 1)},
		{name: "colour title case", betType: "color", choice: "Red", amount: 20, want: ColorBet(Red, 20)},
		{name: "colour upper", betType: "COLOR", choice: "BLACK", amount: 5, want: ColorBet(Black, 5)},
		{name: "zero amount", betType: "number", choice: "3", amount: 0, wantErr: true},
		{name: "negative amount", betType: "color", choice: "red", amount: -5, wantErr: true},
		{name: "number too high", betType: "number", choice: "37", amount: 1, wantErr: true},
		{name: "number negative", betType: "number", choice: "-1", amount: 1, wantErr: true},
		{name: "number not integer", betType: "number", choice: "seven", amount: 1, wantErr: true},
		{name: "green not allowed", betType: "color", choice: "green", amount: 1, wantErr: true},
		{name: "unknown colour", betType: "color", choice: "blue", amount: 1, wantErr: true},
		{name: "unknown type", betType: "split", choice: "1", amount: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBet(tt.betType, tt.choice, tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidBet))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBetNormalizedAndChoice(t *testing.T) {
	b := Bet{Type: "Color", Color: "Black", Amount: 3}.Normalized()
	assert.Equal(t, ColorBet(Black, 3), b)
	assert.Equal(t, "black", b.Choice())

	assert.Equal(t, "7", NumberBet(7, 1).Choice())
	assert.Equal(t, "10 on number 7", NumberBet(7, 10).String())
}

package roulette

import (
	"testing"

	"github.com/lox/roulette/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource returns the queued values in order.
type fixedSource struct {
	values []int
	next   int
}

func (f *fixedSource) IntN(n int) int {
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

func TestColorPartition(t *testing.T) {
	wantRed := map[int]bool{
		1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
		19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
	}

	assert.Equal(t, Green, ColorOf(0))

	reds, blacks := 0, 0
	for n := 1; n <= 36; n++ {
		switch ColorOf(n) {
		case Red:
			reds++
			assert.True(t, wantRed[n], "%d should not be red", n)
		case Black:
			blacks++
			assert.False(t, wantRed[n], "%d should be red", n)
		default:
			t.Fatalf("pocket %d has colour %q", n, ColorOf(n))
		}
	}
	assert.Equal(t, 18, reds)
	assert.Equal(t, 18, blacks)

	assert.Equal(t, Color(""), ColorOf(-1))
	assert.Equal(t, Color(""), ColorOf(37))
}

func TestSpinUsesSource(t *testing.T) {
	e := NewEngine(&fixedSource{values: []int{0, 17, 32}})

	assert.Equal(t, Outcome{Number: 0, Color: Green}, e.Spin())
	assert.Equal(t, Outcome{Number: 17, Color: Black}, e.Spin())
	assert.Equal(t, Outcome{Number: 32, Color: Red}, e.Spin())
}

func TestSpinRangeAndUniformity(t *testing.T) {
	const draws = 100000
	e := NewEngine(randutil.NewLocked(randutil.New(20240601)))

	var counts [Pockets]int
	for i := 0; i < draws; i++ {
		o := e.Spin()
		require.True(t, o.Valid(), "invalid outcome %v", o)
		counts[o.Number]++
	}

	expected := float64(draws) / Pockets
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}

	// 36 degrees of freedom, p = 0.001
	assert.Less(t, chi, 67.985, "chi-square %.2f suggests a biased wheel", chi)
}

func TestSpinIsReproducibleFromSeed(t *testing.T) {
	a := NewEngine(randutil.NewLocked(randutil.New(99)))
	b := NewEngine(randutil.NewLocked(randutil.New(99)))

	for i := 0; i < 50; i++ {
		require.Equal(t, a.Spin(), b.Spin())
	}
}

func TestPayout(t *testing.T) {
	seventeen := Outcome{Number: 17, Color: Black}
	redOutcome := Outcome{Number: 3, Color: Red}

	tests := []struct {
		name    string
		bet     Bet
		outcome Outcome
		want    int
	}{
		{"number hit", NumberBet(17, 10), seventeen, 350},
		{"number miss", NumberBet(5, 10), seventeen, -10},
		{"zero hit", NumberBet(0, 2), Outcome{Number: 0, Color: Green}, 70},
		{"colour hit lower", ColorBet("red", 20), redOutcome, 20},
		{"colour hit title case", ColorBet("Red", 20), redOutcome, 20},
		{"colour hit upper", ColorBet("RED", 20), redOutcome, 20},
		{"colour miss", ColorBet(Black, 20), redOutcome, -20},
		{"colour on green", ColorBet(Red, 5), Outcome{Number: 0, Color: Green}, -5},
		{"unknown type", Bet{Type: "unknown", Amount: 15}, seventeen, -15},
		{"unknown type on zero", Bet{Type: "split", Amount: 15}, Outcome{Number: 0, Color: Green}, -15},
	}

	e := NewEngine(&fixedSource{values: []int{0}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Payout(tt.bet, tt.outcome))
			assert.Equal(t, tt.want, e.CalculatePayout(tt.bet, tt.outcome))
		})
	}
}

func TestOutcomeValid(t *testing.T) {
	assert.True(t, Outcome{Number: 1, Color: Red}.Valid())
	assert.False(t, Outcome{Number: 1, Color: Black}.Valid())
	assert.False(t, Outcome{Number: 37, Color: Red}.Valid())
	assert.False(t, Outcome{Number: -1}.Valid())
}

// Package metrics exposes prometheus collectors for rooms, rounds and bets.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Round results recorded by RecordRound.
const (
	RoundSettled = "settled"
	RoundFailed  = "failed"
)

var (
	roomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roulette_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	roomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roulette_rooms_active",
			Help: "Rooms currently registered",
		},
	)

	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_rounds_total",
			Help: "Completed rounds by result",
		},
		[]string{"result"},
	)

	roundBets = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roulette_round_bets",
			Help:    "Number of bets scored per round",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	betsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_bets_total",
			Help: "Bet placements by bet type and result",
		},
		[]string{"type", "result"},
	)

	spinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_spins_total",
			Help: "Wheel outcomes by colour",
		},
		[]string{"color"},
	)
)

// RecordRoomCreated counts a new room and bumps the active gauge.
func RecordRoomCreated() {
	roomsCreated.Inc()
	roomsActive.Inc()
}

// RecordRoomRemoved lowers the active gauge.
func RecordRoomRemoved() {
	roomsActive.Dec()
}

// RecordBet records one placement attempt. result is "success" or a short
// failure reason; betType is normalised to lower-case.
func RecordBet(betType, result string) {
	betsTotal.WithLabelValues(betTypeLabel(betType), result).Inc()
}

// betTypeLabel keeps the type label to the known bet types.
func betTypeLabel(betType string) string {
	switch bt := strings.ToLower(strings.TrimSpace(betType)); bt {
	case "number", "color":
		return bt
	default:
		return "unknown"
	}
}

// RecordRound records a finished round and how many bets it scored.
func RecordRound(result string, bets int) {
	roundsTotal.WithLabelValues(result).Inc()
	if result == RoundSettled {
		roundBets.Observe(float64(bets))
	}
}

// RecordSpin counts a wheel outcome by colour.
func RecordSpin(color string) {
	spinsTotal.WithLabelValues(color).Inc()
}

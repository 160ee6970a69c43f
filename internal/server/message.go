package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lox/roulette/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Choice is what a bet is on. Clients may send numbers as JSON numbers or
// strings; colours are always strings.
type Choice string

// UnmarshalJSON accepts a JSON string or number.
func (c *Choice) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Choice(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("choice must be a string or number: %w", err)
	}
	*c = Choice(n.String())
	return nil
}

// MarshalJSON writes integer choices as numbers.
func (c Choice) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(c)); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(c))
}

// Client → Server Messages

type CreateRoomData struct {
	Username string `json:"username"`
}

type JoinRoomData struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type StartGameData struct {
	Code string `json:"code"`
}

type BetData struct {
	Type   string `json:"type"`
	Choice Choice `json:"choice"`
	Amount int    `json:"amount"`
}

type PlaceBetData struct {
	Code string  `json:"code"`
	Bet  BetData `json:"bet"`
}

// Server → Client Messages

type CreateRoomResponseData struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type JoinRoomResponseData struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type PlaceBetResponseData struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoundStartData struct {
	Round    int       `json:"round"`
	Duration int       `json:"duration"` // seconds, rounded up
	ClosesAt time.Time `json:"closesAt"`
}

type BetsClosedData struct {
	Round int `json:"round"`
}

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Bet    int    `json:"bet"`
	Type   string `json:"type"`
	Choice Choice `json:"choice"`
	Payout int    `json:"payout"`
}

type SpinResultData struct {
	Round       int                `json:"round"`
	Num         int                `json:"num"`
	Color       string             `json:"color"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type NotificationData struct {
	Message string `json:"message"`
}

// windowSeconds rounds a betting window up to whole seconds so a short
// window never reads as zero.
func windowSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// EventToMessage converts a room event into its wire message, stamped with
// the time the event happened.
func EventToMessage(event room.Event) (*Message, error) {
	var (
		msgType MessageType
		data    any
	)

	switch e := event.(type) {
	case room.RoundStartEvent:
		msgType = MessageTypeRoundStart
		data = RoundStartData{
			Round:    e.Round,
			Duration: windowSeconds(e.Duration),
			ClosesAt: e.ClosesAt,
		}

	case room.BetsClosedEvent:
		msgType = MessageTypeBetsClosed
		data = BetsClosedData{Round: e.Round}

	case room.SpinResultEvent:
		msgType = MessageTypeSpinResult
		leaderboard := make([]LeaderboardEntry, 0, len(e.Leaderboard))
		for _, rec := range e.Leaderboard {
			leaderboard = append(leaderboard, LeaderboardEntry{
				Name:   rec.Name,
				Bet:    rec.Bet.Amount,
				Type:   rec.Bet.Type.String(),
				Choice: Choice(rec.Bet.Choice()),
				Payout: rec.Payout,
			})
		}
		data = SpinResultData{
			Round:       e.Round,
			Num:         e.Outcome.Number,
			Color:       e.Outcome.Color.String(),
			Leaderboard: leaderboard,
		}

	case room.NotificationEvent:
		msgType = MessageTypeNotification
		data = NotificationData{Message: e.Message}

	default:
		return nil, fmt.Errorf("unknown event type %T", event)
	}

	msg, err := NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}
	if ts := event.Timestamp(); !ts.IsZero() {
		msg.Timestamp = ts
	}
	return msg, nil
}

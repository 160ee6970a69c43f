package room

import (
	"time"

	"github.com/lox/roulette/internal/roulette"
)

// EventType identifies an outbound room event.
type EventType string

const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeBetsClosed   EventType = "bets_closed"
	EventTypeSpinResult   EventType = "spin_result"
	EventTypeNotification EventType = "notification"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything a room broadcasts to its participants.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Publisher delivers room events to whatever transport is attached. Rooms
// publish while holding their lock, so implementations must not block or
// call back into the room.
type Publisher interface {
	Publish(code string, event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(code string, event Event)

func (f PublisherFunc) Publish(code string, event Event) { f(code, event) }

type discardPublisher struct{}

func (discardPublisher) Publish(string, Event) {}

// RoundStartEvent is published when the host opens betting.
type RoundStartEvent struct {
	Round     int
	Duration  time.Duration
	ClosesAt  time.Time
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// BetsClosedEvent is published when the betting window elapses.
type BetsClosedEvent struct {
	Round     int
	timestamp time.Time
}

func (e BetsClosedEvent) EventType() EventType { return EventTypeBetsClosed }
func (e BetsClosedEvent) Timestamp() time.Time { return e.timestamp }

// SpinResultEvent carries the outcome and the scored leaderboard.
type SpinResultEvent struct {
	Round       int
	Outcome     roulette.Outcome
	Leaderboard []PayoutRecord
	timestamp   time.Time
}

func (e SpinResultEvent) EventType() EventType { return EventTypeSpinResult }
func (e SpinResultEvent) Timestamp() time.Time { return e.timestamp }

// NotificationEvent is a free-form message for the room's log.
type NotificationEvent struct {
	Message   string
	timestamp time.Time
}

func (e NotificationEvent) EventType() EventType { return EventTypeNotification }
func (e NotificationEvent) Timestamp() time.Time { return e.timestamp }

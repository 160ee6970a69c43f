package room

import "fmt"

// Status is the phase of a room's round lifecycle.
type Status string

const (
	StatusLobby    Status = "lobby"    // no round, accepting joins
	StatusBetting  Status = "betting"  // round open, accepting bets
	StatusSpinning Status = "spinning" // bets closed, settling
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// trigger moves a room between statuses.
type trigger string

const (
	triggerStart  trigger = "start"  // host starts a round
	triggerClose  trigger = "close"  // betting window elapsed
	triggerSettle trigger = "settle" // outcome broadcast, round over
)

// nextStatus returns the status reached from cur by t, or an error for any
// transition outside lobby -> betting -> spinning -> lobby.
func nextStatus(cur Status, t trigger) (Status, error) {
	switch cur {
	case StatusLobby:
		if t == triggerStart {
			return StatusBetting, nil
		}
	case StatusBetting:
		if t == triggerClose {
			return StatusSpinning, nil
		}
	case StatusSpinning:
		if t == triggerSettle {
			return StatusLobby, nil
		}
	}
	return cur, fmt.Errorf("invalid transition: %s --%s--> ?", cur, t)
}

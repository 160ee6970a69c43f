package room

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// RoundScheduler closes one round's betting window. It fires at most once
// and never after Cancel.
type RoundScheduler struct {
	mu       sync.Mutex
	timer    *quartz.Timer
	deadline time.Time
	done     bool
}

func startRoundScheduler(clock quartz.Clock, d time.Duration, fire func()) *RoundScheduler {
	s := &RoundScheduler{deadline: clock.Now().Add(d)}
	s.timer = clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.done {
			s.mu.Unlock()
			return
		}
		s.done = true
		s.mu.Unlock()

		fire()
	}, "room", "betting_window")
	return s
}

// Cancel stops the timer. It reports false if the window already fired or
// was cancelled.
func (s *RoundScheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return false
	}
	s.done = true
	s.timer.Stop()
	return true
}

// Deadline is when betting closes.
func (s *RoundScheduler) Deadline() time.Time {
	return s.deadline
}

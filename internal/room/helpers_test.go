package room

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/roomcode"
	"github.com/lox/roulette/internal/roulette"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// eventRecorder captures published events in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	code  string
	event Event
}

func (r *eventRecorder) Publish(code string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{code: code, event: event})
}

func (r *eventRecorder) types(code string) []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []EventType
	for _, e := range r.events {
		if e.code == code {
			out = append(out, e.event.EventType())
		}
	}
	return out
}

func (r *eventRecorder) spinResults(code string) []SpinResultEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []SpinResultEvent
	for _, e := range r.events {
		if sr, ok := e.event.(SpinResultEvent); ok && e.code == code {
			out = append(out, sr)
		}
	}
	return out
}

func (r *eventRecorder) notifications(code string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.events {
		if n, ok := e.event.(NotificationEvent); ok && e.code == code {
			out = append(out, n.Message)
		}
	}
	return out
}

// stubWheel always lands on outcome, or panics when panicMsg is set.
type stubWheel struct {
	outcome  roulette.Outcome
	panicMsg string
}

func (w stubWheel) Spin() roulette.Outcome {
	if w.panicMsg != "" {
		panic(w.panicMsg)
	}
	return w.outcome
}

func (w stubWheel) CalculatePayout(bet roulette.Bet, outcome roulette.Outcome) int {
	return roulette.Payout(bet, outcome)
}

var seventeenBlack = roulette.Outcome{Number: 17, Color: roulette.Black}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *quartz.Mock, *eventRecorder) {
	t.Helper()

	mClock := quartz.NewMock(t)
	rec := &eventRecorder{}
	base := []Option{
		WithClock(mClock),
		WithPublisher(rec),
		WithWheel(stubWheel{outcome: seventeenBlack}),
		WithCodeGenerator(roomcode.NewGenerator(randutil.New(1))),
	}
	reg := NewRegistry(testLogger(), append(base, opts...)...)
	t.Cleanup(reg.Close)
	return reg, mClock, rec
}

// closeBetting advances the mock clock to the next timer and waits for the
// settlement callback to finish.
func closeBetting(t *testing.T, mClock *quartz.Mock) time.Duration {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, w := mClock.AdvanceNext()
	w.MustWait(ctx)
	return d
}

func mustCreate(t *testing.T, reg *Registry, hostID, name string) string {
	t.Helper()
	code, err := reg.CreateRoom(hostID, name)
	require.NoError(t, err)
	return code
}

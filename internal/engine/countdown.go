package engine

import (
	"sync"
	"time"
)

// Tick is one countdown step for a session.
type Tick struct {
	SessionID string
	Remaining int
}

// Countdown emits the remaining seconds of a session once per interval until it
// reaches zero or is stopped. The events channel is closed when it finishes.
type Countdown struct {
	events chan Tick
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func startCountdown(sessionID string, seconds int, interval time.Duration) *Countdown {
	c := &Countdown{
		events: make(chan Tick),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run(sessionID, seconds, interval)
	return c
}

func (c *Countdown) run(sessionID string, remaining int, interval time.Duration) {
	defer close(c.done)
	defer close(c.events)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for remaining > 0 {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}
		remaining--
		select {
		case c.events <- Tick{SessionID: sessionID, Remaining: remaining}:
		case <-c.stop:
			return
		}
	}
}

// Events returns the tick channel.
func (c *Countdown) Events() <-chan Tick {
	return c.events
}

// Stop halts the countdown and waits for its goroutine to exit. Safe to call
// more than once.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
	<-c.done
}

// Package timer implements the single-shot reminder countdown started after a dose.
package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/droptime/internal/constants"
)

// Countdown is a clock-driven, single-shot timer. The owner feeds it the current time;
// it never starts goroutines of its own.
type Countdown struct {
	duration   time.Duration
	deadline   time.Time
	running    bool
	generation int
}

func NewCountdown(d time.Duration) *Countdown {
	if d <= 0 {
		d = constants.DefaultTimerMinutes * time.Minute
	}
	return &Countdown{duration: d}
}

// Start begins a new countdown, replacing any running one, and returns its generation.
// Tick messages carrying an older generation can be discarded by the caller.
func (c *Countdown) Start(now time.Time) int {
	c.deadline = now.Add(c.duration)
	c.running = true
	c.generation++
	return c.generation
}

// Stop cancels the countdown without firing.
func (c *Countdown) Stop() {
	c.running = false
}

// Tick advances the countdown to now. expired is true exactly once, on the tick that
// reaches zero, after which the countdown is stopped.
func (c *Countdown) Tick(now time.Time) (remaining time.Duration, expired bool) {
	if !c.running {
		return 0, false
	}
	remaining = c.deadline.Sub(now)
	if remaining <= 0 {
		c.running = false
		return 0, true
	}
	return remaining, false
}

// Remaining returns the time left at now, 0 when idle.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if !c.running {
		return 0
	}
	if r := c.deadline.Sub(now); r > 0 {
		return r
	}
	return 0
}

func (c *Countdown) Running() bool   { return c.running }
func (c *Countdown) Generation() int { return c.generation }

func (c *Countdown) Duration() time.Duration { return c.duration }

// Format renders d as m:ss, rounding partial seconds up so the display never shows 0:00
// while time remains.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Run drives a countdown in real time, calling onTick every interval with the time left.
// It returns nil when the countdown expires and ctx.Err() when cancelled first.
func Run(ctx context.Context, c *Countdown, interval time.Duration, onTick func(time.Duration)) error {
	if interval <= 0 {
		interval = constants.TimerTick
	}
	if !c.Running() {
		c.Start(time.Now())
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if onTick != nil {
		onTick(c.Remaining(time.Now()))
	}
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case now := <-ticker.C:
			remaining, expired := c.Tick(now)
			if onTick != nil {
				onTick(remaining)
			}
			if expired {
				return nil
			}
		}
	}
}

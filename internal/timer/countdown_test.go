package timer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCountdownExpiresOnce(t *testing.T) {
	start := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	c := NewCountdown(5 * time.Minute)
	c.Start(start)

	remaining, expired := c.Tick(start.Add(time.Minute))
	if expired || remaining != 4*time.Minute {
		t.Fatalf("Tick(+1m) = %v, %v", remaining, expired)
	}

	_, expired = c.Tick(start.Add(5 * time.Minute))
	if !expired {
		t.Fatal("countdown did not expire at deadline")
	}
	if c.Running() {
		t.Error("countdown still running after expiry")
	}
	if _, expired := c.Tick(start.Add(6 * time.Minute)); expired {
		t.Error("countdown expired twice")
	}
}

func TestStartReplacesRunningCountdown(t *testing.T) {
	start := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	c := NewCountdown(5 * time.Minute)
	first := c.Start(start)
	second := c.Start(start.Add(4 * time.Minute))

	if second <= first {
		t.Errorf("generation did not advance: %d -> %d", first, second)
	}
	if _, expired := c.Tick(start.Add(5 * time.Minute)); expired {
		t.Error("replaced countdown fired at the old deadline")
	}
	if got := c.Remaining(start.Add(5 * time.Minute)); got != 4*time.Minute {
		t.Errorf("Remaining() = %v, want 4m", got)
	}
}

func TestStopCancels(t *testing.T) {
	start := time.Now()
	c := NewCountdown(time.Minute)
	c.Start(start)
	c.Stop()
	if _, expired := c.Tick(start.Add(2 * time.Minute)); expired {
		t.Error("stopped countdown fired")
	}
	if c.Remaining(start) != 0 {
		t.Error("stopped countdown reports remaining time")
	}
}

func TestDefaultDuration(t *testing.T) {
	if got := NewCountdown(0).Duration(); got != 5*time.Minute {
		t.Errorf("default duration = %v, want 5m", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Minute, "5:00"},
		{4*time.Minute + 59*time.Second, "4:59"},
		{1500 * time.Millisecond, "0:02"},
		{0, "0:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunExpires(t *testing.T) {
	c := NewCountdown(30 * time.Millisecond)
	ticks := 0
	err := Run(context.Background(), c, 5*time.Millisecond, func(time.Duration) { ticks++ })
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if ticks < 2 {
		t.Errorf("onTick called %d times", ticks)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCountdown(time.Hour)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := Run(ctx, c, 5*time.Millisecond, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if c.Running() {
		t.Error("countdown still running after cancel")
	}
}

// ABOUTME: Tests for clock sources and liveness tracking
// ABOUTME: Tests manual clock movement, heartbeat expiry and quality levels
package sync

import (
	"testing"
	"time"
)

func TestManualClockAdvance(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewManualClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("expected %v, got %v", start, c.Now())
	}

	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("expected 1.5s elapsed, got %v", got)
	}

	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("expected clock reset to %v, got %v", start, c.Now())
	}
}

func TestSystemClockMoves(t *testing.T) {
	var c SystemClock
	a := c.Now()
	time.Sleep(time.Millisecond)
	if !c.Now().After(a) {
		t.Error("expected system clock to advance")
	}
}

func TestLivenessExpiry(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	l := NewLiveness(clock, 3*time.Second)
	l.Beat()

	clock.Advance(3 * time.Second)
	if l.Expired() {
		t.Error("exactly at timeout must not be expired")
	}

	clock.Advance(time.Millisecond)
	if !l.Expired() {
		t.Error("expected expiry after timeout")
	}

	l.Beat()
	if l.Expired() {
		t.Error("expected beat to refresh liveness")
	}
	if l.Beats() != 2 {
		t.Errorf("expected 2 beats, got %d", l.Beats())
	}
}

func TestLivenessQuality(t *testing.T) {
	tests := []struct {
		elapsed  time.Duration
		expected Quality
	}{
		{0, QualityGood},
		{1500 * time.Millisecond, QualityGood},
		{2 * time.Second, QualityDegraded},
		{3 * time.Second, QualityDegraded},
		{4 * time.Second, QualityLost},
	}

	for _, tt := range tests {
		clock := NewManualClock(time.Unix(0, 0))
		l := NewLiveness(clock, 3*time.Second)
		l.Beat()
		clock.Advance(tt.elapsed)

		if q := l.Quality(); q != tt.expected {
			t.Errorf("elapsed %v: expected %v, got %v", tt.elapsed, tt.expected, q)
		}
	}
}

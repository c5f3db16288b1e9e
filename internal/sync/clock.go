// ABOUTME: Clock sources and link liveness tracking
// ABOUTME: Wall clock abstraction plus heartbeat-based quality classification
package sync

import (
	"sync"
	"time"
)

// Clock supplies the current time. Components take a Clock instead of
// calling time.Now so tests can drive time explicitly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process clock (monotonic reading included)
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Quality represents link quality as seen through heartbeats
type Quality int

const (
	QualityGood Quality = iota
	QualityDegraded
	QualityLost
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityDegraded:
		return "degraded"
	default:
		return "lost"
	}
}

// Liveness tracks the last heartbeat seen on a transport. The connection
// loop beats it, any goroutine may read it.
type Liveness struct {
	mu      sync.Mutex
	clock   Clock
	timeout time.Duration
	last    time.Time
	beats   int64
}

// NewLiveness creates a tracker that declares the link lost after timeout
func NewLiveness(clock Clock, timeout time.Duration) *Liveness {
	return &Liveness{
		clock:   clock,
		timeout: timeout,
	}
}

// Beat records a heartbeat at the current time
func (l *Liveness) Beat() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = l.clock.Now()
	l.beats++
}

// Since returns the time elapsed since the last heartbeat
func (l *Liveness) Since() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clock.Now().Sub(l.last)
}

// Expired reports whether more than timeout has passed since the last beat
func (l *Liveness) Expired() bool {
	return l.Since() > l.timeout
}

// Beats returns the number of heartbeats recorded
func (l *Liveness) Beats() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.beats
}

// Quality classifies the link: good within half the timeout, degraded up to
// the timeout, lost beyond it
func (l *Liveness) Quality() Quality {
	since := l.Since()
	switch {
	case since <= l.timeout/2:
		return QualityGood
	case since <= l.timeout:
		return QualityDegraded
	default:
		return QualityLost
	}
}

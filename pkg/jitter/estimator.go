// ABOUTME: Packet inter-arrival jitter estimator
// ABOUTME: Sliding-window mean/stddev and a recommended buffer duration
package jitter

import (
	"math"
	"time"
)

const (
	// DefaultWindowSize is the number of intervals kept for statistics
	DefaultWindowSize = 2000

	// DefaultTailFactor is K in the mean + K*stddev buffer heuristic. It is a
	// tuning constant, not a percentile bound.
	DefaultTailFactor = 4.0
)

// Config tunes the estimator
type Config struct {
	WindowSize int
	TailFactor float64
}

// Snapshot is the result of one arrival
type Snapshot struct {
	MeanMs             float64
	StdDevMs           float64
	RecommendedSeconds float64
	Samples            int
}

// Estimator tracks the variance of packet inter-arrival times. It is not
// safe for concurrent use; the session loop owns it.
type Estimator struct {
	config Config

	lastArrival  time.Time
	lastInterval time.Duration
	hasLast      bool

	// Ring buffer of intervals in milliseconds
	window []float64
	head   int
	count  int

	last Snapshot
}

// New creates an estimator, filling zero config fields with defaults
func New(config Config) *Estimator {
	if config.WindowSize <= 0 {
		config.WindowSize = DefaultWindowSize
	}
	if config.TailFactor <= 0 {
		config.TailFactor = DefaultTailFactor
	}

	return &Estimator{
		config: config,
		window: make([]float64, config.WindowSize),
	}
}

// OnPacketArrival records an arrival. The first call after New or Reset only
// stores the timestamp and reports ok=false.
func (e *Estimator) OnPacketArrival(now time.Time) (Snapshot, bool) {
	if !e.hasLast {
		e.lastArrival = now
		e.hasLast = true
		return e.last, false
	}

	e.lastInterval = now.Sub(e.lastArrival)
	interval := float64(e.lastInterval) / float64(time.Millisecond)
	e.lastArrival = now
	e.push(interval)

	mean, variance := e.stats()
	stddev := math.Sqrt(variance)

	e.last = Snapshot{
		MeanMs:             mean,
		StdDevMs:           stddev,
		RecommendedSeconds: (mean + e.config.TailFactor*stddev) / 1000,
		Samples:            e.count,
	}
	return e.last, true
}

// push appends an interval, evicting the oldest once the window is full
func (e *Estimator) push(interval float64) {
	e.window[e.head] = interval
	e.head = (e.head + 1) % len(e.window)
	if e.count < len(e.window) {
		e.count++
	}
}

// stats computes mean and population variance over the window
func (e *Estimator) stats() (float64, float64) {
	if e.count == 0 {
		return 0, 0
	}

	// Order does not matter here; until the ring wraps only the first
	// count slots are filled
	values := e.window[:e.count]

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(e.count)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, sq / float64(e.count)
}

// Intervals returns the window contents, oldest first
func (e *Estimator) Intervals() []float64 {
	out := make([]float64, e.count)
	start := (e.head - e.count + len(e.window)) % len(e.window)
	for i := 0; i < e.count; i++ {
		out[i] = e.window[(start+i)%len(e.window)]
	}
	return out
}

// Len returns the number of intervals in the window
func (e *Estimator) Len() int {
	return e.count
}

// Last returns the most recent snapshot
func (e *Estimator) Last() Snapshot {
	return e.last
}

// LastInterval returns the most recent inter-arrival time
func (e *Estimator) LastInterval() time.Duration {
	return e.lastInterval
}

// Reset forgets the last arrival so the next packet starts a new interval
// chain. The window and last snapshot are kept.
func (e *Estimator) Reset() {
	e.hasLast = false
	e.lastArrival = time.Time{}
}

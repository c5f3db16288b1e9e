// ABOUTME: Headless sink without an audio device
// ABOUTME: Keeps the Sink clock semantics using an injectable clock
package output

import (
	"sync"
	"time"

	isync "github.com/Resonate-Protocol/livelisten/internal/sync"
)

// NullHistory is how many recent Play calls a Null sink remembers
const NullHistory = 4096

// Scheduled records one Play call on a Null sink
type Scheduled struct {
	Samples int
	Start   float64
	Rate    float64
}

// Null discards audio. Its clock is the elapsed time of clock since Open,
// so scheduling behaves as with a device that renders in real time.
type Null struct {
	mu         sync.Mutex
	clock      isync.Clock
	sampleRate int
	opened     time.Time
	played     []Scheduled
	count      int64
	volume     int
	muted      bool
}

// NewNull creates a headless sink. A nil clock means the system clock.
func NewNull(sampleRate int, clock isync.Clock) *Null {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if clock == nil {
		clock = isync.SystemClock{}
	}
	return &Null{
		clock:      clock,
		sampleRate: sampleRate,
		opened:     clock.Now(),
		volume:     100,
	}
}

// Open restarts the output clock
func (n *Null) Open() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = n.clock.Now()
	return nil
}

// SampleRate returns the configured rate
func (n *Null) SampleRate() int {
	return n.sampleRate
}

// Now returns seconds since Open
func (n *Null) Now() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clock.Now().Sub(n.opened).Seconds()
}

// Play records the instruction. Only the last NullHistory records are kept.
func (n *Null) Play(samples []float32, start, rate float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.count++
	n.played = append(n.played, Scheduled{Samples: len(samples), Start: start, Rate: rate})

	// Trim in batches so the copy is amortized over NullHistory calls
	if len(n.played) >= 2*NullHistory {
		n.played = append([]Scheduled(nil), n.played[len(n.played)-NullHistory:]...)
	}
}

// Reset drops recorded instructions that have not started yet
func (n *Null) Reset() {
	now := n.Now()

	n.mu.Lock()
	defer n.mu.Unlock()

	keep := n.played[:0]
	for _, s := range n.played {
		if s.Start <= now {
			keep = append(keep, s)
		}
	}
	n.played = keep
}

// Played returns a copy of the most recent instructions, oldest first
func (n *Null) Played() []Scheduled {
	n.mu.Lock()
	defer n.mu.Unlock()

	tail := n.played
	if len(tail) > NullHistory {
		tail = tail[len(tail)-NullHistory:]
	}
	return append([]Scheduled(nil), tail...)
}

// Count returns the number of Play calls since creation
func (n *Null) Count() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

// SetVolume sets the volume (0-100)
func (n *Null) SetVolume(volume int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.volume = clampVolume(volume)
}

// SetMuted sets mute state
func (n *Null) SetMuted(muted bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted = muted
}

// Close is a no-op
func (n *Null) Close() error {
	return nil
}

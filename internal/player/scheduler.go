// ABOUTME: Adaptive playback scheduler
// ABOUTME: Times frames on the output clock and steers buffer depth via playback rate
package player

import (
	"math"
	"time"

	"github.com/Resonate-Protocol/livelisten/internal/sync"
)

const (
	// Target buffer bounds in seconds
	MinBufferDuration = 0.15
	MaxBufferDuration = 1.2

	// EMAFactor is the weight kept from the previous mean buffer latency
	EMAFactor = 0.995

	// Playback rates
	FastRate   = 1.02
	NormalRate = 1.0
	SlowRate   = 0.98

	// Hysteresis bands around the target (seconds)
	aboveTargetBand = 0.15
	belowTargetBand = 0.05

	// A frame arriving this late after the scheduled end is an audible gap
	gapThreshold = 0.01

	// Underruns are reported over this window
	GapWindow = 60 * time.Second
)

// Trend is the direction the buffer is being steered in
type Trend int

const (
	Stable Trend = iota
	Increasing
	Decreasing
)

func (t Trend) String() string {
	switch t {
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	default:
		return "stable"
	}
}

// Instruction tells the output sink when and how fast to play a frame
type Instruction struct {
	StartTime float64 // seconds on the output clock
	Rate      float64
}

// Underrun records playback catching up with the schedule
type Underrun struct {
	At       time.Time
	Duration float64 // seconds of silence
}

// State is the scheduler's view of the buffer
type State struct {
	ScheduledTime     float64
	TargetBuffer      float64
	BufferLatency     float64
	MeanBufferLatency float64
	Trend             Trend
	Rate              float64
}

// SchedulerStats tracks scheduler metrics
type SchedulerStats struct {
	Scheduled int64
	Underruns int64
}

// SchedulerConfig bounds the target buffer. Zero values take the defaults.
type SchedulerConfig struct {
	MinBuffer float64
	MaxBuffer float64
}

// Scheduler turns decoded frames into timed playback instructions. It is
// owned by the session loop and not safe for concurrent use.
type Scheduler struct {
	clock     sync.Clock
	minBuffer float64
	maxBuffer float64

	scheduledTime     float64
	targetBuffer      float64
	bufferLatency     float64
	meanBufferLatency float64
	trend             Trend
	rate              float64

	underruns []Underrun
	stats     SchedulerStats
}

// NewScheduler creates a scheduler targeting the minimum buffer
func NewScheduler(cfg SchedulerConfig, clock sync.Clock) *Scheduler {
	if cfg.MinBuffer <= 0 {
		cfg.MinBuffer = MinBufferDuration
	}
	if cfg.MaxBuffer < cfg.MinBuffer {
		cfg.MaxBuffer = MaxBufferDuration
	}
	if clock == nil {
		clock = sync.SystemClock{}
	}

	return &Scheduler{
		clock:        clock,
		minBuffer:    cfg.MinBuffer,
		maxBuffer:    cfg.MaxBuffer,
		targetBuffer: cfg.MinBuffer,
		rate:         NormalRate,
	}
}

// SetTargetBuffer clamps seconds into the configured bounds and makes it the
// new target. NaN and +Inf map to the maximum.
func (s *Scheduler) SetTargetBuffer(seconds float64) {
	s.targetBuffer = clampTarget(seconds, s.minBuffer, s.maxBuffer)
}

func clampTarget(seconds, lo, hi float64) float64 {
	if math.IsNaN(seconds) {
		return hi
	}
	return math.Min(hi, math.Max(lo, seconds))
}

// OnFrameReady schedules a frame lasting frameSeconds at normal rate, given
// the current output clock now (seconds)
func (s *Scheduler) OnFrameReady(frameSeconds, now float64) Instruction {
	playbackTime := math.Max(now, s.scheduledTime)

	if s.scheduledTime > 0 && now > s.scheduledTime+gapThreshold {
		s.underruns = append(s.underruns, Underrun{
			At:       s.clock.Now(),
			Duration: now - s.scheduledTime,
		})
		s.stats.Underruns++
	}
	s.pruneUnderruns()

	s.bufferLatency = playbackTime - now
	s.meanBufferLatency = s.meanBufferLatency*EMAFactor + s.bufferLatency*(1-EMAFactor)

	s.rate, s.trend = s.decideRate()

	s.scheduledTime = playbackTime + frameSeconds/s.rate
	s.stats.Scheduled++

	return Instruction{StartTime: playbackTime, Rate: s.rate}
}

// decideRate applies hysteresis: once speeding up or slowing down, keep
// going until the mean crosses the target itself
func (s *Scheduler) decideRate() (float64, Trend) {
	mean, target := s.meanBufferLatency, s.targetBuffer

	switch {
	case mean > target+aboveTargetBand || (s.trend == Decreasing && mean > target):
		return FastRate, Decreasing
	case mean < target-belowTargetBand || (s.trend == Increasing && mean < target):
		return SlowRate, Increasing
	default:
		return NormalRate, Stable
	}
}

// pruneUnderruns drops underruns older than GapWindow
func (s *Scheduler) pruneUnderruns() {
	cutoff := s.clock.Now().Add(-GapWindow)

	keep := s.underruns[:0]
	for _, u := range s.underruns {
		if u.At.After(cutoff) {
			keep = append(keep, u)
		}
	}
	s.underruns = keep
}

// Reset forgets the schedule so the next frame starts immediately. Mean
// latency and trend are kept.
func (s *Scheduler) Reset() {
	s.scheduledTime = 0
}

// GapCount returns the number of underruns in the last GapWindow
func (s *Scheduler) GapCount() int {
	s.pruneUnderruns()
	return len(s.underruns)
}

// Underruns returns a copy of the recent underruns
func (s *Scheduler) Underruns() []Underrun {
	s.pruneUnderruns()
	return append([]Underrun(nil), s.underruns...)
}

// State returns the current buffer state
func (s *Scheduler) State() State {
	return State{
		ScheduledTime:     s.scheduledTime,
		TargetBuffer:      s.targetBuffer,
		BufferLatency:     s.bufferLatency,
		MeanBufferLatency: s.meanBufferLatency,
		Trend:             s.trend,
		Rate:              s.rate,
	}
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() SchedulerStats {
	return s.stats
}

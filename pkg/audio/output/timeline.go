// ABOUTME: Sample-clock mixer feeding device sinks
// ABOUTME: Renders scheduled frames with rate stretching, mixing and volume
package output

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

// positionTolerance absorbs float error when a start time falls on a sample
const positionTolerance = 1e-6

// voice is one scheduled frame
type voice struct {
	samples []float32
	start   float64
	rate    float64
}

// end returns the output time at which the voice has been fully played
func (v voice) end(sampleRate int) float64 {
	return v.start + float64(len(v.samples))/(float64(sampleRate)*v.rate)
}

// Timeline mixes scheduled voices on a monotonic sample clock. Play runs on
// the session goroutine, Read on the device callback goroutine.
type Timeline struct {
	mu         sync.Mutex
	sampleRate int
	position   int64 // frames rendered so far
	voices     []voice
	volume     int
	muted      bool
	mix        []float32
}

// NewTimeline creates an empty timeline at sampleRate
func NewTimeline(sampleRate int) *Timeline {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Timeline{
		sampleRate: sampleRate,
		volume:     100,
	}
}

// SampleRate returns the rendering rate
func (t *Timeline) SampleRate() int {
	return t.sampleRate
}

// Now returns rendered frames expressed in seconds
func (t *Timeline) Now() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.position) / float64(t.sampleRate)
}

// Play schedules samples at start seconds. Non-positive rates play at 1.0.
func (t *Timeline) Play(samples []float32, start, rate float64) {
	if len(samples) == 0 {
		return
	}
	if rate <= 0 || math.IsNaN(rate) {
		rate = 1.0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.voices = append(t.voices, voice{samples: samples, start: start, rate: rate})
}

// Reset drops all pending voices. The clock keeps running.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.voices = nil
}

// Pending returns the number of voices not yet fully rendered
func (t *Timeline) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.voices)
}

// SetVolume sets the volume (0-100)
func (t *Timeline) SetVolume(volume int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = clampVolume(volume)
}

// SetMuted sets mute state
func (t *Timeline) SetMuted(muted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.muted = muted
}

// Volume returns current volume
func (t *Timeline) Volume() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// Muted returns mute state
func (t *Timeline) Muted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.muted
}

// Render mixes the next len(out) frames into out and advances the clock
func (t *Timeline) Render(out []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.render(out)
}

func (t *Timeline) render(out []float32) {
	clear(out)
	rate := float64(t.sampleRate)

	for _, v := range t.voices {
		last := len(v.samples) - 1
		for k := range out {
			now := float64(t.position+int64(k)) / rate
			pos := (now - v.start) * rate * v.rate
			if pos < -positionTolerance {
				continue
			}
			if pos > float64(last)+positionTolerance {
				break
			}
			pos = math.Max(0, math.Min(pos, float64(last)))

			i := int(pos)
			frac := float32(pos - float64(i))
			next := i + 1
			if next > last {
				next = last
			}
			out[k] += v.samples[i]*(1-frac) + v.samples[next]*frac
		}
	}

	gain := getVolumeMultiplier(t.volume, t.muted)
	for k, s := range out {
		s *= gain
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[k] = s
	}

	t.position += int64(len(out))
	t.prune()
}

// prune drops voices that ended before the current clock
func (t *Timeline) prune() {
	now := float64(t.position) / float64(t.sampleRate)

	keep := t.voices[:0]
	for _, v := range t.voices {
		if v.end(t.sampleRate) > now {
			keep = append(keep, v)
		}
	}
	clear(t.voices[len(keep):])
	t.voices = keep
}

// Read renders mono signed 16-bit little-endian PCM. It always fills whole
// frames and emits silence when nothing is scheduled.
func (t *Timeline) Read(p []byte) (int, error) {
	frames := len(p) / 2
	if frames == 0 {
		return 0, nil
	}

	t.mu.Lock()
	if cap(t.mix) < frames {
		t.mix = make([]float32, frames)
	}
	mix := t.mix[:frames]
	t.render(mix)
	t.mu.Unlock()

	for i, s := range mix {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(audio.Float32ToInt16(s)))
	}
	return frames * 2, nil
}

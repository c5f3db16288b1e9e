// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for scheduled playback backends
package output

// DefaultSampleRate is the playback engine rate
const DefaultSampleRate = 44100

// Sink plays mono float frames at absolute times on its own clock
type Sink interface {
	// Open initializes the output device
	Open() error

	// SampleRate is the rate frames must be resampled to before Play
	SampleRate() int

	// Now returns the output clock in seconds
	Now() float64

	// Play schedules samples to start at start seconds, played at rate.
	// It never blocks on the device.
	Play(samples []float32, start, rate float64)

	// Reset drops everything scheduled but not yet played
	Reset()

	// SetVolume sets the volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// Close releases output resources
	Close() error
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float32 {
	if muted {
		return 0.0
	}
	return float32(volume) / 100.0
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

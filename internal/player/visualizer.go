// ABOUTME: Rolling sample window for waveform display
// ABOUTME: Keeps the most recent decoded samples for UI snapshots
package player

import "sync"

// DefaultVisualSamples is the waveform window length
const DefaultVisualSamples = 2048

// Visualizer holds the last N samples pushed through the pipeline. The
// session writes, the UI reads snapshots.
type Visualizer struct {
	mu      sync.Mutex
	samples []float32
	size    int
}

// NewVisualizer creates a zero-filled window of size samples
func NewVisualizer(size int) *Visualizer {
	if size <= 0 {
		size = DefaultVisualSamples
	}
	return &Visualizer{
		samples: make([]float32, size),
		size:    size,
	}
}

// Push appends samples, dropping the oldest to keep the window size fixed
func (v *Visualizer) Push(samples []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(samples) >= v.size {
		copy(v.samples, samples[len(samples)-v.size:])
		return
	}

	copy(v.samples, v.samples[len(samples):])
	copy(v.samples[v.size-len(samples):], samples)
}

// Snapshot returns a copy of the window, oldest first
func (v *Visualizer) Snapshot() []float32 {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]float32, v.size)
	copy(out, v.samples)
	return out
}

// Reset zeroes the window
func (v *Visualizer) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	clear(v.samples)
}

// Peak returns the largest absolute sample in the window
func (v *Visualizer) Peak() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()

	var peak float32
	for _, s := range v.samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// ABOUTME: Test tone generator for the dev server
// ABOUTME: Generates a mono sine wave at the stream rate
package server

import (
	"math"
	"sync"
)

// ToneSource generates a continuous mono sine tone
type ToneSource struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	frequency   float64
	sampleRate  int
	amplitude   float64
}

// NewToneSource creates a tone generator at half volume
func NewToneSource(frequency float64, sampleRate int) *ToneSource {
	return &ToneSource{
		frequency:  frequency,
		sampleRate: sampleRate,
		amplitude:  0.5,
	}
}

// Read fills samples with the next stretch of the tone
func (s *ToneSource) Read(samples []int16) int {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	for i := range samples {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		sample := math.Sin(2 * math.Pi * s.frequency * t)
		samples[i] = int16(sample * 32767.0 * s.amplitude)
	}

	s.sampleIndex += uint64(len(samples))

	return len(samples)
}

// SampleRate returns the generation rate
func (s *ToneSource) SampleRate() int { return s.sampleRate }

// Title describes the source for the TUI
func (s *ToneSource) Title() string {
	return "Test Tone"
}

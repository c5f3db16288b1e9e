// ABOUTME: Tests for the linear resampler
// ABOUTME: Checks identity, output length, interpolation and edge clamping
package resample

import (
	"math"
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	input := []float32{0.1, -0.2, 0.3, -0.4}

	for _, rate := range []int{8000, 22000, 44100, 48000} {
		output := Resample(input, rate, rate)
		if len(output) != len(input) {
			t.Fatalf("rate %d: expected %d samples, got %d", rate, len(input), len(output))
		}
		if &output[0] != &input[0] {
			t.Errorf("rate %d: expected input slice to be returned as is", rate)
		}
	}
}

func TestResampleOutputLength(t *testing.T) {
	tests := []struct {
		n, from, to int
	}{
		{441, 22000, 44100},
		{1000, 44100, 22000},
		{333, 16000, 44100},
		{7, 44100, 8000},
		{1, 8000, 48000},
		{2000, 127000, 44100},
	}

	for _, tt := range tests {
		input := make([]float32, tt.n)
		output := Resample(input, tt.from, tt.to)
		expected := int(math.Round(float64(tt.n) * float64(tt.to) / float64(tt.from)))
		if len(output) != expected {
			t.Errorf("n=%d %d->%d: expected %d samples, got %d", tt.n, tt.from, tt.to, expected, len(output))
		}
		if OutputLength(tt.n, tt.from, tt.to) != expected {
			t.Errorf("OutputLength(%d, %d, %d) = %d, want %d", tt.n, tt.from, tt.to, OutputLength(tt.n, tt.from, tt.to), expected)
		}
	}
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	input := []float32{0, 1, 0, -1}
	output := Resample(input, 1000, 2000)

	expected := []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -1}
	if len(output) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(output))
	}
	for i := range expected {
		if math.Abs(float64(output[i]-expected[i])) > 1e-6 {
			t.Errorf("sample %d: expected %f, got %f", i, expected[i], output[i])
		}
	}
}

func TestResampleDownsample(t *testing.T) {
	input := []float32{0, 0.25, 0.5, 0.75, 1, 1.25}
	output := Resample(input, 2000, 1000)

	expected := []float32{0, 0.5, 1}
	if len(output) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(output))
	}
	for i := range expected {
		if math.Abs(float64(output[i]-expected[i])) > 1e-6 {
			t.Errorf("sample %d: expected %f, got %f", i, expected[i], output[i])
		}
	}
}

func TestResampleEmptyInput(t *testing.T) {
	output := Resample(nil, 22000, 44100)
	if len(output) != 0 {
		t.Errorf("expected empty output, got %d samples", len(output))
	}
}

func TestResampleInvalidRates(t *testing.T) {
	input := []float32{1, 2, 3}
	if out := Resample(input, 0, 44100); len(out) != 3 {
		t.Errorf("expected input back for zero rate, got %d samples", len(out))
	}
}

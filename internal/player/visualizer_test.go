// ABOUTME: Tests for the waveform window
// ABOUTME: Tests shifting, truncation and reset
package player

import "testing"

func TestVisualizerPushShifts(t *testing.T) {
	v := NewVisualizer(4)

	v.Push([]float32{1, 2})
	v.Push([]float32{3})

	got := v.Snapshot()
	want := []float32{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestVisualizerKeepsNewestWhenOversized(t *testing.T) {
	v := NewVisualizer(3)

	v.Push([]float32{1, 2, 3, 4, 5})

	got := v.Snapshot()
	want := []float32{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestVisualizerReset(t *testing.T) {
	v := NewVisualizer(DefaultVisualSamples)
	v.Push([]float32{0.5, -0.75})

	if v.Peak() != 0.75 {
		t.Errorf("expected peak 0.75, got %f", v.Peak())
	}

	v.Reset()

	if v.Peak() != 0 {
		t.Errorf("expected silence after reset, got peak %f", v.Peak())
	}
	if len(v.Snapshot()) != DefaultVisualSamples {
		t.Errorf("expected %d samples, got %d", DefaultVisualSamples, len(v.Snapshot()))
	}
}

func TestVisualizerSnapshotIsCopy(t *testing.T) {
	v := NewVisualizer(2)
	v.Push([]float32{1, 1})

	snap := v.Snapshot()
	snap[0] = 9

	if v.Snapshot()[0] != 1 {
		t.Error("snapshot aliases internal buffer")
	}
}

// ABOUTME: Audio output tests
// ABOUTME: Tests timeline mixing, volume and the headless sink clock
package output

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/Resonate-Protocol/livelisten/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinksImplementSink(t *testing.T) {
	var _ Sink = (*Oto)(nil)
	var _ Sink = (*Null)(nil)
}

func TestVolumeMultiplier(t *testing.T) {
	tests := []struct {
		volume   int
		muted    bool
		expected float32
	}{
		{100, false, 1.0},
		{50, false, 0.5},
		{0, false, 0.0},
		{80, true, 0.0}, // Muted overrides volume
	}

	for _, tt := range tests {
		result := getVolumeMultiplier(tt.volume, tt.muted)
		if result != tt.expected {
			t.Errorf("volume=%d, muted=%v: expected %f, got %f",
				tt.volume, tt.muted, tt.expected, result)
		}
	}
}

func constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestTimelineClockCountsRenderedFrames(t *testing.T) {
	tl := NewTimeline(100)
	out := make([]float32, 50)

	tl.Render(out)

	assert.InDelta(t, 0.5, tl.Now(), 1e-12)
	for _, s := range out {
		assert.Equal(t, float32(0), s)
	}
}

func TestTimelinePlaysAtStartTime(t *testing.T) {
	tl := NewTimeline(100)
	tl.Play(constant(5, 0.5), 0.1, 1.0)

	out := make([]float32, 20)
	tl.Render(out)

	for k, s := range out {
		if k >= 10 && k < 15 {
			assert.InDelta(t, 0.5, s, 1e-6, "frame %d", k)
		} else {
			assert.Equal(t, float32(0), s, "frame %d", k)
		}
	}
}

func TestTimelineRateStretches(t *testing.T) {
	tl := NewTimeline(100)
	tl.Play(constant(10, 0.5), 0, 2.0)

	out := make([]float32, 10)
	tl.Render(out)

	for k := 0; k < 5; k++ {
		assert.InDelta(t, 0.5, out[k], 1e-6)
	}
	assert.Equal(t, float32(0), out[5])
	assert.Equal(t, 0, tl.Pending())
}

func TestTimelineInterpolates(t *testing.T) {
	tl := NewTimeline(100)
	tl.Play([]float32{0, 1}, 0, 0.5)

	out := make([]float32, 4)
	tl.Render(out)

	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-6)
	assert.InDelta(t, 1.0, out[2], 1e-6)
	assert.Equal(t, float32(0), out[3])
}

func TestTimelineMixesAndClips(t *testing.T) {
	tl := NewTimeline(100)
	tl.Play(constant(4, 0.75), 0, 1.0)
	tl.Play(constant(4, 0.75), 0, 1.0)

	out := make([]float32, 4)
	tl.Render(out)

	for _, s := range out {
		assert.Equal(t, float32(1), s)
	}
}

func TestTimelineVolume(t *testing.T) {
	tl := NewTimeline(100)
	tl.SetVolume(50)
	tl.Play(constant(2, 0.8), 0, 1.0)

	out := make([]float32, 2)
	tl.Render(out)
	assert.InDelta(t, 0.4, out[0], 1e-6)

	tl.SetMuted(true)
	tl.Play(constant(2, 0.8), tl.Now(), 1.0)
	tl.Render(out)
	assert.Equal(t, float32(0), out[0])

	tl.SetVolume(150)
	assert.Equal(t, 100, tl.Volume())
	assert.True(t, tl.Muted())
}

func TestTimelineResetDropsPending(t *testing.T) {
	tl := NewTimeline(100)
	tl.Play(constant(10, 0.5), 1.0, 1.0)
	require.Equal(t, 1, tl.Pending())

	tl.Reset()

	out := make([]float32, 200)
	tl.Render(out)
	for _, s := range out {
		assert.Equal(t, float32(0), s)
	}
}

func TestTimelineReadEncodesPCM(t *testing.T) {
	tl := NewTimeline(100)
	tl.Play([]float32{0.5}, 0, 1.0)

	buf := make([]byte, 5)
	n, err := tl.Read(buf)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, int16(16384), int16(binary.LittleEndian.Uint16(buf[0:])))
	assert.Equal(t, int16(0), int16(binary.LittleEndian.Uint16(buf[2:])))
	assert.InDelta(t, 0.02, tl.Now(), 1e-12)
}

func TestNullClockFollowsClock(t *testing.T) {
	clock := sync.NewManualClock(time.Unix(0, 0))
	n := NewNull(44100, clock)
	require.NoError(t, n.Open())

	clock.Advance(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, n.Now(), 1e-9)
	assert.Equal(t, 44100, n.SampleRate())
}

func TestNullResetDropsFuture(t *testing.T) {
	clock := sync.NewManualClock(time.Unix(0, 0))
	n := NewNull(44100, clock)

	n.Play(make([]float32, 10), 0, 1.0)
	n.Play(make([]float32, 10), 2, 1.0)
	clock.Advance(time.Second)

	n.Reset()

	played := n.Played()
	require.Len(t, played, 1)
	assert.Equal(t, Scheduled{Samples: 10, Start: 0, Rate: 1.0}, played[0])
}

func TestNullHistoryBounded(t *testing.T) {
	clock := sync.NewManualClock(time.Unix(0, 0))
	n := NewNull(44100, clock)
	require.NoError(t, n.Open())

	frame := make([]float32, 882)
	total := 5*NullHistory + 17
	for i := 0; i < total; i++ {
		n.Play(frame, float64(i)*0.02, 1.0)
		clock.Advance(20 * time.Millisecond)

		require.LessOrEqual(t, len(n.played), 2*NullHistory)
	}

	played := n.Played()
	require.Len(t, played, NullHistory)
	assert.Equal(t, int64(total), n.Count())

	// The newest instructions survive, in order
	assert.InDelta(t, float64(total-1)*0.02, played[len(played)-1].Start, 1e-9)
	assert.InDelta(t, float64(total-NullHistory)*0.02, played[0].Start, 1e-9)
}

// ABOUTME: Audio type definitions
// ABOUTME: Defines codecs, int16 sample bounds and float conversion helpers
package audio

import "errors"

const (
	// 16-bit audio range constants
	MaxInt16 = 32767
	MinInt16 = -32768

	// int16FullScale maps int16 samples onto [-1, 1)
	int16FullScale = 32768.0
)

// ErrMalformedPacket reports a frame that cannot be decoded. The packet is
// dropped and the stream continues.
var ErrMalformedPacket = errors.New("malformed packet")

// Codec identifies the encoding of a packet payload
type Codec int

const (
	CodecPCM16 Codec = iota
	CodecADPCM
)

func (c Codec) String() string {
	switch c {
	case CodecPCM16:
		return "pcm16"
	case CodecADPCM:
		return "adpcm"
	default:
		return "unknown"
	}
}

// Format describes a decoded stream
type Format struct {
	Codec      Codec
	SampleRate int
}

// ClampInt16 saturates v into the int16 range
func ClampInt16(v int) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}

// Int16ToFloat32 converts PCM samples to floats in [-1, 1)
func Int16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / int16FullScale
	}
	return out
}

// Float32ToInt16 converts a float sample to int16 with clipping
func Float32ToInt16(sample float32) int16 {
	return ClampInt16(int(sample * int16FullScale))
}

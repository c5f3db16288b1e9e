// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests 16-bit little-endian decoding and odd-length rejection
package decode

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

func TestPCMDecode16Bit(t *testing.T) {
	// Input: 4 bytes -> Output: 2 int16 samples
	input := []byte{0x00, 0x01, 0xFF, 0xFF}
	output, err := PCM16Decoder{}.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(output) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(output))
	}

	// 0x00, 0x01 -> 0x0100 = 256
	if output[0] != 256 {
		t.Errorf("expected first sample 256, got %d", output[0])
	}
	// 0xFF, 0xFF -> -1
	if output[1] != -1 {
		t.Errorf("expected second sample -1, got %d", output[1])
	}
}

func TestPCMDecode_OddLength(t *testing.T) {
	_, err := PCM16Decoder{}.Decode([]byte{0x01, 0x02, 0x03})
	if !errors.Is(err, audio.ErrMalformedPacket) {
		t.Fatalf("expected ErrMalformedPacket, got %v", err)
	}
}

func TestPCMDecode_EmptyInput(t *testing.T) {
	output, err := PCM16Decoder{}.Decode([]byte{})
	if err != nil {
		t.Fatalf("decode failed with empty input: %v", err)
	}

	if len(output) != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", len(output))
	}
}

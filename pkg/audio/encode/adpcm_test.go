// ABOUTME: Tests for IMA ADPCM encoder
// ABOUTME: Decoder must reproduce the encoder's predictor path bit for bit
package encode

import (
	"math"
	"testing"

	"github.com/Resonate-Protocol/livelisten/pkg/audio/decode"
)

func sine(n int, freq, rate, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

func TestADPCMRoundTripMatchesPredictorPath(t *testing.T) {
	enc := NewADPCM()
	input := sine(441, 440, 22000, 20000)

	payload, err := enc.Encode(input)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := decode.ADPCMDecoder{}.Decode(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// 441 samples are padded to 442
	if len(decoded) != 442 || len(enc.Reconstructed) != 442 {
		t.Fatalf("expected 442 samples, got decoded=%d reconstructed=%d", len(decoded), len(enc.Reconstructed))
	}
	for i := range decoded {
		if decoded[i] != enc.Reconstructed[i] {
			t.Fatalf("sample %d: decoder %d != encoder path %d", i, decoded[i], enc.Reconstructed[i])
		}
	}
}

func TestADPCMReferenceVector(t *testing.T) {
	enc := NewADPCM()
	input := []int16{0, 11, 9, -16, 18, -23}

	payload, err := enc.Encode(input)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	expected := []byte{0, 0, 0, 0, 0x07, 0x8F, 0x4C}
	if len(payload) != len(expected) {
		t.Fatalf("expected %d bytes, got %d", len(expected), len(payload))
	}
	for i := range expected {
		if payload[i] != expected[i] {
			t.Errorf("byte %d: expected %#x, got %#x", i, expected[i], payload[i])
		}
	}

	for i, s := range input {
		if enc.Reconstructed[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, enc.Reconstructed[i])
		}
	}
}

func TestADPCMStateCarriedInEveryHeader(t *testing.T) {
	enc := NewADPCM()
	signal := sine(800, 300, 16000, 12000)

	first, _ := enc.Encode(signal[:400])
	firstPath := append([]int16(nil), enc.Reconstructed...)
	second, _ := enc.Encode(signal[400:])

	// The second packet decodes alone, without the first
	decoded, err := decode.ADPCMDecoder{}.Decode(second)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i := range decoded {
		if decoded[i] != enc.Reconstructed[i] {
			t.Fatalf("sample %d: decoder %d != encoder path %d", i, decoded[i], enc.Reconstructed[i])
		}
	}

	hdr, err := decode.ParseADPCMHeader(second)
	if err != nil {
		t.Fatalf("header parse failed: %v", err)
	}
	if hdr.Predictor != firstPath[len(firstPath)-1] {
		t.Errorf("expected header predictor %d, got %d", firstPath[len(firstPath)-1], hdr.Predictor)
	}
	if len(first) != decode.ADPCMHeaderSize+200 {
		t.Errorf("expected %d bytes, got %d", decode.ADPCMHeaderSize+200, len(first))
	}
}

func TestADPCMTracksSignal(t *testing.T) {
	enc := NewADPCM()
	input := sine(2000, 220, 22000, 8000)

	if _, err := enc.Encode(input); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// Skip the adaptation warm-up; afterwards the error stays small
	var maxErr float64
	for i := 200; i < len(input); i++ {
		e := math.Abs(float64(input[i]) - float64(enc.Reconstructed[i]))
		if e > maxErr {
			maxErr = e
		}
	}
	if maxErr > 1500 {
		t.Errorf("reconstruction error too large: %f", maxErr)
	}
}

// ABOUTME: Tests for IMA ADPCM decoder
// ABOUTME: Checks reference vectors, clamping and per-packet independence
package decode

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/Resonate-Protocol/livelisten/pkg/protocol"
)

func adpcmPayload(predictor int16, index uint8, data ...byte) []byte {
	p := []byte{byte(uint16(predictor)), byte(uint16(predictor) >> 8), index, 0}
	return append(p, data...)
}

func TestADPCMReferenceVector(t *testing.T) {
	// Worked by hand from the IMA tables starting at predictor 0, index 0
	payload := adpcmPayload(0, 0, 0x07, 0x8F, 0x4C)
	expected := []int16{0, 11, 9, -16, 18, -23}

	output, err := ADPCMDecoder{}.Decode(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(output) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(output))
	}
	for i := range expected {
		if output[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], output[i])
		}
	}
}

func TestADPCMClampsSamplesAndIndex(t *testing.T) {
	// Out-of-range header index 200 is clamped to 88 (step 32767)
	payload := adpcmPayload(32760, 200, 0x7F)

	output, err := ADPCMDecoder{}.Decode(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if output[0] != 32767 {
		t.Errorf("expected positive clamp to 32767, got %d", output[0])
	}
	// 32767 - (4095 + 32767 + 16383 + 8191)
	if output[1] != -28669 {
		t.Errorf("expected -28669, got %d", output[1])
	}
}

func TestADPCMNegativeClamp(t *testing.T) {
	payload := adpcmPayload(-32760, 88, 0xFF)

	output, err := ADPCMDecoder{}.Decode(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if output[0] != -32768 {
		t.Errorf("expected negative clamp to -32768, got %d", output[0])
	}
}

func TestADPCMHeaderTruncated(t *testing.T) {
	for _, payload := range [][]byte{{}, {1}, {1, 2, 3}} {
		_, err := ADPCMDecoder{}.Decode(payload)
		if !errors.Is(err, audio.ErrMalformedPacket) {
			t.Errorf("payload %v: expected ErrMalformedPacket, got %v", payload, err)
		}
	}
}

func TestADPCMHeaderOnly(t *testing.T) {
	output, err := ADPCMDecoder{}.Decode(adpcmPayload(100, 10))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(output) != 0 {
		t.Errorf("expected no samples, got %d", len(output))
	}
}

func TestADPCMPacketsDecodeIndependently(t *testing.T) {
	a := adpcmPayload(-1200, 40, 0x12, 0x34, 0x56)
	b := adpcmPayload(3000, 12, 0x9A, 0xBC)

	first, err := ADPCMDecoder{}.Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, err := (ADPCMDecoder{}).Decode(a); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	second, err := ADPCMDecoder{}.Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after decoding another packet: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestDecodeDispatchesOnCodecBit(t *testing.T) {
	adpcmFrame := append([]byte{0x80 | 8}, adpcmPayload(0, 0, 0x07)...)
	pcmFrame := []byte{8, 0x10, 0x00}

	p, err := protocol.ParsePacket(adpcmFrame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	samples, err := Decode(p)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(samples) != 2 || samples[1] != 11 {
		t.Errorf("unexpected adpcm samples %v", samples)
	}

	p, err = protocol.ParsePacket(pcmFrame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	samples, err = Decode(p)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(samples) != 1 || samples[0] != 16 {
		t.Errorf("unexpected pcm samples %v", samples)
	}
}

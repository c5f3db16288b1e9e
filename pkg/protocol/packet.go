// ABOUTME: Binary audio packet framing
// ABOUTME: Splits the flags byte (codec bit + sample rate) from the payload
package protocol

import (
	"fmt"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

const (
	// PacketHeaderSize is the flags byte in front of every audio payload
	PacketHeaderSize = 1

	codecFlag    = 0x80
	rateMask     = 0x7F
	MaxRateKHz   = rateMask
	hzPerRateKHz = 1000
)

// AudioPacket is one binary frame as received from the server. Payload
// aliases the frame buffer and must not be modified.
type AudioPacket struct {
	Flags   byte
	Payload []byte
}

// Codec returns the payload codec selected by bit 7
func (p AudioPacket) Codec() audio.Codec {
	if p.Flags&codecFlag != 0 {
		return audio.CodecADPCM
	}
	return audio.CodecPCM16
}

// RateKHz returns the declared source rate in kHz (bits 6..0)
func (p AudioPacket) RateKHz() int {
	return int(p.Flags & rateMask)
}

// SampleRate returns the declared source rate in Hz
func (p AudioPacket) SampleRate() int {
	return p.RateKHz() * hzPerRateKHz
}

// ParsePacket splits a binary frame into flags and payload
func ParsePacket(frame []byte) (AudioPacket, error) {
	if len(frame) < PacketHeaderSize {
		return AudioPacket{}, fmt.Errorf("empty frame: %w", audio.ErrMalformedPacket)
	}

	p := AudioPacket{
		Flags:   frame[0],
		Payload: frame[PacketHeaderSize:],
	}

	if p.RateKHz() == 0 {
		return AudioPacket{}, fmt.Errorf("zero sample rate: %w", audio.ErrMalformedPacket)
	}

	return p, nil
}

// EncodeHeader builds the flags byte for codec at rateHz. Rates are carried
// in whole kHz, so anything below 1kHz or above 127kHz is rejected.
func EncodeHeader(codec audio.Codec, rateHz int) (byte, error) {
	khz := rateHz / hzPerRateKHz
	if khz < 1 || khz > MaxRateKHz || rateHz%hzPerRateKHz != 0 {
		return 0, fmt.Errorf("sample rate %dHz not representable in whole kHz 1-%d", rateHz, MaxRateKHz)
	}

	flags := byte(khz)
	if codec == audio.CodecADPCM {
		flags |= codecFlag
	}
	return flags, nil
}

// BuildFrame prepends the flags byte to payload
func BuildFrame(codec audio.Codec, rateHz int, payload []byte) ([]byte, error) {
	flags, err := EncodeHeader(codec, rateHz)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, PacketHeaderSize+len(payload))
	frame[0] = flags
	copy(frame[PacketHeaderSize:], payload)
	return frame, nil
}

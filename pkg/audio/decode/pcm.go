// ABOUTME: PCM audio decoder
// ABOUTME: Decodes raw little-endian 16-bit PCM payloads
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

// PCM16Decoder decodes raw 16-bit PCM
type PCM16Decoder struct{}

// Decode converts little-endian PCM bytes to int16 samples
func (PCM16Decoder) Decode(payload []byte) ([]int16, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("pcm16 payload has odd length %d: %w", len(payload), audio.ErrMalformedPacket)
	}

	numSamples := len(payload) / 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	return samples, nil
}

// ABOUTME: PCM audio encoder
// ABOUTME: Encodes int16 samples to little-endian 16-bit PCM bytes
package encode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

// PCM16Encoder encodes raw 16-bit PCM
type PCM16Encoder struct{}

// Encode converts int16 samples to PCM bytes
func (PCM16Encoder) Encode(samples []int16) ([]byte, error) {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}
	return output, nil
}

// Codec returns audio.CodecPCM16
func (PCM16Encoder) Codec() audio.Codec {
	return audio.CodecPCM16
}

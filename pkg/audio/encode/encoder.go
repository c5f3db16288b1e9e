// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for the PCM16 and ADPCM packet encoders
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

// Encoder turns int16 PCM into one packet payload
type Encoder interface {
	// Encode converts PCM samples to a packet payload
	Encode(samples []int16) ([]byte, error)

	// Codec reports which codec bit the payload needs
	Codec() audio.Codec
}

// New returns an encoder for codec
func New(codec audio.Codec) (Encoder, error) {
	switch codec {
	case audio.CodecPCM16:
		return PCM16Encoder{}, nil
	case audio.CodecADPCM:
		return NewADPCM(), nil
	default:
		return nil, fmt.Errorf("unsupported codec: %v", codec)
	}
}

// ABOUTME: Decoder interface definition and per-packet dispatch
// ABOUTME: Selects the PCM16 or ADPCM decoder from the packet codec bit
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/Resonate-Protocol/livelisten/pkg/protocol"
)

// Decoder decodes one packet payload to PCM int16 samples. Implementations
// keep no state between calls, so a lost packet never affects the next one.
type Decoder interface {
	Decode(payload []byte) ([]int16, error)
}

var (
	pcm16Decoder = PCM16Decoder{}
	adpcmDecoder = ADPCMDecoder{}
)

// ForCodec returns the decoder for codec
func ForCodec(codec audio.Codec) (Decoder, error) {
	switch codec {
	case audio.CodecPCM16:
		return pcm16Decoder, nil
	case audio.CodecADPCM:
		return adpcmDecoder, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %v", codec)
	}
}

// Decode decodes a parsed packet according to its codec bit
func Decode(p protocol.AudioPacket) ([]int16, error) {
	dec, err := ForCodec(p.Codec())
	if err != nil {
		return nil, err
	}
	return dec.Decode(p.Payload)
}

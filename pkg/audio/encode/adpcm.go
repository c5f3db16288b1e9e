// ABOUTME: IMA ADPCM encoder producing self-contained packets
// ABOUTME: Writes the running predictor and step index into every header
package encode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/decode"
)

// ADPCMEncoder is a 4-bit IMA encoder. Its state runs across packets on the
// sending side; each payload starts with a snapshot of that state so the
// receiver can decode any packet on its own.
type ADPCMEncoder struct {
	predictor int
	index     int

	// Reconstructed holds the predictor path of the last Encode call, the
	// exact samples a conforming decoder must produce
	Reconstructed []int16
}

// NewADPCM creates an encoder starting at predictor 0, index 0
func NewADPCM() *ADPCMEncoder {
	return &ADPCMEncoder{}
}

// Codec returns audio.CodecADPCM
func (e *ADPCMEncoder) Codec() audio.Codec {
	return audio.CodecADPCM
}

// Encode packs samples two per byte, high nibble first. An odd trailing
// sample is repeated to fill the last byte.
func (e *ADPCMEncoder) Encode(samples []int16) ([]byte, error) {
	if len(samples)%2 != 0 {
		padded := make([]int16, len(samples)+1)
		copy(padded, samples)
		padded[len(samples)] = samples[len(samples)-1]
		samples = padded
	}

	out := make([]byte, decode.ADPCMHeaderSize+len(samples)/2)
	binary.LittleEndian.PutUint16(out[0:2], uint16(int16(e.predictor)))
	out[2] = byte(e.index)

	e.Reconstructed = make([]int16, 0, len(samples))
	for i := 0; i < len(samples); i += 2 {
		hi := e.encodeSample(samples[i])
		lo := e.encodeSample(samples[i+1])
		out[decode.ADPCMHeaderSize+i/2] = hi<<4 | lo
	}

	return out, nil
}

// encodeSample quantizes one sample against the running predictor
func (e *ADPCMEncoder) encodeSample(sample int16) byte {
	step := decode.StepSizeTable[e.index]
	diff := int(sample) - e.predictor

	var code byte
	if diff < 0 {
		code = 8
		diff = -diff
	}

	diffq := step >> 3
	if diff >= step {
		code |= 4
		diff -= step
		diffq += step
	}
	step >>= 1
	if diff >= step {
		code |= 2
		diff -= step
		diffq += step
	}
	step >>= 1
	if diff >= step {
		code |= 1
		diffq += step
	}

	if code&8 != 0 {
		e.predictor -= diffq
	} else {
		e.predictor += diffq
	}
	e.predictor = int(audio.ClampInt16(e.predictor))
	e.index = decode.ClampStepIndex(e.index + decode.IndexTable[code&7])

	e.Reconstructed = append(e.Reconstructed, int16(e.predictor))
	return code
}

// ABOUTME: IMA ADPCM decoder with per-packet state
// ABOUTME: Predictor and step index come from each packet header
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
)

const (
	// ADPCMHeaderSize is predictor (int16 LE), step index (uint8), reserved
	ADPCMHeaderSize = 4

	MaxStepIndex = 88
)

// StepSizeTable is the standard 89-entry IMA step table
var StepSizeTable = [MaxStepIndex + 1]int{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307, 337, 371, 408, 449, 494, 544,
	598, 658, 724, 796, 876, 963, 1060, 1166, 1282, 1411, 1552, 1707,
	1878, 2066, 2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871,
	5358, 5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635,
	13899, 15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// IndexTable adjusts the step index by nibble magnitude
var IndexTable = [8]int{-1, -1, -1, -1, 2, 4, 6, 8}

// ADPCMHeader is the decoder state carried in front of every packet
type ADPCMHeader struct {
	Predictor int16
	StepIndex uint8
}

// ADPCMDecoder decodes 4-bit IMA ADPCM
type ADPCMDecoder struct{}

// ParseADPCMHeader reads the 4-byte state header
func ParseADPCMHeader(payload []byte) (ADPCMHeader, error) {
	if len(payload) < ADPCMHeaderSize {
		return ADPCMHeader{}, fmt.Errorf("adpcm header truncated (%d bytes): %w", len(payload), audio.ErrMalformedPacket)
	}

	return ADPCMHeader{
		Predictor: int16(binary.LittleEndian.Uint16(payload[0:2])),
		StepIndex: payload[2],
	}, nil
}

// Decode expands header + nibble pairs into 2 samples per byte, high
// nibble first
func (ADPCMDecoder) Decode(payload []byte) ([]int16, error) {
	hdr, err := ParseADPCMHeader(payload)
	if err != nil {
		return nil, err
	}

	data := payload[ADPCMHeaderSize:]
	samples := make([]int16, len(data)*2)

	predictor := int(hdr.Predictor)
	index := ClampStepIndex(int(hdr.StepIndex))

	for n, b := range data {
		samples[n*2], predictor, index = DecodeNibble(b>>4, predictor, index)
		samples[n*2+1], predictor, index = DecodeNibble(b&0x0F, predictor, index)
	}

	return samples, nil
}

// DecodeNibble applies one 4-bit code to the running predictor and returns
// the output sample together with the next predictor and step index
func DecodeNibble(code byte, predictor, index int) (int16, int, int) {
	step := StepSizeTable[index]
	magnitude := int(code & 7)

	diff := step >> 3
	if magnitude&4 != 0 {
		diff += step
	}
	if magnitude&2 != 0 {
		diff += step >> 1
	}
	if magnitude&1 != 0 {
		diff += step >> 2
	}

	if code&8 != 0 {
		predictor -= diff
	} else {
		predictor += diff
	}

	sample := audio.ClampInt16(predictor)
	index = ClampStepIndex(index + IndexTable[magnitude])

	return sample, int(sample), index
}

// ClampStepIndex keeps a step index inside the table
func ClampStepIndex(index int) int {
	if index < 0 {
		return 0
	}
	if index > MaxStepIndex {
		return MaxStepIndex
	}
	return index
}

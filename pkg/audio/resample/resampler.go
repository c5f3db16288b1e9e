// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Stateless per-frame conversion using linear interpolation
package resample

import "math"

// Resample converts one frame of mono samples from fromRate to toRate.
//
// Equal rates return the input slice itself. Otherwise the output has
// round(len(input) * toRate / fromRate) samples; output i reads source
// position i*fromRate/toRate and interpolates toward the next sample, with
// the upper neighbour clamped to the last input sample.
func Resample(input []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return input
	}
	if len(input) == 0 {
		return []float32{}
	}

	ratio := float64(toRate) / float64(fromRate)
	outputLen := OutputLength(len(input), fromRate, toRate)
	output := make([]float32, outputLen)
	last := len(input) - 1

	for i := 0; i < outputLen; i++ {
		pos := float64(i) / ratio
		low := int(pos)
		if low > last {
			low = last
		}
		high := low + 1
		if high > last {
			high = last
		}

		// Linear interpolation
		frac := float32(pos - float64(low))
		output[i] = (1-frac)*input[low] + frac*input[high]
	}

	return output
}

// OutputLength calculates how many samples Resample produces for n inputs
func OutputLength(n, fromRate, toRate int) int {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return n
	}
	return int(math.Round(float64(n) * float64(toRate) / float64(fromRate)))
}

// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Codec, Format and sample conversion functions
// Package audio provides the sample types shared by the decoder, resampler
// and output packages.
//
// Samples travel the pipeline as int16 straight out of the decoder and as
// float32 in [-1, 1) from the resampler onward.
//
// Example:
//
//	floats := audio.Int16ToFloat32(pcm)
//	s := audio.Float32ToInt16(floats[0])
package audio

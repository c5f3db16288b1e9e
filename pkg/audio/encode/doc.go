// ABOUTME: Audio encoder package for the development tone server
// ABOUTME: Provides Encoder interface and implementations for PCM16 and ADPCM
// Package encode produces packet payloads for the two supported codecs.
//
// The ADPCM encoder records its reconstructed predictor path, which is what
// a conforming decoder must reproduce bit for bit.
//
// Example:
//
//	enc, err := encode.New(audio.CodecADPCM)
//	payload, err := enc.Encode(samples)
package encode

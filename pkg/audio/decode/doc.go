// ABOUTME: Audio decoder package for the two supported codecs
// ABOUTME: Provides Decoder interface and PCM16 / IMA ADPCM implementations
// Package decode turns packet payloads into int16 PCM.
//
// Supports: raw 16-bit little-endian PCM and 4-bit IMA ADPCM.
//
// ADPCM packets carry the predictor and step index in a 4-byte header, so
// every packet decodes on its own. Decoders keep no state between calls.
//
// Example:
//
//	pkt, _ := protocol.ParsePacket(frame)
//	samples, err := decode.Decode(pkt)
package decode

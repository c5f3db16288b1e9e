// ABOUTME: Listener wire protocol package
// ABOUTME: Defines binary audio packets and text control messages
// Package protocol implements the listener wire protocol.
//
// Binary frames carry audio: byte 0 holds the codec bit (bit 7, set for
// ADPCM) and the source sample rate in kHz (bits 6..0); the rest is payload.
// Text frames carry control messages: "play", "stop", "mic_active",
// "mic_muted" and "time:<opaque>" liveness pings.
//
// Example:
//
//	pkt, err := protocol.ParsePacket(frame)
//	ctl := protocol.ParseControl("time:1712")
package protocol

// ABOUTME: High-level livelisten library API
// ABOUTME: Provides the Player that connects, buffers and plays a live stream
// Package livelisten provides the listener session.
//
// A Player owns one connection manager, one jitter estimator, one playback
// scheduler, one waveform window and one output sink. Every audio frame runs
// through them in arrival order on the connection loop goroutine: jitter
// measurement, parsing, decoding, waveform capture, resampling to the sink
// rate, scheduling and finally playback.
//
// Example:
//
//	player, err := livelisten.NewPlayer(livelisten.PlayerConfig{
//	    ServerAddr: "192.168.1.20:8927",
//	    Autoplay:   true,
//	})
//	err = player.Run(ctx)
package livelisten

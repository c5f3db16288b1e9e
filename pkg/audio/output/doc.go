// ABOUTME: Audio output package for scheduled playback
// ABOUTME: Provides the Sink interface, the Timeline mixer and device sinks
// Package output plays frames at absolute times on an output clock.
//
// The clock of a device sink counts rendered frames, so a start time handed
// to Play lines up with what the device is fed. Frames played at a rate
// other than 1.0 are stretched by linear interpolation, which is how the
// scheduler grows or drains the buffer.
//
// Example:
//
//	sink := output.NewOto(44100)
//	if err := sink.Open(); err != nil { ... }
//	sink.Play(samples, sink.Now()+0.15, 1.0)
package output

// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded frames to the playback engine's native rate
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation on one frame at a time. No state is kept
// between frames, so calls are safe from any goroutine.
//
// Example:
//
//	out := resample.Resample(frame, 22000, 44100)
package resample

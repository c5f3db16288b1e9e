// ABOUTME: Jitter estimation package
// ABOUTME: Recommends a buffer depth from packet inter-arrival statistics
// Package jitter measures variance in packet arrival timing.
//
// Each arrival after the first adds an inter-arrival interval to a fixed
// FIFO window (2000 by default). Mean and population standard deviation are
// recomputed over the whole window on every arrival, and the recommended
// buffer is (mean + 4*stddev) milliseconds expressed in seconds.
package jitter

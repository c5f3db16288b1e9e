// ABOUTME: Audio streaming engine for the dev server
// ABOUTME: Encodes tone frames on a fixed cadence and fans them out to playing clients
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/encode"
	"github.com/Resonate-Protocol/livelisten/pkg/protocol"
)

// AudioEngine manages audio generation and streaming
type AudioEngine struct {
	server *Server

	source        *ToneSource
	encoder       encode.Encoder
	rateHz        int
	frameSamples  int
	frameDuration time.Duration

	// Encoder state runs across frames; one goroutine encodes at a time
	encodeMu sync.Mutex
	sent     atomic.Int64

	stopChan chan struct{}
	stopOnce sync.Once // Ensure Stop() is only called once
}

// NewAudioEngine creates an engine for the server's codec and rate
func NewAudioEngine(server *Server) (*AudioEngine, error) {
	cfg := server.config
	rateHz := cfg.RateKHz * 1000

	if _, err := protocol.EncodeHeader(cfg.Codec, rateHz); err != nil {
		return nil, fmt.Errorf("invalid stream format: %w", err)
	}

	encoder, err := encode.New(cfg.Codec)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	return &AudioEngine{
		server:        server,
		source:        NewToneSource(cfg.Frequency, rateHz),
		encoder:       encoder,
		rateHz:        rateHz,
		frameSamples:  rateHz * cfg.FrameMs / 1000,
		frameDuration: time.Duration(cfg.FrameMs) * time.Millisecond,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start streams until Stop
func (e *AudioEngine) Start() {
	e.server.logger.Infof("Audio engine starting: %s %d Hz, %v frames",
		e.encoder.Codec(), e.rateHz, e.frameDuration)

	ticker := time.NewTicker(e.frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.generateAndSendChunk()
		case <-e.stopChan:
			e.server.logger.Info("Audio engine stopping")
			return
		}
	}
}

// Stop stops the audio engine
func (e *AudioEngine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
	})
}

// NextFrame encodes the next frame of the tone into a wire frame
func (e *AudioEngine) NextFrame() ([]byte, error) {
	e.encodeMu.Lock()
	defer e.encodeMu.Unlock()

	pcm := make([]int16, e.frameSamples)
	e.source.Read(pcm)

	payload, err := e.encoder.Encode(pcm)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}

	return protocol.BuildFrame(e.encoder.Codec(), e.rateHz, payload)
}

// generateAndSendChunk encodes one frame and queues it for playing clients
func (e *AudioEngine) generateAndSendChunk() {
	if e.server.playingClients() == 0 {
		return
	}

	frame, err := e.NextFrame()
	if err != nil {
		e.server.logger.Errorf("Failed to build frame: %v", err)
		return
	}

	e.sent.Add(int64(e.server.broadcastAudio(frame)))
}

// FramesSent returns the number of frames queued to clients
func (e *AudioEngine) FramesSent() int64 {
	return e.sent.Load()
}

// Format describes the stream
func (e *AudioEngine) Format() audio.Format {
	return audio.Format{Codec: e.encoder.Codec(), SampleRate: e.rateHz}
}

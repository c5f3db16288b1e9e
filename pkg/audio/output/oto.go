// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams the timeline mix to the sound card with software volume
package output

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// deviceBuffer keeps the device close to the timeline clock
const deviceBuffer = 40 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	*Timeline

	otoCtx *oto.Context
	player *oto.Player
	ready  bool
}

// NewOto creates a mono Oto sink at sampleRate
func NewOto(sampleRate int) *Oto {
	return &Oto{Timeline: NewTimeline(sampleRate)}
}

// Open initializes the output device. oto allows one context per process,
// so a second Open on the same sink is a no-op.
func (o *Oto) Open() error {
	if o.otoCtx != nil {
		log.Debug("Audio output already initialized, reusing context")
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   o.SampleRate(),
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   deviceBuffer,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx

	// One persistent player pulls the mix for the lifetime of the sink
	o.player = o.otoCtx.NewPlayer(o.Timeline)
	o.player.Play()

	o.ready = true

	log.Infof("Audio output initialized: %dHz, mono", o.SampleRate())

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Warnf("Failed to close audio player: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil && o.ready {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend audio: %w", err)
		}
		o.ready = false
	}
	return nil
}
